package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/multicommerce/backend/internal/application/shipping"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/interfaces/http/dto"
)

// CourierHandler handles courier and delivery slot API endpoints
type CourierHandler struct {
	BaseHandler
	courierService *shippingapp.CourierService
}

// NewCourierHandler creates a new CourierHandler
func NewCourierHandler(courierService *shippingapp.CourierService) *CourierHandler {
	return &CourierHandler{
		courierService: courierService,
	}
}

// SlotRequest represents one delivery slot in a courier request
// @Description Delivery slot configuration
type SlotRequest struct {
	Name                     string  `json:"name" binding:"required,min=1,max=100" example:"Same Day"`
	StartTime                string  `json:"start_time" example:"08:00"`
	EndTime                  string  `json:"end_time" example:"17:00"`
	BasePrice                float64 `json:"base_price" binding:"gte=0" example:"10000"`
	MaxOrders                int     `json:"max_orders" binding:"omitempty,gte=0" example:"50"`
	EstimatedDeliveryTime    string  `json:"estimated_delivery_time" example:"4 hours"`
	WeightMultiplier         float64 `json:"weight_multiplier" binding:"omitempty,gte=0" example:"2000"`
	WeightUnit               string  `json:"weight_unit" binding:"omitempty,oneof=100g kg" example:"kg"`
	UseDimensionalWeight     bool    `json:"use_dimensional_weight" example:"false"`
	DimensionalWeightDivisor float64 `json:"dimensional_weight_divisor" binding:"omitempty,gt=0" example:"5000"`
}

// CreateCourierRequest represents a request to create a courier
// @Description Request body for creating a courier with its slots
type CreateCourierRequest struct {
	Name  string        `json:"name" binding:"required,min=1,max=100" example:"Speedy Express"`
	Slots []SlotRequest `json:"slots"`
}

// SetSlotStatusRequest represents a slot status change
// @Description Request body for activating or deactivating a slot
type SetSlotStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE" example:"INACTIVE"`
}

func toSlotInput(req SlotRequest) shippingapp.SlotInput {
	return shippingapp.SlotInput{
		Name:                     req.Name,
		StartTime:                req.StartTime,
		EndTime:                  req.EndTime,
		BasePrice:                toDecimal(req.BasePrice),
		MaxOrders:                req.MaxOrders,
		EstimatedDeliveryTime:    req.EstimatedDeliveryTime,
		WeightMultiplier:         toDecimal(req.WeightMultiplier),
		WeightUnit:               req.WeightUnit,
		UseDimensionalWeight:     req.UseDimensionalWeight,
		DimensionalWeightDivisor: toDecimal(req.DimensionalWeightDivisor),
	}
}

// Create godoc
// @Summary      Create a courier
// @Description  Create a courier together with its delivery slots
// @Tags         couriers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateCourierRequest true "Courier creation request"
// @Success      201 {object} dto.Response{data=shippingapp.CourierResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/couriers [post]
func (h *CourierHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := shippingapp.CreateCourierInput{
		Name:  req.Name,
		Slots: make([]shippingapp.SlotInput, 0, len(req.Slots)),
	}
	for _, slot := range req.Slots {
		input.Slots = append(input.Slots, toSlotInput(slot))
	}

	courier, err := h.courierService.Create(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, courier)
}

// List godoc
// @Summary      List couriers
// @Tags         couriers
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]shippingapp.CourierResponse,meta=dto.Meta}
// @Router       /shipping/couriers [get]
func (h *CourierHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	couriers, total, err := h.courierService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, couriers, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get courier by ID
// @Tags         couriers
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Courier ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.CourierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/couriers/{id} [get]
func (h *CourierHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	courierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid courier ID format")
		return
	}

	courier, err := h.courierService.Get(c.Request.Context(), tenantID, courierID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, courier)
}

// AddSlot godoc
// @Summary      Add a delivery slot to a courier
// @Tags         couriers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Courier ID" format(uuid)
// @Param        request body SlotRequest true "Slot configuration"
// @Success      200 {object} dto.Response{data=shippingapp.CourierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/couriers/{id}/slots [post]
func (h *CourierHandler) AddSlot(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	courierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid courier ID format")
		return
	}

	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	courier, err := h.courierService.AddSlot(c.Request.Context(), tenantID, courierID, toSlotInput(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, courier)
}

// SetSlotStatus godoc
// @Summary      Activate or deactivate a delivery slot
// @Tags         couriers
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Courier ID" format(uuid)
// @Param        slot_id path string true "Slot ID" format(uuid)
// @Param        request body SetSlotStatusRequest true "New slot status"
// @Success      200 {object} dto.Response{data=shippingapp.CourierResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/couriers/{id}/slots/{slot_id}/status [put]
func (h *CourierHandler) SetSlotStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	courierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid courier ID format")
		return
	}

	slotID, err := uuid.Parse(c.Param("slot_id"))
	if err != nil {
		h.BadRequest(c, "Invalid slot ID format")
		return
	}

	var req SetSlotStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	courier, err := h.courierService.SetSlotStatus(c.Request.Context(), tenantID, courierID, slotID, req.Status)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, courier)
}

// Delete godoc
// @Summary      Delete a courier and its slots
// @Tags         couriers
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Courier ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/couriers/{id} [delete]
func (h *CourierHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	courierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid courier ID format")
		return
	}

	if err := h.courierService.Delete(c.Request.Context(), tenantID, courierID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
