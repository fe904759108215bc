package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/multicommerce/backend/internal/application/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/interfaces/http/dto"
)

// ReserveOrderHandler handles stock reservation API endpoints
type ReserveOrderHandler struct {
	BaseHandler
	reserveOrderService *orderapp.ReserveOrderService
}

// NewReserveOrderHandler creates a new ReserveOrderHandler
func NewReserveOrderHandler(reserveOrderService *orderapp.ReserveOrderService) *ReserveOrderHandler {
	return &ReserveOrderHandler{
		reserveOrderService: reserveOrderService,
	}
}

// ReserveLineRequest represents one SKU/quantity pair to reserve
// @Description One item to reserve
type ReserveLineRequest struct {
	SKU      string `json:"sku" binding:"required,min=1" example:"TSHIRT-RED-L"`
	Quantity int64  `json:"quantity" binding:"required,gt=0" example:"2"`
}

// CreateReserveOrderRequest represents a request to create or merge a reservation
// @Description Request body for reserving stock. Requires either user_id or device_id as the owner.
type CreateReserveOrderRequest struct {
	UserID   *string              `json:"user_id" binding:"omitempty,uuid"`
	DeviceID *string              `json:"device_id" binding:"omitempty,min=1,max=200"`
	Note     string               `json:"note" binding:"max=2000"`
	Items    []ReserveLineRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateLineQuantityRequest represents a line quantity change
// @Description New absolute quantity for a reserved line. Zero removes the line.
type UpdateLineQuantityRequest struct {
	SKU      string `json:"sku" binding:"required,min=1"`
	Quantity int64  `json:"quantity" binding:"gte=0"`
}

// RemoveLinesRequest represents a request to drop lines from a reservation
// @Description SKUs to remove; each removed line restocks its full quantity
type RemoveLinesRequest struct {
	SKUs []string `json:"skus" binding:"required,min=1"`
}

// Create godoc
// @Summary      Reserve stock
// @Description  Create a reservation for the owner, or merge the items into the owner's existing open reservation. Each reserved line debits the matching stock counter.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateReserveOrderRequest true "Reservation request"
// @Success      201 {object} dto.Response{data=orderapp.ReserveOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/reservations [post]
func (h *ReserveOrderHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateReserveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := orderapp.CreateReserveOrderInput{
		DeviceID: req.DeviceID,
		Note:     req.Note,
	}
	if req.UserID != nil && *req.UserID != "" {
		userID, err := uuid.Parse(*req.UserID)
		if err != nil {
			h.BadRequest(c, "Invalid user ID format")
			return
		}
		input.UserID = &userID
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, orderapp.LineInput{
			SKU:      item.SKU,
			Quantity: item.Quantity,
		})
	}

	reservation, err := h.reserveOrderService.Create(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, reservation)
}

// List godoc
// @Summary      List reservations
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]orderapp.ReserveOrderResponse,meta=dto.Meta}
// @Router       /orders/reservations [get]
func (h *ReserveOrderHandler) List(c *gin.Context) {
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

	reservations, total, err := h.reserveOrderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, reservations, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get reservation by ID
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.ReserveOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/reservations/{id} [get]
func (h *ReserveOrderHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	reservation, err := h.reserveOrderService.Get(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reservation)
}

// UpdateLineQuantity godoc
// @Summary      Update a reserved line quantity
// @Description  Sets the line to a new absolute quantity. An increase debits stock, a decrease credits it, zero removes the line with a full restock.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Reservation ID" format(uuid)
// @Param        request body UpdateLineQuantityRequest true "New line quantity"
// @Success      200 {object} dto.Response{data=orderapp.ReserveOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/reservations/{id}/lines [put]
func (h *ReserveOrderHandler) UpdateLineQuantity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	var req UpdateLineQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reservation, err := h.reserveOrderService.UpdateLineQuantity(c.Request.Context(), tenantID, orderID, req.SKU, req.Quantity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reservation)
}

// RemoveLines godoc
// @Summary      Remove lines from a reservation
// @Description  Drops the given SKUs from the reservation, restocking each removed line's full quantity.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Reservation ID" format(uuid)
// @Param        request body RemoveLinesRequest true "SKUs to remove"
// @Success      200 {object} dto.Response{data=orderapp.ReserveOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/reservations/{id}/lines/remove [post]
func (h *ReserveOrderHandler) RemoveLines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	var req RemoveLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	reservation, err := h.reserveOrderService.RemoveLines(c.Request.Context(), tenantID, orderID, req.SKUs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, reservation)
}

// Convert godoc
// @Summary      Convert a reservation into an order
// @Description  Finalizes the reservation: the record is removed and the reserved stock stays committed.
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/reservations/{id}/convert [post]
func (h *ReserveOrderHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	if err := h.reserveOrderService.Convert(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete godoc
// @Summary      Delete a reservation
// @Description  Removes the reservation and restocks every open line. Deleting a reservation that is already gone returns 404 without touching any counter.
// @Tags         reservations
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Reservation ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/reservations/{id} [delete]
func (h *ReserveOrderHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reservation ID format")
		return
	}

	if err := h.reserveOrderService.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
