package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/multicommerce/backend/internal/application/shipping"
)

// ShippingCostHandler handles shipping cost calculation endpoints
type ShippingCostHandler struct {
	BaseHandler
	costService *shippingapp.CostService
}

// NewShippingCostHandler creates a new ShippingCostHandler
func NewShippingCostHandler(costService *shippingapp.CostService) *ShippingCostHandler {
	return &ShippingCostHandler{
		costService: costService,
	}
}

// CostItemRequest represents one cart item entering a cost calculation
// @Description Cart item with weight in grams and optional dimensions in cm
type CostItemRequest struct {
	WeightGrams float64 `json:"weight_grams" binding:"gte=0" example:"1500"`
	Length      float64 `json:"length" binding:"omitempty,gte=0" example:"30"`
	Width       float64 `json:"width" binding:"omitempty,gte=0" example:"20"`
	Height      float64 `json:"height" binding:"omitempty,gte=0" example:"10"`
	Quantity    int64   `json:"quantity" binding:"required,gt=0" example:"2"`
}

// CalculateCostRequest represents a shipping cost calculation request
// @Description Request body for pricing a cart against a courier slot and destination
type CalculateCostRequest struct {
	CourierID string            `json:"courier_id" binding:"required,uuid"`
	SlotID    string            `json:"slot_id" binding:"required,uuid"`
	Items     []CostItemRequest `json:"items" binding:"required,min=1,dive"`
	City      string            `json:"city" example:"jakarta"`
	ZipCode   string            `json:"zip_code" example:"10110"`
	Country   string            `json:"country" example:"ID"`
}

// Calculate godoc
// @Summary      Calculate shipping cost
// @Description  Price a cart for one courier slot: zone charge for the resolved area plus a weight charge over the chargeable weight (greater of actual and dimensional weight).
// @Tags         shipping-costs
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CalculateCostRequest true "Cost calculation request"
// @Success      200 {object} dto.Response{data=shippingapp.CostResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/costs/calculate [post]
func (h *ShippingCostHandler) Calculate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CalculateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	courierID, err := uuid.Parse(req.CourierID)
	if err != nil {
		h.BadRequest(c, "Invalid courier ID format")
		return
	}
	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		h.BadRequest(c, "Invalid slot ID format")
		return
	}

	input := shippingapp.CostInput{
		CourierID: courierID,
		SlotID:    slotID,
		Items:     make([]shippingapp.CostItemInput, 0, len(req.Items)),
		City:      req.City,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, shippingapp.CostItemInput{
			WeightGrams: toDecimal(item.WeightGrams),
			Length:      toDecimal(item.Length),
			Width:       toDecimal(item.Width),
			Height:      toDecimal(item.Height),
			Quantity:    item.Quantity,
		})
	}

	cost, err := h.costService.Calculate(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, cost)
}
