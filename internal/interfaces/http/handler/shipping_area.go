package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/multicommerce/backend/internal/application/shipping"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"github.com/multicommerce/backend/internal/interfaces/http/dto"
)

// ShippingAreaHandler handles shipping area API endpoints
type ShippingAreaHandler struct {
	BaseHandler
	areaService *shippingapp.AreaService
}

// NewShippingAreaHandler creates a new ShippingAreaHandler
func NewShippingAreaHandler(areaService *shippingapp.AreaService) *ShippingAreaHandler {
	return &ShippingAreaHandler{
		areaService: areaService,
	}
}

// CreateShippingAreaRequest represents a request to create a shipping area
// @Description Request body for creating a shipping area
type CreateShippingAreaRequest struct {
	AreaName        string   `json:"area_name" binding:"required,min=1,max=100" example:"Jakarta Metro"`
	Cities          []string `json:"cities" example:"jakarta,bekasi"`
	ZipCodes        []string `json:"zip_codes" example:"10110,10120"`
	BasePrice       float64  `json:"base_price" binding:"gte=0" example:"15000"`
	PriceMultiplier float64  `json:"price_multiplier" binding:"omitempty,gt=0" example:"1.5"`
	IsDefault       bool     `json:"is_default" example:"false"`
}

// UpdateShippingAreaRequest represents a partial shipping area update
// @Description Request body for updating a shipping area
type UpdateShippingAreaRequest struct {
	Cities          *[]string `json:"cities"`
	ZipCodes        *[]string `json:"zip_codes"`
	BasePrice       *float64  `json:"base_price" binding:"omitempty,gte=0"`
	PriceMultiplier *float64  `json:"price_multiplier" binding:"omitempty,gt=0"`
	Status          *string   `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// ResolveAreaRequest represents a destination to resolve to a pricing zone
// @Description Destination to resolve against the tenant's shipping areas
type ResolveAreaRequest struct {
	City    string `json:"city" example:"jakarta"`
	ZipCode string `json:"zip_code" example:"10110"`
	Country string `json:"country" example:"ID"`
}

// Create godoc
// @Summary      Create a shipping area
// @Description  Create a shipping area. Creating an existing name with is_default=true updates that area in place instead of failing on uniqueness.
// @Tags         shipping-areas
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateShippingAreaRequest true "Shipping area creation request"
// @Success      201 {object} dto.Response{data=shippingapp.AreaResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas [post]
func (h *ShippingAreaHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateShippingAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := shippingapp.CreateAreaInput{
		AreaName:        req.AreaName,
		Cities:          req.Cities,
		ZipCodes:        req.ZipCodes,
		BasePrice:       toDecimal(req.BasePrice),
		PriceMultiplier: toDecimal(req.PriceMultiplier),
		IsDefault:       req.IsDefault,
	}

	area, err := h.areaService.Create(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, area)
}

// List godoc
// @Summary      List shipping areas
// @Description  Retrieve a paginated list of the tenant's shipping areas
// @Tags         shipping-areas
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20)
// @Success      200 {object} dto.Response{data=[]shippingapp.AreaResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas [get]
func (h *ShippingAreaHandler) List(c *gin.Context) {
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

	areas, total, err := h.areaService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, areas, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get shipping area by ID
// @Tags         shipping-areas
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipping area ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.AreaResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas/{id} [get]
func (h *ShippingAreaHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid area ID format")
		return
	}

	area, err := h.areaService.Get(c.Request.Context(), tenantID, areaID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// Update godoc
// @Summary      Update a shipping area
// @Description  Apply a partial update to a shipping area
// @Tags         shipping-areas
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipping area ID" format(uuid)
// @Param        request body UpdateShippingAreaRequest true "Shipping area update request"
// @Success      200 {object} dto.Response{data=shippingapp.AreaResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas/{id} [put]
func (h *ShippingAreaHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid area ID format")
		return
	}

	var req UpdateShippingAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := shippingapp.UpdateAreaInput{
		Cities:   req.Cities,
		ZipCodes: req.ZipCodes,
		Status:   req.Status,
	}
	if req.BasePrice != nil {
		input.BasePrice = toDecimalPtr(*req.BasePrice)
	}
	if req.PriceMultiplier != nil {
		input.PriceMultiplier = toDecimalPtr(*req.PriceMultiplier)
	}

	area, err := h.areaService.Update(c.Request.Context(), tenantID, areaID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// SetDefault godoc
// @Summary      Set a shipping area as the tenant default
// @Description  Flags the area as default and clears the flag on every other area of the tenant
// @Tags         shipping-areas
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipping area ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.AreaResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas/{id}/set-default [post]
func (h *ShippingAreaHandler) SetDefault(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid area ID format")
		return
	}

	area, err := h.areaService.SetDefault(c.Request.Context(), tenantID, areaID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// Resolve godoc
// @Summary      Resolve a destination to a shipping area
// @Description  Maps a destination to a pricing zone via city, then zip code, then area name, falling back to the default area. Returns null data when nothing matches.
// @Tags         shipping-areas
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body ResolveAreaRequest true "Destination to resolve"
// @Success      200 {object} dto.Response{data=shippingapp.AreaResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas/resolve [post]
func (h *ShippingAreaHandler) Resolve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ResolveAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	area, err := h.areaService.Resolve(c.Request.Context(), tenantID, shipping.Destination{
		City:    req.City,
		ZipCode: req.ZipCode,
		Country: req.Country,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, area)
}

// Delete godoc
// @Summary      Delete a shipping area
// @Tags         shipping-areas
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipping area ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/areas/{id} [delete]
func (h *ShippingAreaHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid area ID format")
		return
	}

	if err := h.areaService.Delete(c.Request.Context(), tenantID, areaID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
