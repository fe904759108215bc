package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CostService calculates shipping charges for a cart
type CostService struct {
	couriers shipping.CourierRepository
	areas    shipping.ShippingAreaRepository
	logger   *zap.Logger
}

// NewCostService creates a new CostService
func NewCostService(couriers shipping.CourierRepository, areas shipping.ShippingAreaRepository, logger *zap.Logger) *CostService {
	return &CostService{couriers: couriers, areas: areas, logger: logger}
}

// Calculate prices a cart against one courier slot and the destination's
// pricing zone. A destination that matches no area falls back to the
// tenant's default area at its base price; with no default either, the
// zone charge is zero and only the weight charge applies.
func (s *CostService) Calculate(ctx context.Context, tenantID uuid.UUID, input CostInput) (*CostResponse, error) {
	courier, err := s.couriers.FindByIDForTenant(ctx, tenantID, input.CourierID)
	if err != nil {
		return nil, err
	}
	slot := courier.SlotByID(input.SlotID)
	if slot == nil {
		return nil, shared.NewDomainError("SLOT_NOT_FOUND", "Shipping slot not found")
	}
	if !slot.IsActive() {
		return nil, shared.NewDomainError("SLOT_INACTIVE", "Shipping slot is not active")
	}

	items := make([]shipping.CartItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
		}
		items = append(items, shipping.CartItem{
			WeightGrams: item.WeightGrams,
			Length:      item.Length,
			Width:       item.Width,
			Height:      item.Height,
			Quantity:    item.Quantity,
		})
	}

	quote, err := s.resolveQuote(ctx, tenantID, shipping.Destination{
		City:    input.City,
		ZipCode: input.ZipCode,
		Country: input.Country,
	})
	if err != nil {
		return nil, err
	}

	result := shipping.CalculateCost(slot, items, quote)
	resp := ToCostResponse(result)
	return &resp, nil
}

// resolveQuote turns a destination into a zone charge. A matched area
// contributes BasePrice times its multiplier; the default area is charged
// at base price only.
func (s *CostService) resolveQuote(ctx context.Context, tenantID uuid.UUID, dest shipping.Destination) (shipping.AreaQuote, error) {
	areas, err := s.areas.FindActive(ctx, tenantID)
	if err != nil {
		return shipping.AreaQuote{}, err
	}
	if match := shipping.MatchArea(areas, dest); match != nil {
		return shipping.AreaQuote{Name: match.AreaName, Price: match.AreaPrice()}, nil
	}

	fallback, err := s.areas.FindDefault(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("no shipping area matched and no default configured",
				zap.String("tenant_id", tenantID.String()),
				zap.String("city", dest.City))
			return shipping.AreaQuote{Price: decimal.Zero}, nil
		}
		return shipping.AreaQuote{}, err
	}
	return shipping.AreaQuote{Name: fallback.AreaName, Price: fallback.BasePrice}, nil
}
