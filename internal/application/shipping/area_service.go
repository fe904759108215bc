package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// AreaService manages shipping areas and resolves destinations to them
type AreaService struct {
	areas  shipping.ShippingAreaRepository
	logger *zap.Logger
}

// NewAreaService creates a new AreaService
func NewAreaService(areas shipping.ShippingAreaRepository, logger *zap.Logger) *AreaService {
	return &AreaService{areas: areas, logger: logger}
}

// Create creates a shipping area. Creating a name that already exists
// while requesting the default flag updates the existing record instead
// of failing on uniqueness; without the flag the duplicate is rejected.
func (s *AreaService) Create(ctx context.Context, tenantID uuid.UUID, input CreateAreaInput) (*AreaResponse, error) {
	existing, err := s.areas.FindByName(ctx, tenantID, input.AreaName)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if !input.IsDefault {
			return nil, shared.ErrAlreadyExists
		}
		existing.Cities = input.Cities
		existing.ZipCodes = input.ZipCodes
		existing.BasePrice = input.BasePrice
		if !input.PriceMultiplier.IsZero() {
			existing.PriceMultiplier = input.PriceMultiplier
		}
		existing.IsDefault = true
		existing.Touch()
		if err := s.areas.SaveAsDefault(ctx, existing); err != nil {
			return nil, err
		}
		resp := ToAreaResponse(existing)
		return &resp, nil
	}

	area, err := shipping.NewShippingArea(tenantID, input.AreaName, input.BasePrice, input.PriceMultiplier)
	if err != nil {
		return nil, err
	}
	area.Cities = input.Cities
	area.ZipCodes = input.ZipCodes

	if input.IsDefault {
		area.IsDefault = true
		err = s.areas.SaveAsDefault(ctx, area)
	} else {
		err = s.areas.Save(ctx, area)
	}
	if err != nil {
		return nil, err
	}

	resp := ToAreaResponse(area)
	return &resp, nil
}

// Update applies a partial update to an area
func (s *AreaService) Update(ctx context.Context, tenantID, areaID uuid.UUID, input UpdateAreaInput) (*AreaResponse, error) {
	area, err := s.areas.FindByIDForTenant(ctx, tenantID, areaID)
	if err != nil {
		return nil, err
	}
	if input.Cities != nil {
		area.Cities = *input.Cities
	}
	if input.ZipCodes != nil {
		area.ZipCodes = *input.ZipCodes
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_BASE_PRICE", "Base price cannot be negative")
		}
		area.BasePrice = *input.BasePrice
	}
	if input.PriceMultiplier != nil {
		area.PriceMultiplier = *input.PriceMultiplier
	}
	if input.Status != nil {
		if *input.Status != shipping.AreaStatusActive && *input.Status != shipping.AreaStatusInactive {
			return nil, shared.NewDomainError("INVALID_STATUS", "Status must be ACTIVE or INACTIVE")
		}
		area.Status = *input.Status
	}
	area.Touch()
	area.IncrementVersion()
	if err := s.areas.Save(ctx, area); err != nil {
		return nil, err
	}
	resp := ToAreaResponse(area)
	return &resp, nil
}

// SetDefault flags one area as the tenant's default. The flag is cleared
// on every other area in the same transaction, so at most one default can
// survive any sequence of calls.
func (s *AreaService) SetDefault(ctx context.Context, tenantID, areaID uuid.UUID) (*AreaResponse, error) {
	area, err := s.areas.FindByIDForTenant(ctx, tenantID, areaID)
	if err != nil {
		return nil, err
	}
	area.IsDefault = true
	area.Touch()
	if err := s.areas.SaveAsDefault(ctx, area); err != nil {
		return nil, err
	}
	resp := ToAreaResponse(area)
	return &resp, nil
}

// Resolve maps a destination to a pricing zone using the matching
// waterfall, falling back to the default area. Returns nil (not an error)
// when nothing matches and no default is configured; callers treat that
// as "shipping unconfigured, zero cost".
func (s *AreaService) Resolve(ctx context.Context, tenantID uuid.UUID, dest shipping.Destination) (*AreaResponse, error) {
	active, err := s.areas.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if match := shipping.MatchArea(active, dest); match != nil {
		resp := ToAreaResponse(match)
		return &resp, nil
	}

	def, err := s.areas.FindDefault(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("No shipping area matched and no default configured",
				zap.String("tenant_id", tenantID.String()),
				zap.String("city", dest.City),
				zap.String("zip_code", dest.ZipCode),
			)
			return nil, nil
		}
		return nil, err
	}
	resp := ToAreaResponse(def)
	return &resp, nil
}

// Get retrieves an area by ID
func (s *AreaService) Get(ctx context.Context, tenantID, areaID uuid.UUID) (*AreaResponse, error) {
	area, err := s.areas.FindByIDForTenant(ctx, tenantID, areaID)
	if err != nil {
		return nil, err
	}
	resp := ToAreaResponse(area)
	return &resp, nil
}

// List retrieves areas for a tenant with pagination
func (s *AreaService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]AreaResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, err := s.areas.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.areas.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]AreaResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToAreaResponse(&items[i]))
	}
	return responses, total, nil
}

// Delete removes an area
func (s *AreaService) Delete(ctx context.Context, tenantID, areaID uuid.UUID) error {
	return s.areas.Delete(ctx, tenantID, areaID)
}
