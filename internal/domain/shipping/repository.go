package shipping

import (
	"context"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
)

// ShippingAreaRepository defines persistence operations for shipping areas
type ShippingAreaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ShippingArea, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ShippingArea, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*ShippingArea, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]ShippingArea, error)
	FindDefault(ctx context.Context, tenantID uuid.UUID) (*ShippingArea, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ShippingArea, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, area *ShippingArea) error
	// SaveAsDefault persists the area with the default flag set and clears
	// the flag on every other area of the tenant in the same transaction.
	SaveAsDefault(ctx context.Context, area *ShippingArea) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CourierRepository defines persistence operations for couriers and their
// slots. Slots are always loaded with their courier.
type CourierRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Courier, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Courier, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, courier *Courier) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
