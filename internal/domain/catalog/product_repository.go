package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockRepository defines the atomic stock counter operations the
// reservation flows are built on. Decrements are conditional SQL updates,
// never read-modify-write round trips.
type StockRepository interface {
	// ResolveStockUnit resolves a SKU to its stock-bearing unit, checking
	// variant SKUs before top-level product SKUs. Returns ErrNotFound when
	// no product carries the SKU.
	ResolveStockUnit(ctx context.Context, tenantID uuid.UUID, sku string) (*StockUnit, error)

	// DecrementStock subtracts quantity from the unit's counter only when
	// the counter holds at least that much. Returns false when the guard
	// rejected the update.
	DecrementStock(ctx context.Context, unit *StockUnit, quantity int64) (bool, error)

	// DecrementStockClamped subtracts quantity from the unit's counter,
	// clamping at zero instead of failing.
	DecrementStockClamped(ctx context.Context, unit *StockUnit, quantity int64) error

	// IncrementStock adds quantity back to the unit's counter.
	IncrementStock(ctx context.Context, unit *StockUnit, quantity int64) error

	// SyncProductStock re-derives a variant product's stock column from the
	// sum of its variant counters.
	SyncProductStock(ctx context.Context, productID uuid.UUID) error
}
