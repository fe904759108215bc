package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
)

// ReserveOrderRepository defines persistence operations for reservations.
// Orders are always loaded together with their lines.
type ReserveOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReserveOrder, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ReserveOrder, error)
	// FindOpenByOwner finds the open reservation belonging to a user or a
	// device. Returns ErrNotFound when the owner has none.
	FindOpenByOwner(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, deviceID *string) (*ReserveOrder, error)
	// FindExpired finds open reservations created before the cutoff,
	// across all tenants. Used by the expiry sweep.
	FindExpired(ctx context.Context, cutoff time.Time) ([]ReserveOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReserveOrder, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, order *ReserveOrder) error
	DeleteLines(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) error
	// Delete removes the reservation and its lines. Returns ErrNotFound
	// when the record is already gone, which concurrent sweeps rely on to
	// stay idempotent.
	Delete(ctx context.Context, id uuid.UUID) error
}
