package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormReserveOrderRepository implements order.ReserveOrderRepository using GORM
type GormReserveOrderRepository struct {
	db *gorm.DB
}

// NewGormReserveOrderRepository creates a new GormReserveOrderRepository
func NewGormReserveOrderRepository(db *gorm.DB) *GormReserveOrderRepository {
	return &GormReserveOrderRepository{db: db}
}

// FindByID finds a reservation with its lines by ID
func (r *GormReserveOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.ReserveOrder, error) {
	var ro order.ReserveOrder
	if err := r.db.WithContext(ctx).Preload("Lines").First(&ro, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ro, nil
}

// FindByIDForTenant finds a reservation by ID within a tenant
func (r *GormReserveOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.ReserveOrder, error) {
	var ro order.ReserveOrder
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ro, nil
}

// FindOpenByOwner finds the open reservation of a user or a device
func (r *GormReserveOrderRepository) FindOpenByOwner(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, deviceID *string) (*order.ReserveOrder, error) {
	query := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND status = ?", tenantID, order.ReserveOrderStatusOpen)

	switch {
	case userID != nil && *userID != uuid.Nil:
		query = query.Where("user_id = ?", *userID)
	case deviceID != nil && *deviceID != "":
		query = query.Where("device_id = ?", *deviceID)
	default:
		return nil, shared.ErrInvalidInput
	}

	var ro order.ReserveOrder
	if err := query.Order("created_at DESC").First(&ro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ro, nil
}

// FindExpired finds open reservations created before the cutoff across all
// tenants. Oldest first so repeated partial sweeps still drain the backlog.
func (r *GormReserveOrderRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]order.ReserveOrder, error) {
	var orders []order.ReserveOrder
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("status = ? AND created_at < ?", order.ReserveOrderStatusOpen, cutoff).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAllForTenant finds all reservations for a tenant
func (r *GormReserveOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.ReserveOrder, error) {
	var orders []order.ReserveOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&order.ReserveOrder{}).Preload("Lines").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountForTenant counts reservations for a tenant
func (r *GormReserveOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyStatus(
		r.db.WithContext(ctx).Model(&order.ReserveOrder{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a reservation together with its lines
func (r *GormReserveOrderRepository) Save(ctx context.Context, ro *order.ReserveOrder) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(ro).Error
}

// DeleteLines removes the given lines of a reservation
func (r *GormReserveOrderRepository) DeleteLines(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&order.ReserveOrderLine{}, "reserve_order_id = ? AND id IN ?", orderID, lineIDs).Error
}

// Delete removes a reservation and its lines. Returns ErrNotFound when the
// record is already gone, so two concurrent deletes cannot both claim it.
func (r *GormReserveOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&order.ReserveOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&order.ReserveOrderLine{}, "reserve_order_id = ?", id).Error
	})
}

func (r *GormReserveOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyStatus(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ReserveOrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormReserveOrderRepository) applyStatus(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}
