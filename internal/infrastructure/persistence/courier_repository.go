package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"gorm.io/gorm"
)

// GormCourierRepository implements shipping.CourierRepository using GORM
type GormCourierRepository struct {
	db *gorm.DB
}

// NewGormCourierRepository creates a new GormCourierRepository
func NewGormCourierRepository(db *gorm.DB) *GormCourierRepository {
	return &GormCourierRepository{db: db}
}

// FindByIDForTenant finds a courier with its slots within a tenant
func (r *GormCourierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shipping.Courier, error) {
	var courier shipping.Courier
	if err := r.db.WithContext(ctx).Preload("Slots").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&courier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &courier, nil
}

// FindAllForTenant finds all couriers for a tenant
func (r *GormCourierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.Courier, error) {
	var couriers []shipping.Courier
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&shipping.Courier{}).Preload("Slots").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&couriers).Error; err != nil {
		return nil, err
	}
	return couriers, nil
}

// CountForTenant counts couriers for a tenant
func (r *GormCourierRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(
		r.db.WithContext(ctx).Model(&shipping.Courier{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a courier together with its slots
func (r *GormCourierRepository) Save(ctx context.Context, courier *shipping.Courier) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(courier).Error
}

// Delete deletes a courier and its slots within a tenant
func (r *GormCourierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&shipping.Courier{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&shipping.ShippingSlot{}, "courier_id = ?", id).Error
	})
}

func (r *GormCourierRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CourierSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormCourierRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}
