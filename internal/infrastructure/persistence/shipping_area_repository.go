package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"gorm.io/gorm"
)

// GormShippingAreaRepository implements shipping.ShippingAreaRepository using GORM
type GormShippingAreaRepository struct {
	db *gorm.DB
}

// NewGormShippingAreaRepository creates a new GormShippingAreaRepository
func NewGormShippingAreaRepository(db *gorm.DB) *GormShippingAreaRepository {
	return &GormShippingAreaRepository{db: db}
}

// FindByID finds a shipping area by its ID
func (r *GormShippingAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.ShippingArea, error) {
	var area shipping.ShippingArea
	if err := r.db.WithContext(ctx).First(&area, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &area, nil
}

// FindByIDForTenant finds a shipping area by ID within a tenant
func (r *GormShippingAreaRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shipping.ShippingArea, error) {
	var area shipping.ShippingArea
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &area, nil
}

// FindByName finds a shipping area by its exact name within a tenant
func (r *GormShippingAreaRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*shipping.ShippingArea, error) {
	var area shipping.ShippingArea
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND area_name = ?", tenantID, name).
		First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &area, nil
}

// FindActive finds all active shipping areas for a tenant, ordered stably
// so waterfall matching is deterministic
func (r *GormShippingAreaRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]shipping.ShippingArea, error) {
	var areas []shipping.ShippingArea
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, shipping.AreaStatusActive).
		Order("created_at ASC").
		Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// FindDefault finds the tenant's default shipping area
func (r *GormShippingAreaRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*shipping.ShippingArea, error) {
	var area shipping.ShippingArea
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		First(&area).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &area, nil
}

// FindAllForTenant finds all shipping areas for a tenant
func (r *GormShippingAreaRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.ShippingArea, error) {
	var areas []shipping.ShippingArea
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&shipping.ShippingArea{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

// CountForTenant counts shipping areas for a tenant
func (r *GormShippingAreaRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(
		r.db.WithContext(ctx).Model(&shipping.ShippingArea{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a shipping area
func (r *GormShippingAreaRepository) Save(ctx context.Context, area *shipping.ShippingArea) error {
	return r.db.WithContext(ctx).Save(area).Error
}

// SaveAsDefault persists the area with the default flag set and clears the
// flag on every other area of the tenant in the same transaction, so at most
// one default can exist at any point.
func (r *GormShippingAreaRepository) SaveAsDefault(ctx context.Context, area *shipping.ShippingArea) error {
	area.IsDefault = true
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&shipping.ShippingArea{}).
			Where("tenant_id = ? AND id <> ? AND is_default = ?", area.TenantID, area.ID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Save(area).Error
	})
}

// Delete deletes a shipping area within a tenant
func (r *GormShippingAreaRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&shipping.ShippingArea{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormShippingAreaRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ShippingAreaSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormShippingAreaRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("area_name LIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}
