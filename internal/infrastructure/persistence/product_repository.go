package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/multicommerce/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository and
// catalog.StockRepository using GORM. Stock counter updates are conditional
// single-statement SQL so concurrent reservations never lose a decrement.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).Preload("Variants").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds a product whose own SKU or one of whose variant SKUs
// matches
func (r *GormProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	var product catalog.Product
	err := r.db.WithContext(ctx).Preload("Variants").
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var variant catalog.ProductVariant
	err = r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.tenant_id = ? AND product_variants.sku = ?", tenantID, sku).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByIDForTenant(ctx, tenantID, variant.ProductID)
}

// FindAllForTenant finds all products for a tenant
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.Product{}).Preload("Variants").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CountForTenant counts products for a tenant
func (r *GormProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(
		r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product together with its variants
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(product).Error
}

// Delete deletes a product and its variants within a tenant
func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&catalog.Product{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&catalog.ProductVariant{}, "product_id = ?", id).Error
	})
}

// ResolveStockUnit resolves a SKU to its stock-bearing unit. Variant SKUs
// take precedence over product SKUs.
func (r *GormProductRepository) ResolveStockUnit(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.StockUnit, error) {
	var variant catalog.ProductVariant
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.tenant_id = ? AND product_variants.sku = ?", tenantID, sku).
		First(&variant).Error
	if err == nil {
		product, err := r.FindByIDForTenant(ctx, tenantID, variant.ProductID)
		if err != nil {
			return nil, err
		}
		resolved := product.VariantBySKU(sku)
		if resolved == nil {
			return nil, shared.ErrNotFound
		}
		return &catalog.StockUnit{Product: product, Variant: resolved}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var product catalog.Product
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ? AND is_variant = ?", tenantID, sku, false).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &catalog.StockUnit{Product: &product}, nil
}

// DecrementStock subtracts quantity from the unit's counter only when the
// counter holds at least that much. The WHERE guard makes the check and the
// write one atomic statement; false means the guard rejected it.
func (r *GormProductRepository) DecrementStock(ctx context.Context, unit *catalog.StockUnit, quantity int64) (bool, error) {
	result := r.stockQuery(ctx, unit).
		Where("stock >= ?", quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementStockClamped subtracts quantity from the unit's counter, clamping
// at zero instead of failing
func (r *GormProductRepository) DecrementStockClamped(ctx context.Context, unit *catalog.StockUnit, quantity int64) error {
	return r.stockQuery(ctx, unit).
		Update("stock", gorm.Expr("CASE WHEN stock >= ? THEN stock - ? ELSE 0 END", quantity, quantity)).Error
}

// IncrementStock adds quantity back to the unit's counter
func (r *GormProductRepository) IncrementStock(ctx context.Context, unit *catalog.StockUnit, quantity int64) error {
	return r.stockQuery(ctx, unit).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
}

// SyncProductStock re-derives a variant product's stock column from the sum
// of its variant counters
func (r *GormProductRepository) SyncProductStock(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ? AND is_variant = ?", productID, true).
		Update("stock", gorm.Expr(
			"(SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = ?)", productID,
		)).Error
}

func (r *GormProductRepository) stockQuery(ctx context.Context, unit *catalog.StockUnit) *gorm.DB {
	if unit.IsVariant() {
		return r.db.WithContext(ctx).Model(&catalog.ProductVariant{}).
			Where("id = ?", unit.Variant.ID)
	}
	return r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", unit.Product.ID)
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func (r *GormProductRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}
