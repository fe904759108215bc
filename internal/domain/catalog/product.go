package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product status values
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// Product is a sellable item. When IsVariant is true the per-SKU variants
// carry the authoritative stock counters and Stock is a derived sum.
type Product struct {
	shared.TenantEntity
	Name      string          `gorm:"size:255;not null"`
	SKU       string          `gorm:"size:100;not null;index:idx_products_sku"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Weight    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // grams per unit
	Stock     int64           `gorm:"not null;default:0"`
	IsVariant bool            `gorm:"not null;default:false"`
	Status    string          `gorm:"size:20;not null;default:'ACTIVE'"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductVariant is one purchasable variation of a product, addressed by
// its own SKU and holding its own stock counter.
type ProductVariant struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"size:100;not null;index:idx_product_variants_sku"`
	Name      string          `gorm:"size:255"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Stock     int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name, sku string, price, weight decimal.Decimal) (*Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	return &Product{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		SKU:          sku,
		Price:        price,
		Weight:       weight,
		Status:       ProductStatusActive,
		Variants:     make([]ProductVariant, 0),
	}, nil
}

// AddVariant attaches a variant and switches the product to variant mode
func (p *Product) AddVariant(sku, name string, price decimal.Decimal, stock int64) (*ProductVariant, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Variant SKU is required")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Variant stock cannot be negative")
	}
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return nil, shared.ErrAlreadyExists
		}
	}
	variant := ProductVariant{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		SKU:        sku,
		Name:       name,
		Price:      price,
		Stock:      stock,
	}
	p.Variants = append(p.Variants, variant)
	p.IsVariant = true
	p.RecomputeStock()
	return &p.Variants[len(p.Variants)-1], nil
}

// VariantBySKU returns the variant with the given SKU, or nil
func (p *Product) VariantBySKU(sku string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}

// RecomputeStock re-derives the product stock from its variants.
// No-op for non-variant products whose Stock is authoritative.
func (p *Product) RecomputeStock() {
	if !p.IsVariant {
		return
	}
	var total int64
	for i := range p.Variants {
		total += p.Variants[i].Stock
	}
	p.Stock = total
	p.Touch()
}

// IsActive returns true when the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
