package catalog

import (
	"time"

	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// VariantInput carries the data to create a product variant
type VariantInput struct {
	SKU   string
	Name  string
	Price decimal.Decimal
	Stock int64
}

// CreateProductInput carries the data to create a product
type CreateProductInput struct {
	Name     string
	SKU      string
	Price    decimal.Decimal
	Weight   decimal.Decimal
	Stock    int64
	Variants []VariantInput
}

// UpdateProductInput carries a partial product update
type UpdateProductInput struct {
	Name   *string
	Price  *decimal.Decimal
	Weight *decimal.Decimal
	Status *string
}

// VariantResponse is a product variant in API responses
type VariantResponse struct {
	ID    string `json:"id"`
	SKU   string `json:"sku"`
	Name  string `json:"name,omitempty"`
	Price string `json:"price"`
	Stock int64  `json:"stock"`
}

// ProductResponse is a product in API responses
type ProductResponse struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenant_id"`
	Name      string            `json:"name"`
	SKU       string            `json:"sku"`
	Price     string            `json:"price"`
	Weight    string            `json:"weight"`
	Stock     int64             `json:"stock"`
	IsVariant bool              `json:"is_variant"`
	Status    string            `json:"status"`
	Variants  []VariantResponse `json:"variants,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ToProductResponse maps a domain product to its response shape
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID.String(),
		TenantID:  p.TenantID.String(),
		Name:      p.Name,
		SKU:       p.SKU,
		Price:     p.Price.String(),
		Weight:    p.Weight.String(),
		Stock:     p.Stock,
		IsVariant: p.IsVariant,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:    v.ID.String(),
			SKU:   v.SKU,
			Name:  v.Name,
			Price: v.Price.String(),
			Stock: v.Stock,
		})
	}
	return resp
}
