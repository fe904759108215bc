package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/multicommerce/backend/internal/domain/shared"
)

// ProductService manages the product catalog
type ProductService struct {
	products catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create creates a product, optionally with variants. A product created
// with variants ignores the top-level stock and derives it from them.
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductResponse, error) {
	existing, err := s.products.FindBySKU(ctx, tenantID, input.SKU)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("SKU_EXISTS", "A product with this SKU already exists")
	}

	product, err := catalog.NewProduct(tenantID, input.Name, input.SKU, input.Price, input.Weight)
	if err != nil {
		return nil, err
	}
	if len(input.Variants) > 0 {
		for _, v := range input.Variants {
			if _, err := product.AddVariant(v.SKU, v.Name, v.Price, v.Stock); err != nil {
				return nil, err
			}
		}
	} else {
		if input.Stock < 0 {
			return nil, shared.NewDomainError("INVALID_STOCK", "Product stock cannot be negative")
		}
		product.Stock = input.Stock
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// AddVariant attaches a new variant to an existing product
func (s *ProductService) AddVariant(ctx context.Context, tenantID, productID uuid.UUID, input VariantInput) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if _, err := product.AddVariant(input.SKU, input.Name, input.Price, input.Stock); err != nil {
		return nil, err
	}
	product.IncrementVersion()
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, input UpdateProductInput) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.Weight != nil {
		product.Weight = *input.Weight
	}
	if input.Status != nil {
		if *input.Status != catalog.ProductStatusActive && *input.Status != catalog.ProductStatusInactive {
			return nil, shared.NewDomainError("INVALID_STATUS", "Status must be ACTIVE or INACTIVE")
		}
		product.Status = *input.Status
	}
	product.Touch()
	product.IncrementVersion()
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Get retrieves a product with its variants
func (s *ProductService) Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySKU retrieves a product by its own or one of its variants' SKU
func (s *ProductService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductResponse, error) {
	product, err := s.products.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves products for a tenant with pagination
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, err := s.products.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProductResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToProductResponse(&items[i]))
	}
	return responses, total, nil
}

// Delete removes a product and its variants
func (s *ProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	return s.products.Delete(ctx, tenantID, productID)
}
