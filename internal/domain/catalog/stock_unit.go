package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockUnit is the smallest entity an inventory count is tracked for:
// either a bare product or one specific variant of it. A SKU is resolved
// to a unit exactly once, so callers never branch on IsVariant themselves.
type StockUnit struct {
	Product *Product
	Variant *ProductVariant // nil for non-variant products
}

// IsVariant reports whether the unit points at a product variant
func (u *StockUnit) IsVariant() bool {
	return u.Variant != nil
}

// SKU returns the SKU the unit was resolved from
func (u *StockUnit) SKU() string {
	if u.Variant != nil {
		return u.Variant.SKU
	}
	return u.Product.SKU
}

// ProductID returns the owning product's ID
func (u *StockUnit) ProductID() uuid.UUID {
	return u.Product.ID
}

// Stock returns the unit's current counter value
func (u *StockUnit) Stock() int64 {
	if u.Variant != nil {
		return u.Variant.Stock
	}
	return u.Product.Stock
}

// UnitPrice returns the price charged per unit
func (u *StockUnit) UnitPrice() decimal.Decimal {
	if u.Variant != nil {
		return u.Variant.Price
	}
	return u.Product.Price
}

// UnitWeight returns the weight in grams per unit. Variants inherit the
// product weight.
func (u *StockUnit) UnitWeight() decimal.Decimal {
	return u.Product.Weight
}
