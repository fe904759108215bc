package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// columns. Returns the defaultField if the input is empty or not whitelisted.
// Sort columns are interpolated into the ORDER BY clause, so anything not on
// the whitelist is rejected.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"sku":        true,
	"price":      true,
	"stock":      true,
	"status":     true,
}

// ShippingAreaSortFields contains allowed sort fields for shipping areas
var ShippingAreaSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"area_name":        true,
	"base_price":       true,
	"price_multiplier": true,
	"is_default":       true,
	"status":           true,
}

// CourierSortFields contains allowed sort fields for couriers
var CourierSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
}

// ReserveOrderSortFields contains allowed sort fields for reserve orders
var ReserveOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"status":       true,
	"total_amount": true,
}
