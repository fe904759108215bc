package shipping

import (
	"strings"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Shipping area status values
const (
	AreaStatusActive   = "ACTIVE"
	AreaStatusInactive = "INACTIVE"
)

// ShippingArea is a named geographic pricing zone. At most one area per
// tenant carries the default flag; the repository enforces this by clearing
// the flag on every other area inside the same transaction.
type ShippingArea struct {
	shared.TenantEntity
	AreaName        string          `gorm:"size:255;not null;index:idx_shipping_areas_name"`
	Cities          []string        `gorm:"serializer:json"`
	ZipCodes        []string        `gorm:"serializer:json"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PriceMultiplier decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	IsDefault       bool            `gorm:"not null;default:false"`
	Status          string          `gorm:"size:20;not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ShippingArea) TableName() string {
	return "shipping_areas"
}

// NewShippingArea creates a new shipping area
func NewShippingArea(tenantID uuid.UUID, name string, basePrice, priceMultiplier decimal.Decimal) (*ShippingArea, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_AREA_NAME", "Area name is required")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BASE_PRICE", "Base price cannot be negative")
	}
	if priceMultiplier.IsZero() {
		priceMultiplier = decimal.NewFromInt(1)
	}
	return &ShippingArea{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		AreaName:        name,
		Cities:          make([]string, 0),
		ZipCodes:        make([]string, 0),
		BasePrice:       basePrice,
		PriceMultiplier: priceMultiplier,
		Status:          AreaStatusActive,
	}, nil
}

// IsActive returns true when the area participates in resolution
func (a *ShippingArea) IsActive() bool {
	return a.Status == AreaStatusActive
}

// Multiplier returns the price multiplier, defaulting to 1 when unset
func (a *ShippingArea) Multiplier() decimal.Decimal {
	if a.PriceMultiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return a.PriceMultiplier
}

// AreaPrice returns the zone charge: base price scaled by the multiplier
func (a *ShippingArea) AreaPrice() decimal.Decimal {
	return a.BasePrice.Mul(a.Multiplier())
}

// MatchesCity reports whether any configured city contains the given city
// name, case-insensitively, in either direction of containment.
func (a *ShippingArea) MatchesCity(city string) bool {
	needle := strings.ToLower(strings.TrimSpace(city))
	if needle == "" {
		return false
	}
	for _, c := range a.Cities {
		candidate := strings.ToLower(strings.TrimSpace(c))
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return true
		}
	}
	return false
}

// MatchesZip reports whether the zip code is configured exactly
func (a *ShippingArea) MatchesZip(zip string) bool {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return false
	}
	for _, z := range a.ZipCodes {
		if strings.TrimSpace(z) == zip {
			return true
		}
	}
	return false
}

// MatchesName reports whether the area name contains the term
// case-insensitively
func (a *ShippingArea) MatchesName(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(a.AreaName), term)
}
