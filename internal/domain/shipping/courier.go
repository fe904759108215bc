package shipping

import (
	"strings"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Courier and slot status values
const (
	CourierStatusActive   = "ACTIVE"
	CourierStatusInactive = "INACTIVE"
	SlotStatusActive      = "ACTIVE"
	SlotStatusInactive    = "INACTIVE"
)

// Weight units a slot's multiplier can be expressed in
const (
	WeightUnitKg     = "kg"
	WeightUnit100g   = "100g"
	defaultDWDivisor = 5000
)

// Courier is a delivery provider owning a set of delivery slots.
// Slot IDs are only meaningful within their courier.
type Courier struct {
	shared.TenantEntity
	Name   string `gorm:"size:255;not null"`
	Status string `gorm:"size:20;not null;default:'ACTIVE'"`

	Slots []ShippingSlot `gorm:"foreignKey:CourierID;references:ID"`
}

// TableName returns the table name for GORM
func (Courier) TableName() string {
	return "couriers"
}

// ShippingSlot is one delivery window of a courier together with its
// pricing configuration.
type ShippingSlot struct {
	shared.BaseEntity
	CourierID                uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name                     string          `gorm:"size:255;not null"`
	StartTime                string          `gorm:"size:10"` // "HH:MM"
	EndTime                  string          `gorm:"size:10"`
	BasePrice                decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PerKmPrice               decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AdditionalPricePerKm     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	MaxOrders                int             `gorm:"not null;default:0"`
	EstimatedDeliveryTime    string          `gorm:"size:100"`
	WeightMultiplier         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightUnit               string          `gorm:"size:10;not null;default:'kg'"`
	DimensionMultiplier      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DimensionUnit            string          `gorm:"size:10"`
	UseDimensionalWeight     bool            `gorm:"not null;default:false"`
	DimensionalWeightDivisor decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status                   string          `gorm:"size:20;not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ShippingSlot) TableName() string {
	return "shipping_slots"
}

// NewCourier creates a new courier
func NewCourier(tenantID uuid.UUID, name string) (*Courier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_COURIER_NAME", "Courier name is required")
	}
	return &Courier{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Status:       CourierStatusActive,
		Slots:        make([]ShippingSlot, 0),
	}, nil
}

// AddSlot attaches a new slot to the courier
func (c *Courier) AddSlot(slot ShippingSlot) (*ShippingSlot, error) {
	if strings.TrimSpace(slot.Name) == "" {
		return nil, shared.NewDomainError("INVALID_SLOT_NAME", "Slot name is required")
	}
	if slot.WeightUnit != "" && slot.WeightUnit != WeightUnitKg && slot.WeightUnit != WeightUnit100g {
		return nil, shared.NewDomainError("INVALID_WEIGHT_UNIT", "Weight unit must be kg or 100g")
	}
	if slot.ID == uuid.Nil {
		slot.BaseEntity = shared.NewBaseEntity()
	}
	slot.CourierID = c.ID
	if slot.WeightUnit == "" {
		slot.WeightUnit = WeightUnitKg
	}
	if slot.Status == "" {
		slot.Status = SlotStatusActive
	}
	c.Slots = append(c.Slots, slot)
	return &c.Slots[len(c.Slots)-1], nil
}

// SlotByID returns the slot with the given ID, or nil when the courier
// does not own it.
func (c *Courier) SlotByID(id uuid.UUID) *ShippingSlot {
	for i := range c.Slots {
		if c.Slots[i].ID == id {
			return &c.Slots[i]
		}
	}
	return nil
}

// Divisor returns the dimensional weight divisor, defaulting to 5000
func (s *ShippingSlot) Divisor() decimal.Decimal {
	if s.DimensionalWeightDivisor.LessThanOrEqual(decimal.Zero) {
		return decimal.NewFromInt(defaultDWDivisor)
	}
	return s.DimensionalWeightDivisor
}

// IsActive returns true when the slot accepts orders
func (s *ShippingSlot) IsActive() bool {
	return s.Status == SlotStatusActive
}
