package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Reserve order status values
const (
	ReserveOrderStatusOpen      = "OPEN"
	ReserveOrderStatusConverted = "CONVERTED"
)

// ReserveOrder is a provisional, stock-holding cart snapshot created
// before checkout. It is owned by either a registered user or an
// anonymous device, and its totals are derived fields recomputed on every
// mutation.
type ReserveOrder struct {
	shared.TenantEntity
	UserID        *uuid.UUID      `gorm:"type:uuid;index"`
	DeviceID      *string         `gorm:"size:255;index"`
	Status        string          `gorm:"size:20;not null;default:'OPEN'"`
	Note          string          `gorm:"size:1000"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalWeight   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // grams
	TotalQuantity int64           `gorm:"not null;default:0"`

	Lines []ReserveOrderLine `gorm:"foreignKey:ReserveOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (ReserveOrder) TableName() string {
	return "reserve_orders"
}

// ReserveOrderLine is one reserved SKU with its quantity and unit figures
type ReserveOrderLine struct {
	shared.BaseEntity
	ReserveOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null"`
	SKU            string          `gorm:"size:100;not null"`
	Quantity       int64           `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	UnitWeight     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // grams
}

// TableName returns the table name for GORM
func (ReserveOrderLine) TableName() string {
	return "reserve_order_lines"
}

// NewReserveOrder creates a reservation for a user or an anonymous device.
// At least one owner identifier is required.
func NewReserveOrder(tenantID uuid.UUID, userID *uuid.UUID, deviceID *string, note string) (*ReserveOrder, error) {
	hasUser := userID != nil && *userID != uuid.Nil
	hasDevice := deviceID != nil && strings.TrimSpace(*deviceID) != ""
	if !hasUser && !hasDevice {
		return nil, shared.NewDomainError("INVALID_OWNER", "Reservation requires a user or a device identifier")
	}
	ro := &ReserveOrder{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Status:       ReserveOrderStatusOpen,
		Note:         note,
		Lines:        make([]ReserveOrderLine, 0),
	}
	if hasUser {
		ro.UserID = userID
	}
	if hasDevice {
		d := strings.TrimSpace(*deviceID)
		ro.DeviceID = &d
	}
	return ro, nil
}

// LineBySKU returns the line holding the SKU, or nil
func (o *ReserveOrder) LineBySKU(sku string) *ReserveOrderLine {
	for i := range o.Lines {
		if o.Lines[i].SKU == sku {
			return &o.Lines[i]
		}
	}
	return nil
}

// AddLine reserves quantity of a SKU. A second reservation of a SKU the
// order already holds merges into the existing line instead of creating a
// duplicate. Returns the affected line.
func (o *ReserveOrder) AddLine(productID uuid.UUID, sku string, quantity int64, unitPrice, unitWeight decimal.Decimal) (*ReserveOrderLine, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if existing := o.LineBySKU(sku); existing != nil {
		existing.Quantity += quantity
		existing.Touch()
		o.RecalculateTotals()
		return existing, nil
	}
	line := ReserveOrderLine{
		BaseEntity:     shared.NewBaseEntity(),
		ReserveOrderID: o.ID,
		ProductID:      productID,
		SKU:            sku,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		UnitWeight:     unitWeight,
	}
	o.Lines = append(o.Lines, line)
	o.RecalculateTotals()
	return &o.Lines[len(o.Lines)-1], nil
}

// SetLineQuantity changes a line's quantity and returns the signed stock
// delta (positive means more stock is being reserved). A zero quantity
// removes the line.
func (o *ReserveOrder) SetLineQuantity(sku string, quantity int64) (int64, error) {
	if quantity < 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	line := o.LineBySKU(sku)
	if line == nil {
		return 0, shared.ErrNotFound
	}
	diff := quantity - line.Quantity
	if quantity == 0 {
		o.removeLine(sku)
	} else {
		line.Quantity = quantity
		line.Touch()
	}
	o.RecalculateTotals()
	return diff, nil
}

// RemoveLine drops a line and returns it so callers can restock its
// quantity. Returns nil when the SKU is not reserved.
func (o *ReserveOrder) RemoveLine(sku string) *ReserveOrderLine {
	line := o.LineBySKU(sku)
	if line == nil {
		return nil
	}
	removed := *line
	o.removeLine(sku)
	o.RecalculateTotals()
	return &removed
}

func (o *ReserveOrder) removeLine(sku string) {
	kept := o.Lines[:0]
	for _, l := range o.Lines {
		if l.SKU != sku {
			kept = append(kept, l)
		}
	}
	o.Lines = kept
}

// RecalculateTotals re-derives amount, weight and quantity from the lines
func (o *ReserveOrder) RecalculateTotals() {
	amount := decimal.Zero
	weight := decimal.Zero
	var quantity int64
	for i := range o.Lines {
		qty := decimal.NewFromInt(o.Lines[i].Quantity)
		amount = amount.Add(o.Lines[i].UnitPrice.Mul(qty))
		weight = weight.Add(o.Lines[i].UnitWeight.Mul(qty))
		quantity += o.Lines[i].Quantity
	}
	o.TotalAmount = amount
	o.TotalWeight = weight
	o.TotalQuantity = quantity
	o.Touch()
}

// IsExpired reports whether the reservation is older than the retention
// window and should be swept.
func (o *ReserveOrder) IsExpired(retention time.Duration) bool {
	return time.Since(o.CreatedAt) > retention
}

// Convert marks the reservation as converted to a real order. Converted
// reservations keep their stock committed; deleting them must not restock.
func (o *ReserveOrder) Convert() error {
	if o.Status != ReserveOrderStatusOpen {
		return shared.ErrInvalidState
	}
	o.Status = ReserveOrderStatusConverted
	o.Touch()
	return nil
}
