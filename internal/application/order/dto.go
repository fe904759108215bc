package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/order"
)

// LineInput is one SKU/quantity pair entering a reservation
type LineInput struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
}

// CreateReserveOrderInput carries the data to create or merge a reservation
type CreateReserveOrderInput struct {
	UserID   *uuid.UUID  `json:"user_id"`
	DeviceID *string     `json:"device_id"`
	Note     string      `json:"note"`
	Items    []LineInput `json:"items"`
}

// LineResponse is one reserved line in API responses
type LineResponse struct {
	SKU        string `json:"sku"`
	ProductID  string `json:"product_id"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	UnitWeight string `json:"unit_weight"`
}

// ReserveOrderResponse is a reservation in API responses
type ReserveOrderResponse struct {
	ID            string         `json:"id"`
	UserID        *string        `json:"user_id,omitempty"`
	DeviceID      *string        `json:"device_id,omitempty"`
	Status        string         `json:"status"`
	Note          string         `json:"note,omitempty"`
	TotalAmount   string         `json:"total_amount"`
	TotalWeight   string         `json:"total_weight"`
	TotalQuantity int64          `json:"total_quantity"`
	Lines         []LineResponse `json:"lines"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ToReserveOrderResponse maps a domain reservation to its response shape
func ToReserveOrderResponse(o *order.ReserveOrder) ReserveOrderResponse {
	resp := ReserveOrderResponse{
		ID:            o.ID.String(),
		Status:        o.Status,
		Note:          o.Note,
		TotalAmount:   o.TotalAmount.String(),
		TotalWeight:   o.TotalWeight.String(),
		TotalQuantity: o.TotalQuantity,
		Lines:         make([]LineResponse, 0, len(o.Lines)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.UserID != nil {
		id := o.UserID.String()
		resp.UserID = &id
	}
	if o.DeviceID != nil {
		resp.DeviceID = o.DeviceID
	}
	for i := range o.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			SKU:        o.Lines[i].SKU,
			ProductID:  o.Lines[i].ProductID.String(),
			Quantity:   o.Lines[i].Quantity,
			UnitPrice:  o.Lines[i].UnitPrice.String(),
			UnitWeight: o.Lines[i].UnitWeight.String(),
		})
	}
	return resp
}
