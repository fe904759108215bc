package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// CreateAreaInput carries the data to create a shipping area
type CreateAreaInput struct {
	AreaName        string
	Cities          []string
	ZipCodes        []string
	BasePrice       decimal.Decimal
	PriceMultiplier decimal.Decimal
	IsDefault       bool
}

// UpdateAreaInput carries a partial shipping area update
type UpdateAreaInput struct {
	Cities          *[]string
	ZipCodes        *[]string
	BasePrice       *decimal.Decimal
	PriceMultiplier *decimal.Decimal
	Status          *string
}

// AreaResponse is a shipping area in API responses
type AreaResponse struct {
	ID              string    `json:"id"`
	AreaName        string    `json:"area_name"`
	Cities          []string  `json:"cities"`
	ZipCodes        []string  `json:"zip_codes"`
	BasePrice       string    `json:"base_price"`
	PriceMultiplier string    `json:"price_multiplier"`
	IsDefault       bool      `json:"is_default"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToAreaResponse maps a domain area to its response shape
func ToAreaResponse(a *shipping.ShippingArea) AreaResponse {
	return AreaResponse{
		ID:              a.ID.String(),
		AreaName:        a.AreaName,
		Cities:          a.Cities,
		ZipCodes:        a.ZipCodes,
		BasePrice:       a.BasePrice.String(),
		PriceMultiplier: a.Multiplier().String(),
		IsDefault:       a.IsDefault,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// SlotInput carries the data to create a courier slot
type SlotInput struct {
	Name                     string
	StartTime                string
	EndTime                  string
	BasePrice                decimal.Decimal
	PerKmPrice               decimal.Decimal
	AdditionalPricePerKm     decimal.Decimal
	MaxOrders                int
	EstimatedDeliveryTime    string
	WeightMultiplier         decimal.Decimal
	WeightUnit               string
	DimensionMultiplier      decimal.Decimal
	DimensionUnit            string
	UseDimensionalWeight     bool
	DimensionalWeightDivisor decimal.Decimal
}

// CreateCourierInput carries the data to create a courier with its slots
type CreateCourierInput struct {
	Name  string
	Slots []SlotInput
}

// SlotResponse is a courier slot in API responses
type SlotResponse struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	StartTime                string `json:"start_time,omitempty"`
	EndTime                  string `json:"end_time,omitempty"`
	BasePrice                string `json:"base_price"`
	WeightMultiplier         string `json:"weight_multiplier"`
	WeightUnit               string `json:"weight_unit"`
	UseDimensionalWeight     bool   `json:"use_dimensional_weight"`
	DimensionalWeightDivisor string `json:"dimensional_weight_divisor"`
	EstimatedDeliveryTime    string `json:"estimated_delivery_time,omitempty"`
	MaxOrders                int    `json:"max_orders"`
	Status                   string `json:"status"`
}

// CourierResponse is a courier in API responses
type CourierResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Slots     []SlotResponse `json:"slots"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ToCourierResponse maps a domain courier to its response shape
func ToCourierResponse(c *shipping.Courier) CourierResponse {
	resp := CourierResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Status:    c.Status,
		Slots:     make([]SlotResponse, 0, len(c.Slots)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i := range c.Slots {
		s := &c.Slots[i]
		resp.Slots = append(resp.Slots, SlotResponse{
			ID:                       s.ID.String(),
			Name:                     s.Name,
			StartTime:                s.StartTime,
			EndTime:                  s.EndTime,
			BasePrice:                s.BasePrice.String(),
			WeightMultiplier:         s.WeightMultiplier.String(),
			WeightUnit:               s.WeightUnit,
			UseDimensionalWeight:     s.UseDimensionalWeight,
			DimensionalWeightDivisor: s.Divisor().String(),
			EstimatedDeliveryTime:    s.EstimatedDeliveryTime,
			MaxOrders:                s.MaxOrders,
			Status:                   s.Status,
		})
	}
	return resp
}

// CostItemInput is one cart item entering a cost calculation
type CostItemInput struct {
	WeightGrams decimal.Decimal
	Length      decimal.Decimal
	Width       decimal.Decimal
	Height      decimal.Decimal
	Quantity    int64
}

// CostInput carries everything needed to price a cart
type CostInput struct {
	CourierID uuid.UUID
	SlotID    uuid.UUID
	Items     []CostItemInput
	City      string
	ZipCode   string
	Country   string
}

// CostResponse is the shipping cost breakdown in API responses
type CostResponse struct {
	BasePrice         string  `json:"base_price"`
	AreaPrice         string  `json:"area_price"`
	WeightCost        string  `json:"weight_cost"`
	DimensionCost     string  `json:"dimension_cost"`
	TotalCost         string  `json:"total_cost"`
	AreaName          string  `json:"area_name,omitempty"`
	CalculatedWeight  string  `json:"calculated_weight"`
	CalculatedVolume  string  `json:"calculated_volume"`
	DimensionalWeight *string `json:"dimensional_weight,omitempty"`
}

// ToCostResponse maps a domain calculation result to its response shape
func ToCostResponse(r shipping.CalculationResult) CostResponse {
	resp := CostResponse{
		BasePrice:        r.BasePrice.String(),
		AreaPrice:        r.AreaPrice.String(),
		WeightCost:       r.WeightCost.String(),
		DimensionCost:    r.DimensionCost.String(),
		TotalCost:        r.TotalCost.String(),
		AreaName:         r.AreaName,
		CalculatedWeight: r.CalculatedWeight.String(),
		CalculatedVolume: r.CalculatedVolume.String(),
	}
	if r.DimensionalWeight != nil {
		dw := r.DimensionalWeight.String()
		resp.DimensionalWeight = &dw
	}
	return resp
}
