package shipping

import "github.com/shopspring/decimal"

var (
	grams    = decimal.NewFromInt(1000)
	tenTimes = decimal.NewFromInt(10)
)

// CartItem is one reserved line entering the cost calculation
type CartItem struct {
	WeightGrams decimal.Decimal
	Length      decimal.Decimal // cm
	Width       decimal.Decimal
	Height      decimal.Decimal
	Quantity    int64
}

// unitVolume returns L*W*H for a single unit, zero unless all three
// dimensions are set.
func (i CartItem) unitVolume() decimal.Decimal {
	if i.Length.LessThanOrEqual(decimal.Zero) ||
		i.Width.LessThanOrEqual(decimal.Zero) ||
		i.Height.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return i.Length.Mul(i.Width).Mul(i.Height)
}

// AreaQuote is the resolved zone charge fed into the calculation
type AreaQuote struct {
	Name  string
	Price decimal.Decimal
}

// CalculationResult is the breakdown of a shipping charge.
// DimensionCost is always zero: legacy per-volume pricing is superseded by
// the chargeable-weight model and the field is kept for interface
// stability only.
type CalculationResult struct {
	BasePrice         decimal.Decimal
	AreaPrice         decimal.Decimal
	WeightCost        decimal.Decimal
	DimensionCost     decimal.Decimal
	TotalCost         decimal.Decimal
	AreaName          string
	CalculatedWeight  decimal.Decimal // kg, actual
	CalculatedVolume  decimal.Decimal // cm3, diagnostic only
	DimensionalWeight *decimal.Decimal
}

// CalculateCost prices a cart for one courier slot and a resolved area.
//
// The model mimics real parcel-carrier billing: a zone charge plus a
// weight charge over the chargeable weight, where chargeable weight is
// the greater of the cart's actual weight and its dimensional weight.
// Summing independent volume and weight charges would double-bill bulky
// but light shipments.
func CalculateCost(slot *ShippingSlot, items []CartItem, area AreaQuote) CalculationResult {
	result := CalculationResult{
		BasePrice:     slot.BasePrice,
		AreaPrice:     area.Price,
		AreaName:      area.Name,
		DimensionCost: decimal.Zero,
	}

	totalWeightGrams := decimal.Zero
	totalVolume := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(item.Quantity)
		totalWeightGrams = totalWeightGrams.Add(item.WeightGrams.Mul(qty))
		totalVolume = totalVolume.Add(item.unitVolume().Mul(qty))
	}
	result.CalculatedWeight = totalWeightGrams.Div(grams)
	result.CalculatedVolume = totalVolume

	if slot.UseDimensionalWeight {
		if dw := dimensionalWeight(slot, items); dw != nil {
			result.DimensionalWeight = dw
		}
	}

	chargeable := result.CalculatedWeight
	if result.DimensionalWeight != nil && result.DimensionalWeight.GreaterThan(chargeable) {
		chargeable = *result.DimensionalWeight
	}

	result.WeightCost = decimal.Zero
	if slot.WeightMultiplier.GreaterThan(decimal.Zero) {
		result.WeightCost = chargeable.Mul(slot.WeightMultiplier)
		if slot.WeightUnit == WeightUnit100g {
			// Multiplier is expressed per 100g rather than per kg.
			result.WeightCost = result.WeightCost.Mul(tenTimes)
		}
	}

	total := result.AreaPrice.Add(result.WeightCost)
	if total.IsNegative() {
		total = decimal.Zero
	}
	result.TotalCost = total

	return result
}

// dimensionalWeight derives the volumetric weight from the single item
// with the largest per-unit volume; ties keep the first item encountered.
// Items missing any dimension are skipped, and a cart without any fully
// dimensioned item yields no dimensional weight at all.
func dimensionalWeight(slot *ShippingSlot, items []CartItem) *decimal.Decimal {
	best := decimal.Zero
	found := false
	for _, item := range items {
		vol := item.unitVolume()
		if vol.IsZero() {
			continue
		}
		if !found || vol.GreaterThan(best) {
			best = vol
			found = true
		}
	}
	if !found {
		return nil
	}
	dw := best.Div(slot.Divisor())
	return &dw
}
