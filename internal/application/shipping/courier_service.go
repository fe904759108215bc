package shipping

import (
	"context"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
)

// CourierService manages couriers and their delivery slots
type CourierService struct {
	couriers shipping.CourierRepository
}

// NewCourierService creates a new CourierService
func NewCourierService(couriers shipping.CourierRepository) *CourierService {
	return &CourierService{couriers: couriers}
}

// Create creates a courier together with its slots
func (s *CourierService) Create(ctx context.Context, tenantID uuid.UUID, input CreateCourierInput) (*CourierResponse, error) {
	courier, err := shipping.NewCourier(tenantID, input.Name)
	if err != nil {
		return nil, err
	}
	for _, slot := range input.Slots {
		if _, err := courier.AddSlot(shipping.ShippingSlot{
			Name:                     slot.Name,
			StartTime:                slot.StartTime,
			EndTime:                  slot.EndTime,
			BasePrice:                slot.BasePrice,
			PerKmPrice:               slot.PerKmPrice,
			AdditionalPricePerKm:     slot.AdditionalPricePerKm,
			MaxOrders:                slot.MaxOrders,
			EstimatedDeliveryTime:    slot.EstimatedDeliveryTime,
			WeightMultiplier:         slot.WeightMultiplier,
			WeightUnit:               slot.WeightUnit,
			DimensionMultiplier:      slot.DimensionMultiplier,
			DimensionUnit:            slot.DimensionUnit,
			UseDimensionalWeight:     slot.UseDimensionalWeight,
			DimensionalWeightDivisor: slot.DimensionalWeightDivisor,
		}); err != nil {
			return nil, err
		}
	}
	if err := s.couriers.Save(ctx, courier); err != nil {
		return nil, err
	}
	resp := ToCourierResponse(courier)
	return &resp, nil
}

// AddSlot appends a slot to an existing courier
func (s *CourierService) AddSlot(ctx context.Context, tenantID, courierID uuid.UUID, input SlotInput) (*CourierResponse, error) {
	courier, err := s.couriers.FindByIDForTenant(ctx, tenantID, courierID)
	if err != nil {
		return nil, err
	}
	if _, err := courier.AddSlot(shipping.ShippingSlot{
		Name:                     input.Name,
		StartTime:                input.StartTime,
		EndTime:                  input.EndTime,
		BasePrice:                input.BasePrice,
		PerKmPrice:               input.PerKmPrice,
		AdditionalPricePerKm:     input.AdditionalPricePerKm,
		MaxOrders:                input.MaxOrders,
		EstimatedDeliveryTime:    input.EstimatedDeliveryTime,
		WeightMultiplier:         input.WeightMultiplier,
		WeightUnit:               input.WeightUnit,
		DimensionMultiplier:      input.DimensionMultiplier,
		DimensionUnit:            input.DimensionUnit,
		UseDimensionalWeight:     input.UseDimensionalWeight,
		DimensionalWeightDivisor: input.DimensionalWeightDivisor,
	}); err != nil {
		return nil, err
	}
	courier.Touch()
	courier.IncrementVersion()
	if err := s.couriers.Save(ctx, courier); err != nil {
		return nil, err
	}
	resp := ToCourierResponse(courier)
	return &resp, nil
}

// SetSlotStatus activates or deactivates one slot
func (s *CourierService) SetSlotStatus(ctx context.Context, tenantID, courierID, slotID uuid.UUID, status string) (*CourierResponse, error) {
	if status != shipping.SlotStatusActive && status != shipping.SlotStatusInactive {
		return nil, shared.NewDomainError("INVALID_STATUS", "Status must be ACTIVE or INACTIVE")
	}
	courier, err := s.couriers.FindByIDForTenant(ctx, tenantID, courierID)
	if err != nil {
		return nil, err
	}
	slot := courier.SlotByID(slotID)
	if slot == nil {
		return nil, shared.NewDomainError("SLOT_NOT_FOUND", "Shipping slot not found")
	}
	slot.Status = status
	slot.Touch()
	courier.Touch()
	if err := s.couriers.Save(ctx, courier); err != nil {
		return nil, err
	}
	resp := ToCourierResponse(courier)
	return &resp, nil
}

// Get retrieves a courier with its slots
func (s *CourierService) Get(ctx context.Context, tenantID, courierID uuid.UUID) (*CourierResponse, error) {
	courier, err := s.couriers.FindByIDForTenant(ctx, tenantID, courierID)
	if err != nil {
		return nil, err
	}
	resp := ToCourierResponse(courier)
	return &resp, nil
}

// List retrieves couriers for a tenant with pagination
func (s *CourierService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CourierResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, err := s.couriers.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.couriers.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CourierResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToCourierResponse(&items[i]))
	}
	return responses, total, nil
}

// Delete removes a courier and its slots
func (s *CourierService) Delete(ctx context.Context, tenantID, courierID uuid.UUID) error {
	return s.couriers.Delete(ctx, tenantID, courierID)
}
