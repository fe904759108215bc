package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shippingapp "github.com/multicommerce/backend/internal/application/shipping"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/multicommerce/backend/internal/domain/shipping"
	"github.com/multicommerce/backend/internal/interfaces/http/dto"
)

// MockCourierRepository mocks shipping.CourierRepository for handler tests
type MockCourierRepository struct {
	mock.Mock
}

func (m *MockCourierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shipping.Courier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Courier), args.Error(1)
}

func (m *MockCourierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.Courier, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Courier), args.Error(1)
}

func (m *MockCourierRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCourierRepository) Save(ctx context.Context, courier *shipping.Courier) error {
	args := m.Called(ctx, courier)
	return args.Error(0)
}

func (m *MockCourierRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockShippingAreaRepository mocks shipping.ShippingAreaRepository for handler tests
type MockShippingAreaRepository struct {
	mock.Mock
}

func (m *MockShippingAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.ShippingArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingArea), args.Error(1)
}

func (m *MockShippingAreaRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shipping.ShippingArea, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingArea), args.Error(1)
}

func (m *MockShippingAreaRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*shipping.ShippingArea, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingArea), args.Error(1)
}

func (m *MockShippingAreaRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]shipping.ShippingArea, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.ShippingArea), args.Error(1)
}

func (m *MockShippingAreaRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*shipping.ShippingArea, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ShippingArea), args.Error(1)
}

func (m *MockShippingAreaRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.ShippingArea, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.ShippingArea), args.Error(1)
}

func (m *MockShippingAreaRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShippingAreaRepository) Save(ctx context.Context, area *shipping.ShippingArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

func (m *MockShippingAreaRepository) SaveAsDefault(ctx context.Context, area *shipping.ShippingArea) error {
	args := m.Called(ctx, area)
	return args.Error(0)
}

func (m *MockShippingAreaRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func newCostTestCourier(t *testing.T, tenantID uuid.UUID) (*shipping.Courier, *shipping.ShippingSlot) {
	t.Helper()
	courier, err := shipping.NewCourier(tenantID, "Express")
	require.NoError(t, err)
	slot, err := courier.AddSlot(shipping.ShippingSlot{
		Name:             "Same Day",
		BasePrice:        decimal.NewFromInt(5),
		WeightMultiplier: decimal.NewFromInt(2),
		WeightUnit:       shipping.WeightUnitKg,
	})
	require.NoError(t, err)
	return courier, slot
}

func performCalculate(h *ShippingCostHandler, body any) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/shipping/costs/calculate", h.Calculate)

	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/shipping/costs/calculate", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestShippingCostHandler_Calculate(t *testing.T) {
	tenantID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	t.Run("prices a cart against the matched area", func(t *testing.T) {
		couriers := new(MockCourierRepository)
		areas := new(MockShippingAreaRepository)
		courier, slot := newCostTestCourier(t, tenantID)

		area, err := shipping.NewShippingArea(tenantID, "Metro", decimal.NewFromInt(10), decimal.NewFromFloat(1.5))
		require.NoError(t, err)
		area.Cities = []string{"jakarta"}

		couriers.On("FindByIDForTenant", mock.Anything, tenantID, courier.ID).Return(courier, nil)
		areas.On("FindActive", mock.Anything, tenantID).Return([]shipping.ShippingArea{*area}, nil)

		h := NewShippingCostHandler(shippingapp.NewCostService(couriers, areas, zap.NewNop()))
		w := performCalculate(h, CalculateCostRequest{
			CourierID: courier.ID.String(),
			SlotID:    slot.ID.String(),
			City:      "jakarta",
			Items: []CostItemRequest{
				{WeightGrams: 1000, Quantity: 2},
			},
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "Metro", data["area_name"])
		assert.Equal(t, "15", data["area_price"])
		assert.Equal(t, "4", data["weight_cost"])
		assert.Equal(t, "19", data["total_cost"])
		couriers.AssertExpectations(t)
		areas.AssertExpectations(t)
	})

	t.Run("weight charge only when nothing matches and no default exists", func(t *testing.T) {
		couriers := new(MockCourierRepository)
		areas := new(MockShippingAreaRepository)
		courier, slot := newCostTestCourier(t, tenantID)

		couriers.On("FindByIDForTenant", mock.Anything, tenantID, courier.ID).Return(courier, nil)
		areas.On("FindActive", mock.Anything, tenantID).Return([]shipping.ShippingArea{}, nil)
		areas.On("FindDefault", mock.Anything, tenantID).Return(nil, shared.ErrNotFound)

		h := NewShippingCostHandler(shippingapp.NewCostService(couriers, areas, zap.NewNop()))
		w := performCalculate(h, CalculateCostRequest{
			CourierID: courier.ID.String(),
			SlotID:    slot.ID.String(),
			Items: []CostItemRequest{
				{WeightGrams: 1000, Quantity: 1},
			},
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "0", data["area_price"])
		assert.Equal(t, "2", data["total_cost"])
	})

	t.Run("unknown courier is a 404", func(t *testing.T) {
		couriers := new(MockCourierRepository)
		areas := new(MockShippingAreaRepository)
		courierID := uuid.New()

		couriers.On("FindByIDForTenant", mock.Anything, tenantID, courierID).Return(nil, shared.ErrNotFound)

		h := NewShippingCostHandler(shippingapp.NewCostService(couriers, areas, zap.NewNop()))
		w := performCalculate(h, CalculateCostRequest{
			CourierID: courierID.String(),
			SlotID:    uuid.New().String(),
			Items: []CostItemRequest{
				{WeightGrams: 500, Quantity: 1},
			},
		})

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("inactive slot is a 422", func(t *testing.T) {
		couriers := new(MockCourierRepository)
		areas := new(MockShippingAreaRepository)
		courier, slot := newCostTestCourier(t, tenantID)
		slot.Status = shipping.SlotStatusInactive

		couriers.On("FindByIDForTenant", mock.Anything, tenantID, courier.ID).Return(courier, nil)

		h := NewShippingCostHandler(shippingapp.NewCostService(couriers, areas, zap.NewNop()))
		w := performCalculate(h, CalculateCostRequest{
			CourierID: courier.ID.String(),
			SlotID:    slot.ID.String(),
			Items: []CostItemRequest{
				{WeightGrams: 500, Quantity: 1},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("missing items is a 400", func(t *testing.T) {
		h := NewShippingCostHandler(shippingapp.NewCostService(new(MockCourierRepository), new(MockShippingAreaRepository), zap.NewNop()))
		w := performCalculate(h, CalculateCostRequest{
			CourierID: uuid.New().String(),
			SlotID:    uuid.New().String(),
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed courier id is a 400", func(t *testing.T) {
		h := NewShippingCostHandler(shippingapp.NewCostService(new(MockCourierRepository), new(MockShippingAreaRepository), zap.NewNop()))
		w := performCalculate(h, map[string]any{
			"courier_id": "not-a-uuid",
			"slot_id":    uuid.New().String(),
			"items":      []map[string]any{{"weight_grams": 500, "quantity": 1}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
