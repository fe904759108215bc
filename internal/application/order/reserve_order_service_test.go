package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReserveOrderService(orders *MockReserveOrderRepository, stock *MockStockRepository, cfg ReconcilerConfig) *ReserveOrderService {
	reconciler := NewStockReconciler(stock, cfg, zap.NewNop())
	return NewReserveOrderService(orders, reconciler, zap.NewNop())
}

func openReservation(t *testing.T, tenantID uuid.UUID, userID uuid.UUID) *order.ReserveOrder {
	t.Helper()
	ro, err := order.NewReserveOrder(tenantID, &userID, nil, "")
	require.NoError(t, err)
	return ro
}

func TestReserveOrderService_Create(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("creates a new reservation and debits stock", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(2)).Return(nil)
		mockOrders.On("Save", mock.Anything, mock.AnythingOfType("*order.ReserveOrder")).Return(nil)

		resp, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items:  []LineInput{{SKU: "SKU-1", Quantity: 2}},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, order.ReserveOrderStatusOpen, resp.Status)
		assert.Equal(t, int64(2), resp.TotalQuantity)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "SKU-1", resp.Lines[0].SKU)
		mockOrders.AssertExpectations(t)
		mockStock.AssertExpectations(t)
	})

	t.Run("merges into the owner's open reservation", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		existing := openReservation(t, tenantID, userID)
		_, err := existing.AddLine(uuid.New(), "SKU-1", 1, decimal.NewFromInt(10), decimal.NewFromInt(100))
		require.NoError(t, err)
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(existing, nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(3)).Return(nil)
		mockOrders.On("Save", mock.Anything, existing).Return(nil)

		resp, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items:  []LineInput{{SKU: "SKU-1", Quantity: 3}},
		})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, int64(4), resp.Lines[0].Quantity)
	})

	t.Run("skips unknown SKUs in lenient mode", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "GHOST").Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(1)).Return(nil)
		mockOrders.On("Save", mock.Anything, mock.AnythingOfType("*order.ReserveOrder")).Return(nil)

		resp, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items: []LineInput{
				{SKU: "GHOST", Quantity: 5},
				{SKU: "SKU-1", Quantity: 1},
			},
		})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "SKU-1", resp.Lines[0].SKU)
	})

	t.Run("fails when every item is unknown", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "GHOST").Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items:  []LineInput{{SKU: "GHOST", Quantity: 5}},
		})

		require.Error(t, err)
		mockOrders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails on unknown SKU in strict mode", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{StrictSKU: true})

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "GHOST").Return(nil, shared.ErrNotFound)

		_, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items:  []LineInput{{SKU: "GHOST", Quantity: 5}},
		})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("fails on insufficient stock in strict mode", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{StrictStock: true})
		unit := productUnit(tenantID, "SKU-1", 1)

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStock", mock.Anything, unit, int64(5)).Return(false, nil)

		_, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items:  []LineInput{{SKU: "SKU-1", Quantity: 5}},
		})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("guard failure on a later line credits earlier debits back", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{StrictStock: true})
		unitA := productUnit(tenantID, "SKU-A", 10)
		unitB := productUnit(tenantID, "SKU-B", 0)

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-A").Return(unitA, nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-B").Return(unitB, nil)
		mockStock.On("DecrementStock", mock.Anything, unitA, int64(2)).Return(true, nil)
		mockStock.On("DecrementStock", mock.Anything, unitB, int64(1)).Return(false, nil)
		mockStock.On("IncrementStock", mock.Anything, unitA, int64(2)).Return(nil)

		_, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items: []LineInput{
				{SKU: "SKU-A", Quantity: 2},
				{SKU: "SKU-B", Quantity: 1},
			},
		})

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		mockOrders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		mockStock.AssertCalled(t, "IncrementStock", mock.Anything, unitA, int64(2))
	})

	t.Run("save failure credits every debit back", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindOpenByOwner", mock.Anything, tenantID, &userID, (*string)(nil)).Return(nil, shared.ErrNotFound)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(2)).Return(nil)
		mockOrders.On("Save", mock.Anything, mock.AnythingOfType("*order.ReserveOrder")).Return(errors.New("db down"))
		mockStock.On("IncrementStock", mock.Anything, unit, int64(2)).Return(nil)

		_, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{
			UserID: &userID,
			Items:  []LineInput{{SKU: "SKU-1", Quantity: 2}},
		})

		require.Error(t, err)
		mockStock.AssertCalled(t, "IncrementStock", mock.Anything, unit, int64(2))
	})

	t.Run("rejects an empty item list", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		_, err := service.Create(context.Background(), tenantID, CreateReserveOrderInput{UserID: &userID})

		require.Error(t, err)
	})
}

func TestReserveOrderService_UpdateLineQuantity(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	setup := func(t *testing.T) (*order.ReserveOrder, *MockReserveOrderRepository, *MockStockRepository, *ReserveOrderService) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})
		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.NewFromInt(100))
		require.NoError(t, err)
		return ro, mockOrders, mockStock, service
	}

	t.Run("increase debits the difference", func(t *testing.T) {
		ro, mockOrders, mockStock, service := setup(t)
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(3)).Return(nil)
		mockOrders.On("Save", mock.Anything, ro).Return(nil)

		resp, err := service.UpdateLineQuantity(context.Background(), tenantID, ro.ID, "SKU-1", 8)

		require.NoError(t, err)
		assert.Equal(t, int64(8), resp.TotalQuantity)
		mockStock.AssertExpectations(t)
	})

	t.Run("decrease credits the difference", func(t *testing.T) {
		ro, mockOrders, mockStock, service := setup(t)
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(3)).Return(nil)
		mockOrders.On("Save", mock.Anything, ro).Return(nil)

		resp, err := service.UpdateLineQuantity(context.Background(), tenantID, ro.ID, "SKU-1", 2)

		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalQuantity)
	})

	t.Run("zero removes the line and restocks it fully", func(t *testing.T) {
		ro, mockOrders, mockStock, service := setup(t)
		lineID := ro.Lines[0].ID
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(5)).Return(nil)
		mockOrders.On("DeleteLines", mock.Anything, ro.ID, []uuid.UUID{lineID}).Return(nil)
		mockOrders.On("Save", mock.Anything, ro).Return(nil)

		resp, err := service.UpdateLineQuantity(context.Background(), tenantID, ro.ID, "SKU-1", 0)

		require.NoError(t, err)
		assert.Empty(t, resp.Lines)
		mockOrders.AssertExpectations(t)
	})

	t.Run("save failure reverts the applied delta", func(t *testing.T) {
		ro, mockOrders, mockStock, service := setup(t)
		unit := productUnit(tenantID, "SKU-1", 10)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(3)).Return(nil)
		mockOrders.On("Save", mock.Anything, ro).Return(errors.New("db down"))
		mockStock.On("IncrementStock", mock.Anything, unit, int64(3)).Return(nil)

		_, err := service.UpdateLineQuantity(context.Background(), tenantID, ro.ID, "SKU-1", 8)

		require.Error(t, err)
		mockStock.AssertCalled(t, "IncrementStock", mock.Anything, unit, int64(3))
	})

	t.Run("unchanged quantity applies no stock delta", func(t *testing.T) {
		ro, mockOrders, mockStock, service := setup(t)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockOrders.On("Save", mock.Anything, ro).Return(nil)

		_, err := service.UpdateLineQuantity(context.Background(), tenantID, ro.ID, "SKU-1", 5)

		require.NoError(t, err)
		mockStock.AssertNotCalled(t, "ResolveStockUnit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown SKU returns not found", func(t *testing.T) {
		ro, mockOrders, _, service := setup(t)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)

		_, err := service.UpdateLineQuantity(context.Background(), tenantID, ro.ID, "SKU-X", 2)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestReserveOrderService_RemoveLines(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("removes lines and restocks them", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)
		_, err = ro.AddLine(uuid.New(), "SKU-2", 2, decimal.NewFromInt(3), decimal.Zero)
		require.NoError(t, err)
		removedID := ro.Lines[0].ID
		unit := productUnit(tenantID, "SKU-1", 0)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockOrders.On("DeleteLines", mock.Anything, ro.ID, []uuid.UUID{removedID}).Return(nil)
		mockOrders.On("Save", mock.Anything, ro).Return(nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(5)).Return(nil)

		resp, err := service.RemoveLines(context.Background(), tenantID, ro.ID, []string{"SKU-1"})

		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "SKU-2", resp.Lines[0].SKU)
		mockStock.AssertExpectations(t)
	})

	t.Run("returns not found when no SKU matches", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)

		_, err = service.RemoveLines(context.Background(), tenantID, ro.ID, []string{"SKU-X"})

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		mockOrders.AssertNotCalled(t, "DeleteLines", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("restock failure does not fail the removal", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockOrders.On("DeleteLines", mock.Anything, ro.ID, mock.Anything).Return(nil)
		mockOrders.On("Save", mock.Anything, ro).Return(nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(nil, errors.New("db down"))

		resp, err := service.RemoveLines(context.Background(), tenantID, ro.ID, []string{"SKU-1"})

		require.NoError(t, err)
		assert.Empty(t, resp.Lines)
	})
}

func TestReserveOrderService_Delete(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("deletes and restocks an open reservation", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)
		unit := productUnit(tenantID, "SKU-1", 0)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockOrders.On("Delete", mock.Anything, ro.ID).Return(nil)
		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(5)).Return(nil)

		err = service.Delete(context.Background(), tenantID, ro.ID)

		assert.NoError(t, err)
		mockStock.AssertExpectations(t)
	})

	t.Run("missing reservation returns not found without restock", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})
		orderID := uuid.New()

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, orderID).Return(nil, shared.ErrNotFound)

		err := service.Delete(context.Background(), tenantID, orderID)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		mockStock.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost delete race skips the restock", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockOrders.On("Delete", mock.Anything, ro.ID).Return(shared.ErrNotFound)

		err = service.Delete(context.Background(), tenantID, ro.ID)

		assert.True(t, errors.Is(err, shared.ErrNotFound))
		mockStock.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReserveOrderService_Convert(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("converts and keeps the stock committed", func(t *testing.T) {
		mockOrders := new(MockReserveOrderRepository)
		mockStock := new(MockStockRepository)
		service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

		ro := openReservation(t, tenantID, userID)
		_, err := ro.AddLine(uuid.New(), "SKU-1", 5, decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)

		mockOrders.On("FindByIDForTenant", mock.Anything, tenantID, ro.ID).Return(ro, nil)
		mockOrders.On("Delete", mock.Anything, ro.ID).Return(nil)

		err = service.Convert(context.Background(), tenantID, ro.ID)

		assert.NoError(t, err)
		mockStock.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReserveOrderService_List(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	mockOrders := new(MockReserveOrderRepository)
	mockStock := new(MockStockRepository)
	service := newReserveOrderService(mockOrders, mockStock, ReconcilerConfig{})

	ro := openReservation(t, tenantID, userID)
	// Page and size zero fall back to the first page of twenty.
	expected := shared.Filter{Page: 1, PageSize: 20}
	mockOrders.On("FindAllForTenant", mock.Anything, tenantID, expected).Return([]order.ReserveOrder{*ro}, nil)
	mockOrders.On("CountForTenant", mock.Anything, tenantID, expected).Return(int64(1), nil)

	items, total, err := service.List(context.Background(), tenantID, shared.Filter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, ro.ID.String(), items[0].ID)
}
