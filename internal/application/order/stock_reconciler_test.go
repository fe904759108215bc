package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/multicommerce/backend/internal/domain/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStockRepository is a mock implementation of catalog.StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) ResolveStockUnit(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.StockUnit, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.StockUnit), args.Error(1)
}

func (m *MockStockRepository) DecrementStock(ctx context.Context, unit *catalog.StockUnit, quantity int64) (bool, error) {
	args := m.Called(ctx, unit, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockRepository) DecrementStockClamped(ctx context.Context, unit *catalog.StockUnit, quantity int64) error {
	args := m.Called(ctx, unit, quantity)
	return args.Error(0)
}

func (m *MockStockRepository) IncrementStock(ctx context.Context, unit *catalog.StockUnit, quantity int64) error {
	args := m.Called(ctx, unit, quantity)
	return args.Error(0)
}

func (m *MockStockRepository) SyncProductStock(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockReserveOrderRepository is a mock implementation of order.ReserveOrderRepository
type MockReserveOrderRepository struct {
	mock.Mock
}

func (m *MockReserveOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.ReserveOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ReserveOrder), args.Error(1)
}

func (m *MockReserveOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.ReserveOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ReserveOrder), args.Error(1)
}

func (m *MockReserveOrderRepository) FindOpenByOwner(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, deviceID *string) (*order.ReserveOrder, error) {
	args := m.Called(ctx, tenantID, userID, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ReserveOrder), args.Error(1)
}

func (m *MockReserveOrderRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]order.ReserveOrder, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.ReserveOrder), args.Error(1)
}

func (m *MockReserveOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]order.ReserveOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.ReserveOrder), args.Error(1)
}

func (m *MockReserveOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReserveOrderRepository) Save(ctx context.Context, ro *order.ReserveOrder) error {
	args := m.Called(ctx, ro)
	return args.Error(0)
}

func (m *MockReserveOrderRepository) DeleteLines(ctx context.Context, orderID uuid.UUID, lineIDs []uuid.UUID) error {
	args := m.Called(ctx, orderID, lineIDs)
	return args.Error(0)
}

func (m *MockReserveOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func productUnit(tenantID uuid.UUID, sku string, stock int64) *catalog.StockUnit {
	product, _ := catalog.NewProduct(tenantID, "Product "+sku, sku, decimal.NewFromInt(10), decimal.NewFromInt(100))
	product.Stock = stock
	return &catalog.StockUnit{Product: product}
}

func variantUnit(tenantID uuid.UUID, sku string, stock int64) *catalog.StockUnit {
	product, _ := catalog.NewProduct(tenantID, "Product", "PARENT-"+sku, decimal.NewFromInt(10), decimal.NewFromInt(100))
	variant, _ := product.AddVariant(sku, "Variant", decimal.NewFromInt(8), stock)
	return &catalog.StockUnit{Product: product, Variant: variant}
}

func TestStockReconciler_Debit_Strict(t *testing.T) {
	tenantID := uuid.New()

	t.Run("decrements when stock suffices", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{StrictStock: true}, zap.NewNop())
		unit := productUnit(tenantID, "SKU-1", 10)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStock", mock.Anything, unit, int64(3)).Return(true, nil)

		err := reconciler.Debit(context.Background(), tenantID, "SKU-1", 3)

		assert.NoError(t, err)
		mockStock.AssertExpectations(t)
		mockStock.AssertNotCalled(t, "DecrementStockClamped", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails when the guard rejects the decrement", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{StrictStock: true}, zap.NewNop())
		unit := productUnit(tenantID, "SKU-1", 1)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStock", mock.Anything, unit, int64(5)).Return(false, nil)

		err := reconciler.Debit(context.Background(), tenantID, "SKU-1", 5)

		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})
}

func TestStockReconciler_Debit_Lenient(t *testing.T) {
	tenantID := uuid.New()

	t.Run("clamps instead of failing", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
		unit := productUnit(tenantID, "SKU-1", 1)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(5)).Return(nil)

		err := reconciler.Debit(context.Background(), tenantID, "SKU-1", 5)

		assert.NoError(t, err)
		mockStock.AssertExpectations(t)
		mockStock.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips unknown SKU entirely", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "GHOST").Return(nil, shared.ErrNotFound)

		err := reconciler.Debit(context.Background(), tenantID, "GHOST", 5)

		assert.NoError(t, err)
		mockStock.AssertNotCalled(t, "DecrementStockClamped", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStockReconciler_Debit_StrictSKU(t *testing.T) {
	tenantID := uuid.New()
	mockStock := new(MockStockRepository)
	reconciler := NewStockReconciler(mockStock, ReconcilerConfig{StrictSKU: true}, zap.NewNop())

	mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "GHOST").Return(nil, shared.ErrNotFound)

	err := reconciler.Debit(context.Background(), tenantID, "GHOST", 5)

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestStockReconciler_DebitVariant_SyncsProduct(t *testing.T) {
	tenantID := uuid.New()
	mockStock := new(MockStockRepository)
	reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
	unit := variantUnit(tenantID, "SKU-1-S", 10)

	mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(2)).Return(nil)
	mockStock.On("SyncProductStock", mock.Anything, unit.ProductID()).Return(nil)

	err := reconciler.DebitUnit(context.Background(), unit, 2)

	assert.NoError(t, err)
	mockStock.AssertExpectations(t)
}

func TestStockReconciler_Credit(t *testing.T) {
	tenantID := uuid.New()

	t.Run("increments the counter", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
		unit := productUnit(tenantID, "SKU-1", 0)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(4)).Return(nil)

		err := reconciler.Credit(context.Background(), tenantID, "SKU-1", 4)

		assert.NoError(t, err)
		mockStock.AssertExpectations(t)
		// A bare product needs no derived-sum sync.
		mockStock.AssertNotCalled(t, "SyncProductStock", mock.Anything, mock.Anything)
	})

	t.Run("syncs the product sum for variants", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
		unit := variantUnit(tenantID, "SKU-1-S", 0)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1-S").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(4)).Return(nil)
		mockStock.On("SyncProductStock", mock.Anything, unit.ProductID()).Return(nil)

		err := reconciler.Credit(context.Background(), tenantID, "SKU-1-S", 4)

		assert.NoError(t, err)
		mockStock.AssertExpectations(t)
	})
}

func TestStockReconciler_Apply(t *testing.T) {
	tenantID := uuid.New()

	t.Run("positive delta debits", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
		unit := productUnit(tenantID, "SKU-1", 10)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("DecrementStockClamped", mock.Anything, unit, int64(3)).Return(nil)

		assert.NoError(t, reconciler.Apply(context.Background(), tenantID, "SKU-1", 3))
		mockStock.AssertExpectations(t)
	})

	t.Run("negative delta credits", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
		unit := productUnit(tenantID, "SKU-1", 10)

		mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(unit, nil)
		mockStock.On("IncrementStock", mock.Anything, unit, int64(3)).Return(nil)

		assert.NoError(t, reconciler.Apply(context.Background(), tenantID, "SKU-1", -3))
		mockStock.AssertExpectations(t)
	})

	t.Run("zero delta touches nothing", func(t *testing.T) {
		mockStock := new(MockStockRepository)
		reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())

		assert.NoError(t, reconciler.Apply(context.Background(), tenantID, "SKU-1", 0))
		mockStock.AssertNotCalled(t, "ResolveStockUnit", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStockReconciler_ResolveLine_PropagatesStorageErrors(t *testing.T) {
	tenantID := uuid.New()
	mockStock := new(MockStockRepository)
	reconciler := NewStockReconciler(mockStock, ReconcilerConfig{}, zap.NewNop())
	dbErr := errors.New("connection reset")

	mockStock.On("ResolveStockUnit", mock.Anything, tenantID, "SKU-1").Return(nil, dbErr)

	unit, err := reconciler.ResolveLine(context.Background(), tenantID, "SKU-1")

	require.Error(t, err)
	assert.Nil(t, unit)
	assert.Equal(t, dbErr, err)
}
