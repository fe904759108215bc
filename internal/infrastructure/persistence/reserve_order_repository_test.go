package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReserveOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&order.ReserveOrder{}, &order.ReserveOrderLine{})
	require.NoError(t, err)

	return db
}

func seedReservation(t *testing.T, repo *GormReserveOrderRepository, tenantID uuid.UUID, userID *uuid.UUID, deviceID *string) *order.ReserveOrder {
	t.Helper()
	ro, err := order.NewReserveOrder(tenantID, userID, deviceID, "")
	require.NoError(t, err)
	_, err = ro.AddLine(uuid.New(), "SKU-1", 2, decimal.NewFromInt(50), decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), ro))
	return ro
}

func TestGormReserveOrderRepository_SaveAndFind(t *testing.T) {
	db := setupReserveOrderTestDB(t)
	repo := NewGormReserveOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	ro := seedReservation(t, repo, tenantID, &userID, nil)

	t.Run("round-trips the reservation with lines", func(t *testing.T) {
		found, err := repo.FindByID(ctx, ro.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, "SKU-1", found.Lines[0].SKU)
		assert.Equal(t, int64(2), found.Lines[0].Quantity)
		assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("tenant-scoped lookup rejects other tenants", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), ro.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("saving again persists line mutations", func(t *testing.T) {
		_, err := ro.SetLineQuantity("SKU-1", 5)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, ro))

		found, err := repo.FindByID(ctx, ro.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, int64(5), found.Lines[0].Quantity)
	})
}

func TestGormReserveOrderRepository_FindOpenByOwner(t *testing.T) {
	db := setupReserveOrderTestDB(t)
	repo := NewGormReserveOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	userID := uuid.New()
	deviceID := "device-abc"
	userOrder := seedReservation(t, repo, tenantID, &userID, nil)
	deviceOrder := seedReservation(t, repo, tenantID, nil, &deviceID)

	t.Run("finds by user", func(t *testing.T) {
		found, err := repo.FindOpenByOwner(ctx, tenantID, &userID, nil)
		require.NoError(t, err)
		assert.Equal(t, userOrder.ID, found.ID)
	})

	t.Run("finds by device", func(t *testing.T) {
		found, err := repo.FindOpenByOwner(ctx, tenantID, nil, &deviceID)
		require.NoError(t, err)
		assert.Equal(t, deviceOrder.ID, found.ID)
	})

	t.Run("ignores converted reservations", func(t *testing.T) {
		require.NoError(t, userOrder.Convert())
		require.NoError(t, repo.Save(ctx, userOrder))

		_, err := repo.FindOpenByOwner(ctx, tenantID, &userID, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects a missing owner", func(t *testing.T) {
		_, err := repo.FindOpenByOwner(ctx, tenantID, nil, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestGormReserveOrderRepository_FindExpired(t *testing.T) {
	db := setupReserveOrderTestDB(t)
	repo := NewGormReserveOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	old := seedReservation(t, repo, tenantID, &userID, nil)
	require.NoError(t, db.Model(&order.ReserveOrder{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-96*time.Hour)).Error)

	otherUser := uuid.New()
	seedReservation(t, repo, tenantID, &otherUser, nil)

	converted := seedReservation(t, repo, tenantID, &userID, nil)
	require.NoError(t, converted.Convert())
	require.NoError(t, repo.Save(ctx, converted))
	require.NoError(t, db.Model(&order.ReserveOrder{}).
		Where("id = ?", converted.ID).
		Update("created_at", time.Now().Add(-96*time.Hour)).Error)

	t.Run("returns only open reservations older than cutoff", func(t *testing.T) {
		expired, err := repo.FindExpired(ctx, time.Now().Add(-72*time.Hour))
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, old.ID, expired[0].ID)
		require.Len(t, expired[0].Lines, 1)
	})

	t.Run("empty when nothing is past the cutoff", func(t *testing.T) {
		expired, err := repo.FindExpired(ctx, time.Now().Add(-200*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, expired)
	})
}

func TestGormReserveOrderRepository_DeleteLines(t *testing.T) {
	db := setupReserveOrderTestDB(t)
	repo := NewGormReserveOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	ro := seedReservation(t, repo, tenantID, &userID, nil)
	_, err := ro.AddLine(uuid.New(), "SKU-2", 1, decimal.NewFromInt(30), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, ro))

	t.Run("removes only the given lines", func(t *testing.T) {
		first := ro.LineBySKU("SKU-1")
		require.NotNil(t, first)
		require.NoError(t, repo.DeleteLines(ctx, ro.ID, []uuid.UUID{first.ID}))

		found, err := repo.FindByID(ctx, ro.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, "SKU-2", found.Lines[0].SKU)
	})

	t.Run("empty id list is a no-op", func(t *testing.T) {
		require.NoError(t, repo.DeleteLines(ctx, ro.ID, nil))

		found, err := repo.FindByID(ctx, ro.ID)
		require.NoError(t, err)
		assert.Len(t, found.Lines, 1)
	})
}

func TestGormReserveOrderRepository_Delete(t *testing.T) {
	db := setupReserveOrderTestDB(t)
	repo := NewGormReserveOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	ro := seedReservation(t, repo, tenantID, &userID, nil)

	t.Run("removes the reservation and its lines", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ro.ID))

		_, err := repo.FindByID(ctx, ro.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var lines int64
		require.NoError(t, db.Model(&order.ReserveOrderLine{}).
			Where("reserve_order_id = ?", ro.ID).
			Count(&lines).Error)
		assert.Equal(t, int64(0), lines)
	})

	t.Run("second delete cannot claim the record", func(t *testing.T) {
		err := repo.Delete(ctx, ro.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormReserveOrderRepository_FindAllForTenant(t *testing.T) {
	db := setupReserveOrderTestDB(t)
	repo := NewGormReserveOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for i := 0; i < 3; i++ {
		userID := uuid.New()
		seedReservation(t, repo, tenantID, &userID, nil)
	}
	converted := seedReservation(t, repo, tenantID, nil, strPtr("device-x"))
	require.NoError(t, converted.Convert())
	require.NoError(t, repo.Save(ctx, converted))

	t.Run("lists the tenant's reservations", func(t *testing.T) {
		orders, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, orders, 4)
	})

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.Filter{Filters: map[string]interface{}{"status": order.ReserveOrderStatusOpen}}
		orders, err := repo.FindAllForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, orders, 3)

		count, err := repo.CountForTenant(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("applies pagination", func(t *testing.T) {
		orders, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Page: 2, PageSize: 3})
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})
}

func strPtr(s string) *string { return &s }
