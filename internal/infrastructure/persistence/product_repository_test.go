package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/multicommerce/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{}, &catalog.ProductVariant{})
	require.NoError(t, err)

	return db
}

func seedProduct(t *testing.T, repo *GormProductRepository, tenantID uuid.UUID, sku string, stock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "Product "+sku, sku, decimal.NewFromInt(100), decimal.NewFromInt(500))
	require.NoError(t, err)
	product.Stock = stock
	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

func seedVariantProduct(t *testing.T, repo *GormProductRepository, tenantID uuid.UUID, sku string, variantStocks map[string]int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "Parent "+sku, sku, decimal.NewFromInt(100), decimal.NewFromInt(500))
	require.NoError(t, err)
	for vsku, stock := range variantStocks {
		_, err := product.AddVariant(vsku, "Variant "+vsku, decimal.NewFromInt(120), stock)
		require.NoError(t, err)
	}
	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

func TestGormProductRepository_FindBySKU(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	seedProduct(t, repo, tenantID, "PLAIN-1", 10)
	seedVariantProduct(t, repo, tenantID, "PARENT-1", map[string]int64{"VAR-S": 3, "VAR-M": 7})

	t.Run("finds product by own sku", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, tenantID, "PLAIN-1")
		require.NoError(t, err)
		assert.Equal(t, "PLAIN-1", found.SKU)
	})

	t.Run("finds parent product by variant sku", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, tenantID, "VAR-M")
		require.NoError(t, err)
		assert.Equal(t, "PARENT-1", found.SKU)
		assert.Len(t, found.Variants, 2)
	})

	t.Run("scopes lookups to the tenant", func(t *testing.T) {
		_, err := repo.FindBySKU(ctx, uuid.New(), "PLAIN-1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown sku", func(t *testing.T) {
		_, err := repo.FindBySKU(ctx, tenantID, "NOPE")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_ResolveStockUnit(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	seedProduct(t, repo, tenantID, "PLAIN-1", 10)
	seedVariantProduct(t, repo, tenantID, "PARENT-1", map[string]int64{"VAR-S": 3})

	t.Run("resolves plain product sku to product unit", func(t *testing.T) {
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "PLAIN-1")
		require.NoError(t, err)
		assert.False(t, unit.IsVariant())
		assert.Equal(t, int64(10), unit.Stock())
	})

	t.Run("resolves variant sku to variant unit", func(t *testing.T) {
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "VAR-S")
		require.NoError(t, err)
		require.True(t, unit.IsVariant())
		assert.Equal(t, "VAR-S", unit.SKU())
		assert.Equal(t, int64(3), unit.Stock())
		assert.Equal(t, "PARENT-1", unit.Product.SKU)
	})

	t.Run("returns not found for unknown sku", func(t *testing.T) {
		_, err := repo.ResolveStockUnit(ctx, tenantID, "GHOST")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_DecrementStock(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("decrements when enough stock is available", func(t *testing.T) {
		seedProduct(t, repo, tenantID, "DEC-1", 10)
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-1")
		require.NoError(t, err)

		ok, err := repo.DecrementStock(ctx, unit, 4)
		require.NoError(t, err)
		assert.True(t, ok)

		reloaded, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-1")
		require.NoError(t, err)
		assert.Equal(t, int64(6), reloaded.Stock())
	})

	t.Run("rejects when stock is insufficient", func(t *testing.T) {
		seedProduct(t, repo, tenantID, "DEC-2", 3)
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-2")
		require.NoError(t, err)

		ok, err := repo.DecrementStock(ctx, unit, 5)
		require.NoError(t, err)
		assert.False(t, ok)

		reloaded, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-2")
		require.NoError(t, err)
		assert.Equal(t, int64(3), reloaded.Stock())
	})

	t.Run("decrements a variant counter without touching siblings", func(t *testing.T) {
		seedVariantProduct(t, repo, tenantID, "DEC-P", map[string]int64{"DEC-V1": 5, "DEC-V2": 8})
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-V1")
		require.NoError(t, err)

		ok, err := repo.DecrementStock(ctx, unit, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		v1, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-V1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), v1.Stock())

		v2, err := repo.ResolveStockUnit(ctx, tenantID, "DEC-V2")
		require.NoError(t, err)
		assert.Equal(t, int64(8), v2.Stock())
	})
}

func TestGormProductRepository_DecrementStockClamped(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("decrements normally when stock suffices", func(t *testing.T) {
		seedProduct(t, repo, tenantID, "CLAMP-1", 10)
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "CLAMP-1")
		require.NoError(t, err)

		require.NoError(t, repo.DecrementStockClamped(ctx, unit, 4))

		reloaded, err := repo.ResolveStockUnit(ctx, tenantID, "CLAMP-1")
		require.NoError(t, err)
		assert.Equal(t, int64(6), reloaded.Stock())
	})

	t.Run("clamps at zero instead of going negative", func(t *testing.T) {
		seedProduct(t, repo, tenantID, "CLAMP-2", 3)
		unit, err := repo.ResolveStockUnit(ctx, tenantID, "CLAMP-2")
		require.NoError(t, err)

		require.NoError(t, repo.DecrementStockClamped(ctx, unit, 10))

		reloaded, err := repo.ResolveStockUnit(ctx, tenantID, "CLAMP-2")
		require.NoError(t, err)
		assert.Equal(t, int64(0), reloaded.Stock())
	})
}

func TestGormProductRepository_IncrementStock(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	seedProduct(t, repo, tenantID, "INC-1", 5)
	unit, err := repo.ResolveStockUnit(ctx, tenantID, "INC-1")
	require.NoError(t, err)

	require.NoError(t, repo.IncrementStock(ctx, unit, 7))

	reloaded, err := repo.ResolveStockUnit(ctx, tenantID, "INC-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), reloaded.Stock())
}

func TestGormProductRepository_SyncProductStock(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("re-derives the parent counter from variants", func(t *testing.T) {
		product := seedVariantProduct(t, repo, tenantID, "SYNC-P", map[string]int64{"SYNC-V1": 4, "SYNC-V2": 6})

		unit, err := repo.ResolveStockUnit(ctx, tenantID, "SYNC-V1")
		require.NoError(t, err)
		ok, err := repo.DecrementStock(ctx, unit, 3)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, repo.SyncProductStock(ctx, product.ID))

		reloaded, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), reloaded.Stock)
	})

	t.Run("leaves plain products untouched", func(t *testing.T) {
		product := seedProduct(t, repo, tenantID, "SYNC-PLAIN", 9)

		require.NoError(t, repo.SyncProductStock(ctx, product.ID))

		reloaded, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(9), reloaded.Stock)
	})
}

func TestGormProductRepository_Delete(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes product together with variants", func(t *testing.T) {
		product := seedVariantProduct(t, repo, tenantID, "DEL-P", map[string]int64{"DEL-V1": 2})

		require.NoError(t, repo.Delete(ctx, tenantID, product.ID))

		_, err := repo.FindByIDForTenant(ctx, tenantID, product.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.ResolveStockUnit(ctx, tenantID, "DEL-V1")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		err := repo.Delete(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindAllForTenant(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, sku := range []string{"LIST-1", "LIST-2", "LIST-3"} {
		seedProduct(t, repo, tenantID, sku, 1)
	}
	seedProduct(t, repo, uuid.New(), "OTHER-1", 1)

	t.Run("returns only the tenant's products", func(t *testing.T) {
		products, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("applies pagination", func(t *testing.T) {
		products, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("filters by search term", func(t *testing.T) {
		products, err := repo.FindAllForTenant(ctx, tenantID, shared.Filter{Search: "LIST-2"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "LIST-2", products[0].SKU)
	})

	t.Run("counts with the same filter", func(t *testing.T) {
		count, err := repo.CountForTenant(ctx, tenantID, shared.Filter{Search: "LIST"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
