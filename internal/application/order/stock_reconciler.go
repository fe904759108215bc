package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/multicommerce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReconcilerConfig controls how strictly stock adjustments are enforced.
//
// The lenient settings reproduce the historical behavior: a SKU that
// matches no product is skipped with a warning, and a decrement that would
// go below zero clamps at zero. Strict mode turns both into hard failures.
type ReconcilerConfig struct {
	StrictSKU   bool
	StrictStock bool
}

// StockReconciler applies reservation-driven debits and credits to the
// stock counter of a product or variant, keeping the derived product-level
// sum consistent. All mutations are atomic conditional updates at the
// storage layer; the reconciler never does a read-modify-write on a
// counter.
type StockReconciler struct {
	stock  catalog.StockRepository
	cfg    ReconcilerConfig
	logger *zap.Logger
}

// NewStockReconciler creates a new StockReconciler
func NewStockReconciler(stock catalog.StockRepository, cfg ReconcilerConfig, logger *zap.Logger) *StockReconciler {
	return &StockReconciler{
		stock:  stock,
		cfg:    cfg,
		logger: logger,
	}
}

// Debit reserves quantity units of a SKU by decrementing its counter.
// In strict stock mode an insufficient counter fails with
// INSUFFICIENT_STOCK; otherwise the counter clamps at zero.
func (r *StockReconciler) Debit(ctx context.Context, tenantID uuid.UUID, sku string, quantity int64) error {
	unit, err := r.ResolveLine(ctx, tenantID, sku)
	if err != nil || unit == nil {
		return err
	}
	return r.DebitUnit(ctx, unit, quantity)
}

// DebitUnit decrements the counter of an already resolved unit
func (r *StockReconciler) DebitUnit(ctx context.Context, unit *catalog.StockUnit, quantity int64) error {
	if r.cfg.StrictStock {
		ok, err := r.stock.DecrementStock(ctx, unit, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return shared.ErrInsufficientStock
		}
	} else {
		if err := r.stock.DecrementStockClamped(ctx, unit, quantity); err != nil {
			return err
		}
	}

	return r.syncProduct(ctx, unit)
}

// Credit returns quantity units of a SKU to its counter
func (r *StockReconciler) Credit(ctx context.Context, tenantID uuid.UUID, sku string, quantity int64) error {
	unit, err := r.ResolveLine(ctx, tenantID, sku)
	if err != nil || unit == nil {
		return err
	}
	return r.CreditUnit(ctx, unit, quantity)
}

// CreditUnit increments the counter of an already resolved unit
func (r *StockReconciler) CreditUnit(ctx context.Context, unit *catalog.StockUnit, quantity int64) error {
	if err := r.stock.IncrementStock(ctx, unit, quantity); err != nil {
		return err
	}
	return r.syncProduct(ctx, unit)
}

// Apply debits a positive delta and credits a negative one. A zero delta
// is a no-op.
func (r *StockReconciler) Apply(ctx context.Context, tenantID uuid.UUID, sku string, delta int64) error {
	switch {
	case delta > 0:
		return r.Debit(ctx, tenantID, sku, delta)
	case delta < 0:
		return r.Credit(ctx, tenantID, sku, -delta)
	default:
		return nil
	}
}

// ResolveLine looks a SKU up, applying the missing-SKU policy: strict
// mode propagates NOT_FOUND, lenient mode logs and returns a nil unit so
// the caller skips the adjustment (and the line) entirely.
func (r *StockReconciler) ResolveLine(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.StockUnit, error) {
	unit, err := r.stock.ResolveStockUnit(ctx, tenantID, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) && !r.cfg.StrictSKU {
			r.logger.Warn("Skipping stock adjustment for unknown SKU",
				zap.String("tenant_id", tenantID.String()),
				zap.String("sku", sku),
			)
			return nil, nil
		}
		return nil, err
	}
	return unit, nil
}

// syncProduct re-derives the product-level stock sum after a variant
// counter changed.
func (r *StockReconciler) syncProduct(ctx context.Context, unit *catalog.StockUnit) error {
	if !unit.IsVariant() {
		return nil
	}
	return r.stock.SyncProductStock(ctx, unit.ProductID())
}
