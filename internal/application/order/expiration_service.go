package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultRetention is how long an untouched reservation holds its stock
const DefaultRetention = 3 * 24 * time.Hour

// ReservationLocker serializes sweep work per reservation so an
// overlapping sweep or manual deletion cannot double-restock.
type ReservationLocker interface {
	// Acquire takes the lock for a reservation. Returns false when another
	// holder has it.
	Acquire(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
}

// SweepStats summarizes one expiry sweep run
type SweepStats struct {
	Scanned     int       `json:"scanned"`
	Released    int       `json:"released"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ExpirationService releases abandoned reservations: it finds open
// reservations older than the retention window, returns their stock and
// deletes them.
type ExpirationService struct {
	orders     order.ReserveOrderRepository
	reconciler *StockReconciler
	locker     ReservationLocker
	retention  time.Duration
	logger     *zap.Logger
}

// NewExpirationService creates a new ExpirationService
func NewExpirationService(
	orders order.ReserveOrderRepository,
	reconciler *StockReconciler,
	locker ReservationLocker,
	retention time.Duration,
	logger *zap.Logger,
) *ExpirationService {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &ExpirationService{
		orders:     orders,
		reconciler: reconciler,
		locker:     locker,
		retention:  retention,
		logger:     logger,
	}
}

// Run performs one sweep over all expired reservations. Failures are
// per-reservation; the sweep never aborts as a whole.
func (s *ExpirationService) Run(ctx context.Context) (*SweepStats, error) {
	stats := &SweepStats{ProcessedAt: time.Now()}

	cutoff := time.Now().Add(-s.retention)
	expired, err := s.orders.FindExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to find expired reservations", zap.Error(err))
		return nil, err
	}

	stats.Scanned = len(expired)
	if stats.Scanned == 0 {
		s.logger.Debug("No expired reservations found")
		return stats, nil
	}

	s.logger.Info("Found expired reservations",
		zap.Int("count", stats.Scanned),
		zap.Time("cutoff", cutoff),
	)

	for i := range expired {
		switch err := s.sweepOne(ctx, &expired[i]); {
		case err == nil:
			stats.Released++
		case errors.Is(err, errLockHeld):
			stats.Skipped++
		default:
			s.logger.Error("Failed to release expired reservation",
				zap.String("reserve_order_id", expired[i].ID.String()),
				zap.Error(err),
			)
			stats.Failed++
		}
	}

	s.logger.Info("Completed reservation expiry sweep",
		zap.Int("scanned", stats.Scanned),
		zap.Int("released", stats.Released),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

var errLockHeld = errors.New("reservation lock held elsewhere")

// sweepOne deletes one expired reservation and restocks its lines. The
// delete claims the reservation: a NOT_FOUND result means someone else
// already removed (and restocked) it, so the sweep must not credit again.
func (s *ExpirationService) sweepOne(ctx context.Context, ro *order.ReserveOrder) error {
	ok, err := s.locker.Acquire(ctx, ro.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errLockHeld
	}
	defer func() {
		if err := s.locker.Release(ctx, ro.ID); err != nil {
			s.logger.Warn("Failed to release reservation lock",
				zap.String("reserve_order_id", ro.ID.String()),
				zap.Error(err),
			)
		}
	}()

	if err := s.orders.Delete(ctx, ro.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Debug("Expired reservation already deleted",
				zap.String("reserve_order_id", ro.ID.String()),
			)
			return nil
		}
		return err
	}

	for i := range ro.Lines {
		if err := s.reconciler.Credit(ctx, ro.TenantID, ro.Lines[i].SKU, ro.Lines[i].Quantity); err != nil {
			s.logger.Error("Failed to restock expired reservation line",
				zap.String("reserve_order_id", ro.ID.String()),
				zap.String("product_id", ro.Lines[i].ProductID.String()),
				zap.String("sku", ro.Lines[i].SKU),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("Released expired reservation",
		zap.String("reserve_order_id", ro.ID.String()),
		zap.Int("lines", len(ro.Lines)),
	)
	return nil
}
