package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/domain/catalog"
	"github.com/multicommerce/backend/internal/domain/order"
	"github.com/multicommerce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReserveOrderService owns the reservation lifecycle: create/merge,
// quantity updates, line removal, deletion and conversion, each with the
// matching stock debit or credit.
//
// Restocking always happens after the owning record (or line) is gone, so
// a concurrent sweep and a manual delete can never both return the same
// stock: whoever deletes first restocks, the loser sees NOT_FOUND.
type ReserveOrderService struct {
	orders     order.ReserveOrderRepository
	reconciler *StockReconciler
	logger     *zap.Logger
}

// NewReserveOrderService creates a new ReserveOrderService
func NewReserveOrderService(
	orders order.ReserveOrderRepository,
	reconciler *StockReconciler,
	logger *zap.Logger,
) *ReserveOrderService {
	return &ReserveOrderService{
		orders:     orders,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Create creates a reservation for the owner, or merges the items into
// the owner's existing open reservation. Each reserved line debits the
// matching stock counter. When a later line or the save fails, every
// counter debited so far is credited back before the error is returned,
// so a rejected request never holds stock.
func (s *ReserveOrderService) Create(ctx context.Context, tenantID uuid.UUID, input CreateReserveOrderInput) (*ReserveOrderResponse, error) {
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Reservation requires at least one item")
	}

	ro, err := s.orders.FindOpenByOwner(ctx, tenantID, input.UserID, input.DeviceID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		ro, err = order.NewReserveOrder(tenantID, input.UserID, input.DeviceID, input.Note)
		if err != nil {
			return nil, err
		}
	}

	debited := make([]stockDebit, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			s.creditDebits(ctx, debited)
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		unit, err := s.reconciler.ResolveLine(ctx, tenantID, item.SKU)
		if err != nil {
			s.creditDebits(ctx, debited)
			return nil, err
		}
		if unit == nil {
			// Lenient mode: unknown SKU, line skipped.
			continue
		}
		if err := s.reconciler.DebitUnit(ctx, unit, item.Quantity); err != nil {
			s.creditDebits(ctx, debited)
			return nil, err
		}
		debited = append(debited, stockDebit{unit: unit, quantity: item.Quantity})
		if _, err := ro.AddLine(unit.ProductID(), item.SKU, item.Quantity, unit.UnitPrice(), unit.UnitWeight()); err != nil {
			s.creditDebits(ctx, debited)
			return nil, err
		}
	}

	if len(ro.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "No reservable items in request")
	}
	if err := s.orders.Save(ctx, ro); err != nil {
		s.creditDebits(ctx, debited)
		return nil, err
	}

	resp := ToReserveOrderResponse(ro)
	return &resp, nil
}

// UpdateLineQuantity sets a line to a new quantity and applies the signed
// stock delta: an increase debits the counter, a decrease credits it, and
// zero removes the line with a full restock.
func (s *ReserveOrderService) UpdateLineQuantity(ctx context.Context, tenantID, orderID uuid.UUID, sku string, quantity int64) (*ReserveOrderResponse, error) {
	ro, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	line := ro.LineBySKU(sku)
	if line == nil {
		return nil, shared.ErrNotFound
	}
	removedLineID := line.ID

	diff, err := ro.SetLineQuantity(sku, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.reconciler.Apply(ctx, tenantID, sku, diff); err != nil {
		return nil, err
	}

	if quantity == 0 {
		if err := s.orders.DeleteLines(ctx, ro.ID, []uuid.UUID{removedLineID}); err != nil {
			s.revertDelta(ctx, tenantID, sku, diff)
			return nil, err
		}
	}
	if err := s.orders.Save(ctx, ro); err != nil {
		s.revertDelta(ctx, tenantID, sku, diff)
		return nil, err
	}

	resp := ToReserveOrderResponse(ro)
	return &resp, nil
}

// RemoveLines drops the given SKUs from the reservation, restocking each
// removed line's full quantity. Restock failures are logged per product
// and do not abort the batch.
func (s *ReserveOrderService) RemoveLines(ctx context.Context, tenantID, orderID uuid.UUID, skus []string) (*ReserveOrderResponse, error) {
	ro, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	lineIDs := make([]uuid.UUID, 0, len(skus))
	removed := make([]order.ReserveOrderLine, 0, len(skus))
	for _, sku := range skus {
		line := ro.RemoveLine(sku)
		if line == nil {
			continue
		}
		lineIDs = append(lineIDs, line.ID)
		removed = append(removed, *line)
	}
	if len(lineIDs) == 0 {
		return nil, shared.ErrNotFound
	}

	if err := s.orders.DeleteLines(ctx, ro.ID, lineIDs); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, ro); err != nil {
		return nil, err
	}
	s.restockLines(ctx, tenantID, removed)

	resp := ToReserveOrderResponse(ro)
	return &resp, nil
}

// Delete removes the reservation and restocks every open line. Deleting a
// reservation that is already gone returns NOT_FOUND without touching any
// counter.
func (s *ReserveOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	ro, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, ro.ID); err != nil {
		return err
	}
	if ro.Status == order.ReserveOrderStatusOpen {
		s.restockLines(ctx, tenantID, ro.Lines)
	}
	return nil
}

// Convert finalizes the reservation into a real order: the record is
// removed and the reserved stock stays committed.
func (s *ReserveOrderService) Convert(ctx context.Context, tenantID, orderID uuid.UUID) error {
	ro, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if err := ro.Convert(); err != nil {
		return err
	}
	return s.orders.Delete(ctx, ro.ID)
}

// Get retrieves a reservation by ID
func (s *ReserveOrderService) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*ReserveOrderResponse, error) {
	ro, err := s.orders.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToReserveOrderResponse(ro)
	return &resp, nil
}

// List retrieves reservations for a tenant with pagination
func (s *ReserveOrderService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReserveOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, err := s.orders.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ReserveOrderResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToReserveOrderResponse(&items[i]))
	}
	return responses, total, nil
}

// stockDebit records one counter decrement so a failed mutation can be
// compensated.
type stockDebit struct {
	unit     *catalog.StockUnit
	quantity int64
}

// creditDebits returns the units a failed create already debited back to
// their counters, best-effort with per-product logging.
func (s *ReserveOrderService) creditDebits(ctx context.Context, debits []stockDebit) {
	for _, d := range debits {
		if err := s.reconciler.CreditUnit(ctx, d.unit, d.quantity); err != nil {
			s.logger.Error("Failed to roll back stock debit",
				zap.String("product_id", d.unit.ProductID().String()),
				zap.String("sku", d.unit.SKU()),
				zap.Int64("quantity", d.quantity),
				zap.Error(err),
			)
		}
	}
}

// revertDelta applies the opposite of a stock delta after the owning
// write failed, best-effort with logging.
func (s *ReserveOrderService) revertDelta(ctx context.Context, tenantID uuid.UUID, sku string, diff int64) {
	if diff == 0 {
		return
	}
	if err := s.reconciler.Apply(ctx, tenantID, sku, -diff); err != nil {
		s.logger.Error("Failed to roll back stock adjustment",
			zap.String("sku", sku),
			zap.Int64("delta", diff),
			zap.Error(err),
		)
	}
}

// restockLines credits every line back, best-effort with per-product
// logging.
func (s *ReserveOrderService) restockLines(ctx context.Context, tenantID uuid.UUID, lines []order.ReserveOrderLine) {
	for i := range lines {
		if err := s.reconciler.Credit(ctx, tenantID, lines[i].SKU, lines[i].Quantity); err != nil {
			s.logger.Error("Failed to restock reservation line",
				zap.String("product_id", lines[i].ProductID.String()),
				zap.String("sku", lines[i].SKU),
				zap.Int64("quantity", lines[i].Quantity),
				zap.Error(err),
			)
		}
	}
}
