package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryReservationLocker is a single-process fallback for deployments
// without Redis. Locks still expire so a failed sweep cannot wedge a
// reservation forever.
type InMemoryReservationLocker struct {
	mu      sync.Mutex
	held    map[uuid.UUID]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

// NewInMemoryReservationLocker creates a new in-memory locker
func NewInMemoryReservationLocker(ttl time.Duration) *InMemoryReservationLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryReservationLocker{
		held:    make(map[uuid.UUID]time.Time),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

// Acquire takes the lock for one reservation, returning false when another
// holder already has it and its lock has not expired
func (l *InMemoryReservationLocker) Acquire(_ context.Context, reservationID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if expiry, ok := l.held[reservationID]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[reservationID] = now.Add(l.ttl)
	return true, nil
}

// Release frees the lock for one reservation
func (l *InMemoryReservationLocker) Release(_ context.Context, reservationID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, reservationID)
	return nil
}
