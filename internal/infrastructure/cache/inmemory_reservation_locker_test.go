package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryReservationLocker_AcquireRelease(t *testing.T) {
	locker := NewInMemoryReservationLocker(time.Minute)
	ctx := context.Background()
	id := uuid.New()

	ok, err := locker.Acquire(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.Acquire(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, id))

	ok, err = locker.Acquire(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryReservationLocker_IndependentLocks(t *testing.T) {
	locker := NewInMemoryReservationLocker(time.Minute)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryReservationLocker_Expiry(t *testing.T) {
	locker := NewInMemoryReservationLocker(time.Minute)
	ctx := context.Background()
	id := uuid.New()

	now := time.Now()
	locker.nowFunc = func() time.Time { return now }

	ok, err := locker.Acquire(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	// Still held just before the TTL elapses.
	locker.nowFunc = func() time.Time { return now.Add(59 * time.Second) }
	ok, err = locker.Acquire(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	// A stale lock is reclaimable after the TTL.
	locker.nowFunc = func() time.Time { return now.Add(61 * time.Second) }
	ok, err = locker.Acquire(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewInMemoryReservationLocker_DefaultsTTL(t *testing.T) {
	locker := NewInMemoryReservationLocker(0)
	assert.Equal(t, 5*time.Minute, locker.ttl)
}

func TestInMemoryReservationLocker_ReleaseUnheldIsNoop(t *testing.T) {
	locker := NewInMemoryReservationLocker(time.Minute)
	assert.NoError(t, locker.Release(context.Background(), uuid.New()))
}
