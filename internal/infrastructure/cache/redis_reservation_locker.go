package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/multicommerce/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisReservationLocker serializes expiry-sweep work on individual
// reservations across instances. The sweep acquires a per-reservation lock
// before releasing stock, so two overlapping sweeps (or a sweep racing a
// manual delete on another node) never process the same reservation twice.
type RedisReservationLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisReservationLocker creates a locker with its own Redis connection
func NewRedisReservationLocker(cfg *config.RedisConfig, ttl time.Duration) (*RedisReservationLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReservationLockerWithClient(client, ttl), nil
}

// NewRedisReservationLockerWithClient creates a locker on an existing client
func NewRedisReservationLockerWithClient(client *redis.Client, ttl time.Duration) *RedisReservationLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisReservationLocker{
		client:    client,
		keyPrefix: "reservation:sweep:",
		ttl:       ttl,
	}
}

// Acquire takes the lock for one reservation. Returns false when another
// holder already has it. SETNX with TTL keeps the operation atomic and makes
// a crashed holder's lock expire on its own.
func (l *RedisReservationLocker) Acquire(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+reservationID.String(), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire reservation lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock for one reservation
func (l *RedisReservationLocker) Release(ctx context.Context, reservationID uuid.UUID) error {
	if err := l.client.Del(ctx, l.keyPrefix+reservationID.String()).Err(); err != nil {
		return fmt.Errorf("failed to release reservation lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisReservationLocker) Close() error {
	return l.client.Close()
}
