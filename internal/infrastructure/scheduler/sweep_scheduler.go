package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	appOrder "github.com/multicommerce/backend/internal/application/order"
	"go.uber.org/zap"
)

// cronTickerInterval is the interval at which the scheduler checks whether
// the daily run is due
const cronTickerInterval = 1 * time.Minute

// SweepSchedulerConfig holds configuration for the daily reservation sweep
type SweepSchedulerConfig struct {
	Enabled    bool
	CronHour   int // hour (0-23) to run the sweep
	CronMinute int // minute (0-59) to run the sweep
	JobTimeout time.Duration
}

// DefaultSweepSchedulerConfig returns the default configuration, running
// at 3:00 AM daily
func DefaultSweepSchedulerConfig() SweepSchedulerConfig {
	return SweepSchedulerConfig{
		Enabled:    true,
		CronHour:   3,
		CronMinute: 0,
		JobTimeout: 30 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract
// hour and minute. Returns defaults (3:00) for an empty or wildcard field.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 3
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 3); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 3, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 3, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// SweepScheduler runs the reservation expiry sweep once a day. A minute
// ticker checks the clock rather than sleeping until the target, so clock
// adjustments and restarts cannot skip a day.
type SweepScheduler struct {
	config     SweepSchedulerConfig
	expiration *appOrder.ExpirationService
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
	lastStats *appOrder.SweepStats
}

// NewSweepScheduler creates a new SweepScheduler
func NewSweepScheduler(config SweepSchedulerConfig, expiration *appOrder.ExpirationService, logger *zap.Logger) *SweepScheduler {
	return &SweepScheduler{
		config:     config,
		expiration: expiration,
		logger:     logger,
	}
}

// Start starts the scheduler loop
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Reservation sweep scheduler started",
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)
	return nil
}

// Stop stops the scheduler loop
func (s *SweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reservation sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reservation sweep scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SweepScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runSweep(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

func (s *SweepScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.config.CronHour && now.Minute() == s.config.CronMinute
}

func (s *SweepScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

func (s *SweepScheduler) runSweep(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	runCtx := ctx
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}

	stats, err := s.expiration.Run(runCtx)
	if err != nil {
		s.logger.Error("Reservation sweep failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()
}

// TriggerManualRun triggers an immediate sweep. Runs on a background context
// so it is not cancelled when the triggering HTTP request completes.
func (s *SweepScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runSweep(context.Background())
	return nil
}

// GetStatus returns the current scheduler status
func (s *SweepScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"cron_hour":   s.config.CronHour,
		"cron_minute": s.config.CronMinute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
	if s.lastStats != nil {
		status["last_stats"] = *s.lastStats
	}
	return status
}
