package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/library/backend/internal/application/lending"
	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when a sweep is triggered on a
// stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// OverdueSweeper flags overdue loans. Implemented by the lending
// loan service.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context) (*lending.SweepResult, error)
}

// OverdueSweepSchedulerConfig holds configuration for the overdue sweep scheduler
type OverdueSweepSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// SweepInterval is the time between sweep runs
	SweepInterval time.Duration

	// SweepTimeout is the maximum time for a single sweep run
	SweepTimeout time.Duration
}

// DefaultOverdueSweepSchedulerConfig returns default configuration
func DefaultOverdueSweepSchedulerConfig() OverdueSweepSchedulerConfig {
	return OverdueSweepSchedulerConfig{
		Enabled:       true,
		SweepInterval: time.Hour,
		SweepTimeout:  5 * time.Minute,
	}
}

// OverdueSweepScheduler periodically marks active loans past their due
// date as overdue
type OverdueSweepScheduler struct {
	sweeper   OverdueSweeper
	logger    *zap.Logger
	config    OverdueSweepSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweepScheduler creates a new overdue sweep scheduler
func NewOverdueSweepScheduler(sweeper OverdueSweeper, logger *zap.Logger, config OverdueSweepSchedulerConfig) *OverdueSweepScheduler {
	return &OverdueSweepScheduler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
	}
}

// Start starts the sweep loop
func (s *OverdueSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Duration("sweep_interval", s.config.SweepInterval),
		zap.Duration("sweep_timeout", s.config.SweepTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueSweepScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Overdue sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *OverdueSweepScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	// Sweep once on startup so a restart never delays overdue flagging
	// by a full interval
	s.executeSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Overdue sweep loop stopping")
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

func (s *OverdueSweepScheduler) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.sweeper.SweepOverdue(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Overdue sweep completed",
		zap.Duration("duration", duration),
		zap.Int("scanned", result.Scanned),
		zap.Int("flagged", result.Flagged),
		zap.Int("skipped", result.Skipped),
	)
}

// TriggerImmediateSweep runs a sweep outside the regular schedule
func (s *OverdueSweepScheduler) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate overdue sweep")

	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *OverdueSweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
