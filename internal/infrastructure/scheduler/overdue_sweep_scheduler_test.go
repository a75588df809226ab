package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/library/backend/internal/application/lending"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubSweeper) SweepOverdue(ctx context.Context) (*lending.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &lending.SweepResult{Scanned: 3, Flagged: 2, Skipped: 1}, nil
}

func (s *stubSweeper) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestOverdueSweepSchedulerRunsOnStartup(t *testing.T) {
	sweeper := &stubSweeper{}
	sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
		Enabled:       true,
		SweepInterval: time.Hour,
		SweepTimeout:  time.Second,
	})

	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return sweeper.callCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestOverdueSweepSchedulerTicks(t *testing.T) {
	sweeper := &stubSweeper{}
	sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
		Enabled:       true,
		SweepInterval: 20 * time.Millisecond,
		SweepTimeout:  time.Second,
	})

	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return sweeper.callCount() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOverdueSweepSchedulerDisabled(t *testing.T) {
	sweeper := &stubSweeper{}
	sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
		Enabled:       false,
		SweepInterval: 10 * time.Millisecond,
		SweepTimeout:  time.Second,
	})

	require.NoError(t, sched.Start(context.Background()))
	assert.False(t, sched.IsRunning())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sweeper.callCount())
}

func TestOverdueSweepSchedulerStop(t *testing.T) {
	sweeper := &stubSweeper{}
	sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), DefaultOverdueSweepSchedulerConfig())

	require.NoError(t, sched.Start(context.Background()))
	assert.True(t, sched.IsRunning())

	require.NoError(t, sched.Stop(context.Background()))
	assert.False(t, sched.IsRunning())

	// Stopping twice is a no-op
	require.NoError(t, sched.Stop(context.Background()))
}

func TestTriggerImmediateSweep(t *testing.T) {
	sweeper := &stubSweeper{}
	sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
		Enabled:       true,
		SweepInterval: time.Hour,
		SweepTimeout:  time.Second,
	})

	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop(context.Background())

	require.NoError(t, sched.TriggerImmediateSweep(context.Background()))
	assert.Eventually(t, func() bool {
		return sweeper.callCount() >= 2
	}, time.Second, 10*time.Millisecond)
}

func TestTriggerImmediateSweepNotRunning(t *testing.T) {
	sched := NewOverdueSweepScheduler(&stubSweeper{}, zap.NewNop(), DefaultOverdueSweepSchedulerConfig())
	assert.ErrorIs(t, sched.TriggerImmediateSweep(context.Background()), ErrSchedulerNotRunning)
}
