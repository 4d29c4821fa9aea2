package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically completes bookings whose slot date has passed.
type Sweeper struct {
	cron    *cron.Cron
	service Service
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration
}

// SweeperOption customizes a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepClock sets the clock that decides which slot dates have elapsed.
func WithSweepClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSweeper schedules the completion run. schedule uses robfig/cron syntax,
// including descriptors such as "@every 10m" and "@daily".
func NewSweeper(service Service, schedule string, logger *zap.Logger, opts ...SweeperOption) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: service,
		logger:  logger,
		now:     time.Now,
		timeout: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid completion sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce completes elapsed bookings immediately.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.service.CompleteElapsed(ctx, s.now())
	if err != nil {
		s.logger.Error("completion sweep failed", zap.Int("completed", n), zap.Error(err))
		return n, err
	}
	if n > 0 {
		s.logger.Info("completion sweep finished", zap.Int("completed", n))
	}
	return n, nil
}

// Start runs the schedule in the background until Stop.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("completion sweeper started")
}

// Stop halts scheduling and waits for a running sweep, bounded by ctx.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("completion sweeper stopped")
	case <-ctx.Done():
		s.logger.Warn("completion sweeper did not stop in time")
	}
}
