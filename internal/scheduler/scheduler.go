// Package scheduler runs reminder passes on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"eventreminder/internal/domain"
)

// Defaults for the reminder job.
const (
	DefaultInterval     = 5 * time.Minute
	DefaultInitialDelay = 30 * time.Second
	DefaultPassTimeout  = 4 * time.Minute
)

// Config controls the timing of the loop. Zero fields take the defaults above.
type Config struct {
	Interval     time.Duration
	InitialDelay time.Duration
	PassTimeout  time.Duration
}

// Scheduler periodically invokes a reminder pass.
type Scheduler struct {
	service domain.ReminderService
	log     *slog.Logger
	cfg     Config
	now     func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Scheduler for service.
func New(service domain.ReminderService, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = DefaultPassTimeout
	}
	return &Scheduler{
		service: service,
		log:     logger.With("component", "scheduler"),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Start runs the loop in the background until Stop is called or ctx is canceled.
// Calling Start on a running Scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.log.Info("scheduler started",
		"first_run_at", s.now().Add(s.cfg.InitialDelay),
		"interval", s.cfg.Interval,
	)
	go func(done chan struct{}) {
		defer close(done)
		s.Run(ctx)
	}(s.done)
}

// Stop cancels pending passes and waits for the loop to exit. A pass already
// running is allowed to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run fires the first pass after the initial delay and then one per interval, until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(s.cfg.InitialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.log.Info("scheduler stopping")
		return
	case <-timer.C:
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one pass. Shutdown does not interrupt it; PassTimeout bounds it instead.
func (s *Scheduler) tick(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PassTimeout)
	defer cancel()

	started := s.now()
	res, err := s.service.CheckEvents(passCtx, started)
	if err != nil {
		s.log.Error("reminder pass failed", "error", err)
		return
	}
	s.log.Info("reminder pass complete",
		"pass_id", res.PassID,
		"sent", res.Sent,
		"duration_ms", s.now().Sub(started).Milliseconds(),
		"next_run_at", started.Add(s.cfg.Interval),
	)
}
