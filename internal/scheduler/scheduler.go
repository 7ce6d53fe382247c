package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PriceFeed/internal/logger"
	"PriceFeed/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is the collector cadence when none is configured.
const DefaultInterval = 15 * time.Second

// Cycle is one unit of scheduled work.
type Cycle interface {
	RunCycle(ctx context.Context) (model.Reading, error)
}

// State of the scheduler.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Scheduler triggers one collector cycle per interval. Cycles never overlap.
type Scheduler struct {
	Cron  *cron.Cron
	Cycle Cycle
	Ctx   context.Context
	Log   zerolog.Logger

	mu    sync.Mutex
	state State

	cycleMu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cycle Cycle, log zerolog.Logger) *Scheduler {
	cl := logger.CronLogger{Log: log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Cycle: cycle,
		Ctx:   ctx,
		Log:   log.With().Str("component", "scheduler").Logger(),
		state: StateIdle,
	}
}

// Register schedules the collector cycle every interval.
func (s *Scheduler) Register(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %s", interval)
	}
	if _, err := s.Cron.AddFunc(fmt.Sprintf("@every %s", interval), s.collectTask); err != nil {
		return fmt.Errorf("register collect task: %w", err)
	}
	s.Log.Info().Dur("interval", interval).Msg("collect task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cron.Start()
	s.state = StateRunning
	s.Log.Info().Msg("scheduler started")
}

// Stop prevents future cycles and waits for an in-flight cycle to finish,
// giving up when ctx is done. A running cycle is never interrupted.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	done := s.Cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return fmt.Errorf("wait for running cycle: %w", ctx.Err())
	}

	// RunNow cycles run outside cron; holding cycleMu once means none is in flight.
	idle := make(chan struct{})
	go func() {
		s.cycleMu.Lock()
		s.cycleMu.Unlock()
		close(idle)
	}()
	select {
	case <-idle:
		s.Log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running cycle: %w", ctx.Err())
	}
}

// State reports whether the scheduler is running.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RunNow executes one cycle immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.collectTask()
}

func (s *Scheduler) collectTask() {
	// cycles never overlap, including RunNow against a cron tick
	if !s.cycleMu.TryLock() {
		s.Log.Debug().Msg("cycle still running, skipping")
		return
	}
	defer s.cycleMu.Unlock()

	if s.State() == StateStopped {
		return
	}

	// errors are already logged and counted by the cycle itself
	_, _ = s.Cycle.RunCycle(s.Ctx)
}
