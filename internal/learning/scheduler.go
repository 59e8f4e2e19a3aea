package learning

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal"
	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// Scheduler runs the mine-and-regenerate job on a fixed interval. At
// most one run is in flight at a time; a trigger received while a run
// is in progress is a no-op, not a queued run.
type Scheduler struct {
	learner *Learner
	logger  *internal.Logger
	cron    *cron.Cron
	running atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler for the learner's mining job.
// schedule uses cron syntax, e.g. "@every 5m".
func NewScheduler(learner *Learner, schedule string, logger *internal.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		learner: learner,
		logger:  logger,
		cron:    cron.New(),
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := s.cron.AddFunc(schedule, s.runJob); err != nil {
		cancel()
		return nil, apperrors.ConfigInvalid("invalid learning schedule: " + schedule)
	}
	return s, nil
}

// Start begins the periodic schedule
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("learning scheduler started")
}

// Trigger requests an immediate run. Returns false when a run is
// already in flight and the trigger was dropped.
func (s *Scheduler) Trigger() bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("learning job already running, trigger ignored")
		return false
	}
	go func() {
		defer s.running.Store(false)
		s.execute()
	}()
	return true
}

// Stop halts the schedule and flags cancellation for any in-flight
// run. Mining has no irreversible side effects outside rule storage,
// so best-effort cancellation is sufficient.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.cancel()
	s.logger.Info("learning scheduler stopped")
}

// runJob is the cron entry point, subject to the same single-run gate
// as manual triggers.
func (s *Scheduler) runJob() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("learning job already running, scheduled run skipped")
		return
	}
	defer s.running.Store(false)
	s.execute()
}

func (s *Scheduler) execute() {
	if s.ctx.Err() != nil {
		return
	}
	rules, err := s.learner.RegenerateRules(s.ctx)
	if err != nil {
		jobErr := apperrors.LearningJobError("mine and regenerate failed", err)
		s.logger.Error("%v", jobErr)
		return
	}
	s.logger.Info("learning job produced %d active rules", len(rules))
}
