package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/model"
)

// Refresher triggers one refresh cycle. Satisfied by the coordinator.
type Refresher interface {
	Refresh(ctx context.Context, trigger model.Trigger) (*model.Snapshot, error)
}

// Scheduler manages the fixed-interval refresh trigger.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Refresher) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Ctx:       ctx,
	}
}

// RegisterAll registers the interval poll job. The interval must respect the
// API's minimum polling distance; config validation enforces that.
func (s *Scheduler) RegisterAll(pollInterval time.Duration) error {
	spec := fmt.Sprintf("@every %s", pollInterval)
	if _, err := s.Cron.AddFunc(spec, s.pollTask); err != nil {
		return fmt.Errorf("register poll task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	logrus.Info("scheduler stopped")
}

// RunRefreshNow executes a refresh immediately (manual trigger / startup).
func (s *Scheduler) RunRefreshNow() {
	if _, err := s.Refresher.Refresh(s.Ctx, model.TriggerManual); err != nil {
		logrus.Errorf("manual refresh: %v", err)
	}
}

func (s *Scheduler) pollTask() {
	if _, err := s.Refresher.Refresh(s.Ctx, model.TriggerInterval); err != nil {
		logrus.Errorf("interval refresh: %v", err)
	}
}
