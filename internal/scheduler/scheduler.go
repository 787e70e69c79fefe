// Package scheduler reloads reference data on a cron schedule.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rpgo/policy-projector/internal/calculation"
)

// Refresher reloads reference data. refdata.Store satisfies it.
type Refresher interface {
	Refresh() error
}

// Scheduler runs a Refresher on a cron expression.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher Refresher
	Logger    calculation.Logger

	// OnRefresh, when set, is called with the outcome of every run.
	OnRefresh func(err error)

	mu      sync.Mutex
	entry   cron.EntryID
	running bool
}

// New creates a scheduler using the standard five-field cron syntax plus descriptors such as
// "@hourly" and "@every 15m". Overlapping runs are skipped.
func New(r Refresher, logger calculation.Logger) *Scheduler {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Refresher: r,
		Logger:    logger,
	}
}

// Register schedules the refresh job. An empty spec disables scheduling and is not an error.
// Registering again replaces the previous job.
func (s *Scheduler) Register(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.Cron.Remove(s.entry)
		s.entry = 0
	}
	if spec == "" {
		s.Logger.Infof("reference data refresh disabled")
		return nil
	}
	id, err := s.Cron.AddFunc(spec, func() { _ = s.RunNow() })
	if err != nil {
		return fmt.Errorf("register refresh %q: %w", spec, err)
	}
	s.entry = id
	s.Logger.Infof("reference data refresh scheduled: %s", spec)
	return nil
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int { return len(s.Cron.Entries()) }

// Start starts the cron scheduler in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.Cron.Start()
	s.running = true
	s.Logger.Infof("scheduler started")
}

// Stop stops the scheduler and waits for a refresh in progress to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.Cron.Stop().Done()
	s.Logger.Infof("scheduler stopped")
}

// RunNow executes one refresh immediately and returns its error.
func (s *Scheduler) RunNow() error {
	s.Logger.Debugf("refreshing reference data")
	err := s.Refresher.Refresh()
	if err != nil {
		s.Logger.Errorf("reference data refresh: %v", err)
	} else {
		s.Logger.Infof("reference data refreshed")
	}
	if s.OnRefresh != nil {
		s.OnRefresh(err)
	}
	return err
}
