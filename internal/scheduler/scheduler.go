// Package scheduler triggers archive runs on a cron schedule. Each tick
// posts a job to the worker's mailbox; a tick that arrives while a run is
// still pending replaces it, so runs never overlap or pile up.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/mailbox"
	"github.com/raoulx24/dir-archiver/internal/worker"
)

const TriggerCron = "cron"

type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entry   cron.EntryID
	spec    string
	mb      *mailbox.Mailbox[worker.Job]
	log     logging.Logger
	now     func() time.Time
	started bool
}

// New validates spec and registers it. Standard five-field expressions and
// descriptors such as "@daily" or "@every 6h" are accepted.
func New(spec string, mb *mailbox.Mailbox[worker.Job], log logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		mb:   mb,
		log:  log,
		now:  time.Now,
	}
	if err := s.register(spec); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) register(spec string) error {
	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	s.entry = id
	s.spec = spec
	return nil
}

func (s *Scheduler) fire() {
	if s.mb.Put(worker.Job{Trigger: TriggerCron, RequestedAt: s.now()}) {
		s.log.Warn("scheduler: previous run still pending, coalesced")
	}
}

// Start runs the scheduler until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	s.cron.Start()
	s.log.Info("scheduler: started", "cron", s.spec, "next", s.cron.Entry(s.entry).Next)

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()
	return nil
}

// Stop halts the schedule. A run already in progress is not affected.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("scheduler not started")
	}
	<-s.cron.Stop().Done()
	s.started = false
	s.log.Info("scheduler: stopped")
	return nil
}

// UpdateSchedule swaps the cron expression. On error the old schedule stays.
func (s *Scheduler) UpdateSchedule(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec == s.spec {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	old := s.entry
	if err := s.register(spec); err != nil {
		return err
	}
	s.cron.Remove(old)
	s.log.Info("scheduler: schedule updated", "cron", spec, "next", s.cron.Entry(s.entry).Next)
	return nil
}

// Next returns the next activation, or the zero time if not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) Spec() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}
