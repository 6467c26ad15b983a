// Package scheduler runs confirmed schedule definitions on a cron
// timer and keeps running entries in sync with configuration changes.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// JobFactory builds the function executed when a schedule fires. The
// host supplies it; the capability core only manages registration.
type JobFactory func(id string) func()

// Scheduler wraps a cron runner with per-schedule entry tracking so
// individual schedules can be replaced or removed.
type Scheduler struct {
	cron    *cron.Cron
	factory JobFactory
	logger  zerolog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New creates a scheduler. Call Start before registering schedules
// that should fire, and Stop on shutdown.
func New(factory JobFactory, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		factory: factory,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		entries: make(map[string]cron.EntryID),
	}
}

// Start launches the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Apply registers or replaces the cron entry for a schedule id.
func (s *Scheduler) Apply(id, spec string) error {
	job := s.factory(id)
	if job == nil {
		return fmt.Errorf("no job available for schedule %q", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}

	entryID, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("failed to register schedule %q: %w", id, err)
	}
	s.entries[id] = entryID

	s.logger.Info().Str("scheduleId", id).Str("spec", spec).Msg("Schedule registered")
	return nil
}

// Remove drops the cron entry for a schedule id. Removing an unknown
// id is a no-op.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
		s.logger.Info().Str("scheduleId", id).Msg("Schedule removed")
	}
}

// Len returns the number of registered schedules.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
