// Package jobs runs periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"finboard/internal/cache"
	"finboard/internal/logger"
)

// DefaultCacheSweepSchedule is used when no schedule is configured.
const DefaultCacheSweepSchedule = "@every 5m"

// Scheduler wraps a cron runner. Jobs are registered before Run.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a scheduler evaluating schedules in loc. A nil loc
// means UTC.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{cron: cron.New(cron.WithLocation(loc))}
}

// AddCacheSweep schedules a sweep of every cache in registry.
func (s *Scheduler) AddCacheSweep(schedule string, registry *cache.Registry) error {
	if schedule == "" {
		schedule = DefaultCacheSweepSchedule
	}
	if _, err := s.cron.AddFunc(schedule, SweepCaches(registry)); err != nil {
		return fmt.Errorf("unable to schedule cache sweep %q: %w", schedule, err)
	}
	return nil
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.Named("jobs")
	s.cron.Start()
	log.Infow("Scheduler started", "jobs", s.Entries())

	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info("Scheduler stopped")
	return nil
}

// SweepCaches returns the job body that drops expired cache entries.
func SweepCaches(registry *cache.Registry) func() {
	return func() {
		start := time.Now()
		removed := registry.Sweep()
		logger.Named("jobs").Debugw("Cache sweep finished",
			"removed", removed,
			"duration", time.Since(start),
		)
	}
}
