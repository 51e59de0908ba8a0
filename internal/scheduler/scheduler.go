package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/guttosm/spimexpulse/internal/logger"
)

// Clearer empties a cache.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Scheduler runs periodic maintenance jobs on a wall-clock schedule.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New builds a scheduler evaluating cron expressions in loc.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		log:  logger.Component("scheduler"),
	}
}

// ScheduleCacheReset clears c every day at hour:minute.
func (s *Scheduler) ScheduleCacheReset(hour, minute int, c Clearer) error {
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Clear(ctx); err != nil {
			s.log.Error().Err(err).Msg("scheduled cache reset failed")
			return
		}
		s.log.Info().Msg("scheduled cache reset done")
	})
	if err != nil {
		return fmt.Errorf("schedule cache reset %q: %w", spec, err)
	}
	s.log.Info().Str("spec", spec).Msg("cache reset scheduled")
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits up to ctx for running jobs.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stop timed out")
	}
}
