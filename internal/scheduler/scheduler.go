// Package scheduler runs the daily scrape jobs unattended.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of scheduled work. Returned errors are logged, not
// propagated: a failed run must never stop the schedule.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler triggers registered jobs on a cron spec in a fixed timezone.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New constructs a Scheduler pinned to the given location.
func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		logger: logger,
	}
}

// Register adds a job on the given cron spec. Each trigger runs detached
// from any HTTP request lifecycle with panic and error isolation.
func (s *Scheduler) Register(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(job)); err != nil {
		return fmt.Errorf("register job %s: %w", job.Name, err)
	}
	return nil
}

// wrap isolates one job execution: panics are recovered and errors are
// logged so a bad run cannot take down the process or the cron loop.
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("scheduled job panicked",
					zap.String("job", job.Name),
					zap.Any("panic", rec),
				)
			}
		}()

		s.logger.Info("scheduled job starting", zap.String("job", job.Name))
		start := time.Now()
		if err := job.Run(context.Background()); err != nil {
			s.logger.Error("scheduled job failed",
				zap.String("job", job.Name),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("scheduled job finished",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// Start begins triggering jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}
