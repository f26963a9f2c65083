// Package schedule runs recurring indexing batches.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps a gocron scheduler whose jobs receive a shared context
// that is cancelled on Stop.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *slog.Logger
}

// New creates a scheduler. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Every runs job immediately and then every interval. A run that is still
// going when the next one is due delays it instead of overlapping.
func (s *Scheduler) Every(tag string, interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("schedule interval must be positive, got %s", interval)
	}

	_, err := s.scheduler.Every(interval).Tag(tag).SingletonMode().Do(s.wrap(tag, job))
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", tag, err)
	}
	return nil
}

// Cron runs job on a cron expression.
func (s *Scheduler) Cron(tag, expr string, job Job) error {
	_, err := s.scheduler.Cron(expr).Tag(tag).SingletonMode().Do(s.wrap(tag, job))
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", tag, err)
	}
	return nil
}

func (s *Scheduler) wrap(tag string, job Job) func() {
	return func() {
		start := time.Now()
		if err := job(s.ctx); err != nil {
			s.logger.Error("scheduled_job_failed",
				slog.String("job", tag),
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
			return
		}
		s.logger.Debug("scheduled_job_done",
			slog.String("job", tag),
			slog.Duration("duration", time.Since(start)))
	}
}

// Remove unschedules the job with tag.
func (s *Scheduler) Remove(tag string) error {
	return s.scheduler.RemoveByTag(tag)
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return s.scheduler.Len()
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop cancels running jobs' context and waits for the scheduler to halt.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.Start()
	<-ctx.Done()
	s.Stop()
}
