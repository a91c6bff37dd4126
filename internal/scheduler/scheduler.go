package scheduler

import (
	"context"
	"time"

	"timeguesser/internal/logger"
	"timeguesser/internal/service"

	"github.com/go-co-op/gocron/v2"
)

// Reconcile is the periodic job body. *service.Reconciler implements it.
type Reconcile interface {
	Run(ctx context.Context) (service.ReconcileResult, error)
}

// Scheduler runs background jobs on fixed intervals.
type Scheduler struct {
	sched gocron.Scheduler
}

// New registers the mint reconciliation job. interval <= 0 disables it.
// Each run is bounded by timeout; overlapping runs are skipped.
func New(job Reconcile, interval, timeout time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if job != nil && interval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if _, err := job.Run(ctx); err != nil {
					logger.Warn("[Scheduler] reconcile failed", "error", err)
				}
			}),
			gocron.WithName("reconcile-mints"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
	}

	return &Scheduler{sched: sched}, nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.sched.Jobs())
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
