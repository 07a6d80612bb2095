package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context)
}

// Scheduler drives a Job on a fixed period. A tick is skipped when
// the previous one is still running, so a slow tick never overlaps
// the next and the job never double-processes the same work.
type Scheduler struct {
	job      Job
	interval time.Duration
	busy     sync.Mutex
}

func NewScheduler(job Job, interval time.Duration) *Scheduler {
	return &Scheduler{
		job:      job,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logrus.Infof("Scheduler started for job %q with interval %s", s.job.Name(), s.interval)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Scheduler stopped for job %q", s.job.Name())
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.busy.TryLock() {
		logrus.Warnf("Job %q still running, skipping tick", s.job.Name())
		return
	}
	defer s.busy.Unlock()

	s.job.Run(ctx)
}
