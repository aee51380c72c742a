package scheduler

import (
	"context"
	"fmt"
	"time"

	"placement-backend/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is one recurring task. Spec uses the six-field cron format with seconds.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler runs jobs on a cron with seconds precision. Each run gets its own timeout.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
}

func (s *Scheduler) Add(job Job) error {
	if _, err := s.cron.AddFunc(job.Spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	return nil
}

func (s *Scheduler) Register(jobs []Job) error {
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	logger.Log.Debug("cron job started", "job", job.Name)
	if err := job.Run(ctx); err != nil {
		logger.Log.Error("cron job failed", "job", job.Name, "duration", time.Since(start), "error", err)
		return
	}
	logger.Log.Debug("cron job finished", "job", job.Name, "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}
