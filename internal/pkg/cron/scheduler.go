package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job struct {
	Name string
	Spec string // standard 5-field cron expression
	Fn   func(ctx context.Context) error
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron   *cron.Cron
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewScheduler creates a scheduler evaluating cron expressions in loc.
// A run is skipped while the previous run of the same job is still going.
func NewScheduler(loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(name string, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{Name: name, Spec: spec, Fn: fn}
	if _, err := s.cron.AddFunc(spec, func() { s.executeJob(job) }); err != nil {
		return fmt.Errorf("register cron job %q: %w", name, err)
	}
	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", name, "spec", spec)
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("Cron scheduler stopped")
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}
