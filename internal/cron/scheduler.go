package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Scheduler runs ad-hoc jobs added via AddJob, ticking once a second
// and executing whatever has crossed its NextRun time. Grounded on the
// teacher's mutex-protected job slice plus background-ticker shape
// (internal/cron/scheduler.go in the original), adapted from a
// config-file-driven job list to the cron tool's add/list/remove/run
// contract.
type Scheduler struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	executor Executor
	logger   *slog.Logger
	now      func() time.Time

	tickInterval time.Duration
	started      bool
	wg           sync.WaitGroup
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithLogger configures the scheduler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the clock for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTickInterval overrides the scheduler tick interval.
func WithTickInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.tickInterval = interval
		}
	}
}

// NewScheduler creates an empty scheduler backed by executor.
func NewScheduler(executor Executor, opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:         make(map[string]*Job),
		executor:     executor,
		logger:       slog.Default().With("component", "cron"),
		now:          time.Now,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob validates schedule and registers a new job, replacing any
// existing job with the same id.
func (s *Scheduler) AddJob(id, schedule, command string) (*Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("command is required")
	}
	next, err := NextRun(schedule, s.now())
	if err != nil {
		return nil, err
	}
	job := &Job{ID: id, Schedule: schedule, Command: command, Enabled: true, NextRun: next}
	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()
	return job, nil
}

// RemoveJob deletes a job by id, returning false if it didn't exist.
func (s *Scheduler) RemoveJob(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}

// Jobs returns a snapshot of all registered jobs, sorted by id.
func (s *Scheduler) Jobs() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		copyJob := *job
		out = append(out, &copyJob)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RunJob executes a job immediately regardless of its NextRun time.
func (s *Scheduler) RunJob(ctx context.Context, id string) (*Job, error) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("job %q not found", id)
	}
	s.execute(ctx, job)
	copyJob := *job
	return &copyJob, nil
}

func (s *Scheduler) execute(ctx context.Context, job *Job) {
	now := s.now()
	var runErr error
	if s.executor != nil {
		_, runErr = s.executor.Run(ctx, job.Command)
	} else {
		runErr = fmt.Errorf("no executor configured")
	}

	s.mu.Lock()
	job.LastRun = now
	if runErr != nil {
		job.LastErr = runErr.Error()
	} else {
		job.LastErr = ""
	}
	if next, err := NextRun(job.Schedule, now); err == nil {
		job.NextRun = next
	}
	s.mu.Unlock()
}

// Start begins the background tick loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runDue(ctx)
			}
		}
	}()
}

// Stop waits for the tick loop to exit.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	due := make([]*Job, 0)
	for _, job := range s.jobs {
		if job.Enabled && !job.NextRun.IsZero() && !now.Before(job.NextRun) {
			due = append(due, job)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.execute(ctx, job)
	}
}
