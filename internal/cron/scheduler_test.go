package cron

import (
	"context"
	"testing"
	"time"
)

type fakeExecutor struct {
	calls []string
	err   error
}

func (f *fakeExecutor) Run(ctx context.Context, command string) (string, error) {
	f.calls = append(f.calls, command)
	return "ok", f.err
}

func TestSchedulerAddListRemoveRun(t *testing.T) {
	exec := &fakeExecutor{}
	s := NewScheduler(exec, WithNow(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }))

	job, err := s.AddJob("daily", "0 0 * * *", "echo hi")
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if job.ID != "daily" || job.NextRun.IsZero() {
		t.Fatalf("unexpected job: %+v", job)
	}

	jobs := s.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("Jobs() = %d, want 1", len(jobs))
	}

	if _, err := s.RunJob(context.Background(), "daily"); err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if len(exec.calls) != 1 || exec.calls[0] != "echo hi" {
		t.Fatalf("unexpected executor calls: %v", exec.calls)
	}

	if !s.RemoveJob("daily") {
		t.Fatalf("expected RemoveJob to succeed")
	}
	if len(s.Jobs()) != 0 {
		t.Fatalf("expected no jobs after remove")
	}
}

func TestSchedulerAddJobRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(&fakeExecutor{})
	if _, err := s.AddJob("bad", "not a cron expr", "echo hi"); err == nil {
		t.Fatal("expected invalid schedule to be rejected")
	}
}

func TestSchedulerRunJobUnknownID(t *testing.T) {
	s := NewScheduler(&fakeExecutor{})
	if _, err := s.RunJob(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown job id")
	}
}
