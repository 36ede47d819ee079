package spawn

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bashclaw/bashclaw/internal/jobs"
)

func waitForStatus(t *testing.T, store jobs.Store, id string, want jobs.Status) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if job != nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for job %s to reach status %s", id, want)
	return nil
}

func TestSpawnAndStatusSuccess(t *testing.T) {
	store := jobs.NewMemoryStore()
	runner := RunnerFunc(func(ctx context.Context, agentID, task string) (string, error) {
		return "did: " + task, nil
	})
	spawnTool := NewSpawnTool(store, runner, "default")
	statusTool := NewStatusTool(store)

	params, _ := json.Marshal(map[string]string{"task": "summarize the doc"})
	result, err := spawnTool.Execute(context.Background(), params)
	if err != nil || result.IsError {
		t.Fatalf("spawn failed: %v %v", err, result)
	}
	var spawnOut struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal([]byte(result.Content), &spawnOut); err != nil {
		t.Fatalf("decode spawn result: %v", err)
	}
	if spawnOut.TaskID == "" {
		t.Fatal("expected non-empty task_id")
	}

	waitForStatus(t, store, spawnOut.TaskID, jobs.StatusSucceeded)

	statusParams, _ := json.Marshal(map[string]string{"task_id": spawnOut.TaskID})
	statusResult, err := statusTool.Execute(context.Background(), statusParams)
	if err != nil || statusResult.IsError {
		t.Fatalf("status failed: %v %v", err, statusResult)
	}
	if !strings.Contains(statusResult.Content, "did: summarize the doc") {
		t.Fatalf("expected output in status: %s", statusResult.Content)
	}
}

func TestSpawnRunnerFailure(t *testing.T) {
	store := jobs.NewMemoryStore()
	runner := RunnerFunc(func(ctx context.Context, agentID, task string) (string, error) {
		return "", errors.New("boom")
	})
	spawnTool := NewSpawnTool(store, runner, "default")
	statusTool := NewStatusTool(store)

	params, _ := json.Marshal(map[string]string{"task": "fail this"})
	result, _ := spawnTool.Execute(context.Background(), params)
	var spawnOut struct {
		TaskID string `json:"task_id"`
	}
	json.Unmarshal([]byte(result.Content), &spawnOut)

	waitForStatus(t, store, spawnOut.TaskID, jobs.StatusFailed)

	statusParams, _ := json.Marshal(map[string]string{"task_id": spawnOut.TaskID})
	statusResult, _ := statusTool.Execute(context.Background(), statusParams)
	if !strings.Contains(statusResult.Content, "boom") {
		t.Fatalf("expected failure reason in status: %s", statusResult.Content)
	}
}

func TestSpawnEmptyTaskRejected(t *testing.T) {
	spawnTool := NewSpawnTool(jobs.NewMemoryStore(), RunnerFunc(func(ctx context.Context, agentID, task string) (string, error) {
		return "", nil
	}), "default")
	params, _ := json.Marshal(map[string]string{"task": ""})
	result, err := spawnTool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected empty task to be rejected")
	}
}

func TestSpawnStatusUnknownTaskID(t *testing.T) {
	statusTool := NewStatusTool(jobs.NewMemoryStore())
	params, _ := json.Marshal(map[string]string{"task_id": "nonexistent"})
	result, err := statusTool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "unknown task_id") {
		t.Fatalf("expected unknown task_id error, got %s", result.Content)
	}
}

func TestSpawnStatusMissingTaskID(t *testing.T) {
	statusTool := NewStatusTool(jobs.NewMemoryStore())
	params, _ := json.Marshal(map[string]string{})
	result, err := statusTool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected missing task_id to error")
	}
}

func TestSpawnUnconfigured(t *testing.T) {
	spawnTool := &SpawnTool{}
	params, _ := json.Marshal(map[string]string{"task": "x"})
	result, err := spawnTool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected unconfigured spawn to error")
	}
}
