package cron

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	croncore "github.com/bashclaw/bashclaw/internal/cron"
)

type fakeExecutor struct{ calls []string }

func (f *fakeExecutor) Run(ctx context.Context, command string) (string, error) {
	f.calls = append(f.calls, command)
	return "ok", nil
}

func testScheduler(t *testing.T) *croncore.Scheduler {
	t.Helper()
	s := croncore.NewScheduler(&fakeExecutor{})
	if _, err := s.AddJob("job1", "0 * * * *", "echo hi"); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	return s
}

func TestTool_Name(t *testing.T) {
	tool := NewTool(nil)
	if tool.Name() != "cron" {
		t.Errorf("expected 'cron', got %q", tool.Name())
	}
}

func TestTool_Schema(t *testing.T) {
	tool := NewTool(nil)
	schema := tool.Schema()
	var parsed map[string]interface{}
	if err := json.Unmarshal(schema, &parsed); err != nil {
		t.Fatalf("schema should be valid JSON: %v", err)
	}
	if parsed["type"] != "object" {
		t.Errorf("expected type 'object', got %v", parsed["type"])
	}
}

func TestTool_Execute_NilScheduler(t *testing.T) {
	tool := NewTool(nil)
	params, _ := json.Marshal(map[string]interface{}{"action": "list"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "unavailable") {
		t.Fatalf("expected unavailable error, got %s", result.Content)
	}
}

func TestCronToolAddListRemove(t *testing.T) {
	scheduler := croncore.NewScheduler(&fakeExecutor{})
	tool := NewTool(scheduler)

	addParams, _ := json.Marshal(map[string]interface{}{
		"action": "add", "id": "daily", "schedule": "0 0 * * *", "command": "echo hi",
	})
	if res, err := tool.Execute(context.Background(), addParams); err != nil || res.IsError {
		t.Fatalf("add failed: %v %v", err, res)
	}

	listParams, _ := json.Marshal(map[string]interface{}{"action": "list"})
	res, err := tool.Execute(context.Background(), listParams)
	if err != nil || res.IsError {
		t.Fatalf("list failed: %v %v", err, res)
	}
	if !strings.Contains(res.Content, "daily") {
		t.Fatalf("expected job in list: %s", res.Content)
	}

	removeParams, _ := json.Marshal(map[string]interface{}{"action": "remove", "id": "daily"})
	if res, err := tool.Execute(context.Background(), removeParams); err != nil || res.IsError {
		t.Fatalf("remove failed: %v %v", err, res)
	}
}

func TestCronToolAddRejectsInvalidSchedule(t *testing.T) {
	scheduler := croncore.NewScheduler(&fakeExecutor{})
	tool := NewTool(scheduler)
	params, _ := json.Marshal(map[string]interface{}{"action": "add", "id": "x", "schedule": "nonsense", "command": "echo hi"})
	res, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected invalid cron expr to be rejected")
	}
}

func TestCronToolRun_MissingID(t *testing.T) {
	scheduler := testScheduler(t)
	tool := NewTool(scheduler)
	params, _ := json.Marshal(map[string]interface{}{"action": "run"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "required") {
		t.Fatalf("expected required error, got %s", result.Content)
	}
}

func TestCronToolRun_JobNotFound(t *testing.T) {
	scheduler := testScheduler(t)
	tool := NewTool(scheduler)
	params, _ := json.Marshal(map[string]interface{}{"action": "run", "id": "nonexistent"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError {
		t.Error("expected error for nonexistent job")
	}
}

func TestCronToolRun_Success(t *testing.T) {
	scheduler := testScheduler(t)
	tool := NewTool(scheduler)
	params, _ := json.Marshal(map[string]interface{}{"action": "run", "id": "job1"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
}

func TestCronToolUnknownAction(t *testing.T) {
	scheduler := testScheduler(t)
	tool := NewTool(scheduler)
	params, _ := json.Marshal(map[string]interface{}{"action": "bogus"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "unknown") {
		t.Fatalf("expected unknown action error, got %s", result.Content)
	}
}
