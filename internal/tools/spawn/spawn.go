// Package spawn implements the spawn and spawn_status tools (spec
// §4.3): a fire-and-forget sub-agent task primitive backed by
// internal/jobs, mirroring the memory tool's lock-then-rename
// durability for the on-disk spawn/<task_id> layout.
package spawn

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/jobs"
)

// Runner executes one sub-agent task to completion and returns its
// final text. Bound in cmd/bashclaw to Runtime.Run against a fresh
// session scope, per SPEC_FULL's Open Question decision that spawn
// creates a new session scope rather than inheriting the caller's.
type Runner interface {
	Run(ctx context.Context, agentID, task string) (string, error)
}

// RunnerFunc adapts a function to a Runner.
type RunnerFunc func(ctx context.Context, agentID, task string) (string, error)

// Run calls the underlying function.
func (f RunnerFunc) Run(ctx context.Context, agentID, task string) (string, error) {
	return f(ctx, agentID, task)
}

// SpawnTool starts a sub-agent task asynchronously and returns its id.
type SpawnTool struct {
	Store        jobs.Store
	Runner       Runner
	DefaultAgent string
}

// NewSpawnTool constructs a SpawnTool.
func NewSpawnTool(store jobs.Store, runner Runner, defaultAgent string) *SpawnTool {
	return &SpawnTool{Store: store, Runner: runner, DefaultAgent: defaultAgent}
}

func (t *SpawnTool) Name() string        { return "spawn" }
func (t *SpawnTool) Optional() bool      { return true }
func (t *SpawnTool) BridgeExposed() bool { return true }

func (t *SpawnTool) Description() string {
	return "Start a sub-agent task in the background and return a task id to poll with spawn_status."
}

func (t *SpawnTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"task": map[string]interface{}{
				"type":        "string",
				"description": "The task for the sub-agent to perform.",
			},
			"agent": map[string]interface{}{
				"type":        "string",
				"description": "Named agent config to run the task under (defaults to the tool's configured default agent).",
			},
		},
		"required": []string{"task"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *SpawnTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Task  string `json:"task"`
		Agent string `json:"agent"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Task == "" {
		return toolError("empty task"), nil
	}
	if t.Store == nil || t.Runner == nil {
		return toolError("spawn is not configured"), nil
	}

	agentID := input.Agent
	if agentID == "" {
		agentID = t.DefaultAgent
	}

	id := uuid.NewString()
	if fs, ok := t.Store.(*jobs.FileStore); ok {
		_ = fs.WriteInput(id, input)
	}
	job := &jobs.Job{ID: id, ToolName: "spawn", Status: jobs.StatusQueued, CreatedAt: time.Now()}
	if err := t.Store.Create(ctx, job); err != nil {
		return toolError(fmt.Sprintf("create job: %v", err)), nil
	}

	go t.runTask(id, agentID, input.Task)

	payload, _ := json.Marshal(map[string]string{"task_id": id})
	return &agent.ToolResult{Content: string(payload)}, nil
}

// runTask executes the sub-agent task with a context detached from the
// dispatching call's request lifetime -- a background task must
// outlive the tool call that started it.
func (t *SpawnTool) runTask(id, agentID, task string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	job, err := t.Store.Get(ctx, id)
	if err != nil || job == nil {
		return
	}
	job.Status = jobs.StatusRunning
	job.StartedAt = time.Now()
	_ = t.Store.Update(ctx, job)

	output, runErr := t.Runner.Run(ctx, agentID, task)

	job.FinishedAt = time.Now()
	if runErr != nil {
		job.Status = jobs.StatusFailed
		job.Error = runErr.Error()
	} else {
		job.Status = jobs.StatusSucceeded
		job.Result = &agent.ToolResult{Content: output}
	}
	_ = t.Store.Update(ctx, job)
}

// StatusTool reports on a task started by SpawnTool.
type StatusTool struct {
	Store jobs.Store
}

// NewStatusTool constructs a StatusTool.
func NewStatusTool(store jobs.Store) *StatusTool { return &StatusTool{Store: store} }

func (t *StatusTool) Name() string        { return "spawn_status" }
func (t *StatusTool) Optional() bool      { return true }
func (t *StatusTool) BridgeExposed() bool { return true }

func (t *StatusTool) Description() string {
	return "Check the status of a task started with spawn, returning its output once complete."
}

func (t *StatusTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"task_id": map[string]interface{}{
				"type":        "string",
				"description": "The task id returned by spawn.",
			},
		},
		"required": []string{"task_id"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *StatusTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.TaskID == "" {
		return toolError("task_id is required"), nil
	}
	if t.Store == nil {
		return toolError("spawn is not configured"), nil
	}

	job, err := t.Store.Get(ctx, input.TaskID)
	if err != nil {
		return toolError(fmt.Sprintf("get job: %v", err)), nil
	}
	if job == nil {
		return toolError(fmt.Sprintf("unknown task_id %q", input.TaskID)), nil
	}

	result := map[string]interface{}{"status": job.Status}
	switch job.Status {
	case jobs.StatusSucceeded:
		if job.Result != nil {
			result["output"] = job.Result.Content
		}
	case jobs.StatusFailed:
		result["output"] = job.Error
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}

func toolError(message string) *agent.ToolResult {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return &agent.ToolResult{Content: message, IsError: true}
	}
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
