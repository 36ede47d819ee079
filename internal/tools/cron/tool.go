package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bashclaw/bashclaw/internal/agent"
	croncore "github.com/bashclaw/bashclaw/internal/cron"
)

// Tool exposes cron scheduler actions (spec: action ∈ {add,list,remove,run}).
type Tool struct {
	scheduler *croncore.Scheduler
}

// NewTool creates a cron tool.
func NewTool(scheduler *croncore.Scheduler) *Tool {
	return &Tool{scheduler: scheduler}
}

func (t *Tool) Name() string { return "cron" }

func (t *Tool) Description() string {
	return "Manage scheduled shell-command jobs (add/list/remove/run)."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"add", "list", "remove", "run"},
				"description": "Action to perform.",
			},
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Job id (required for add, remove, run).",
			},
			"schedule": map[string]interface{}{
				"type":        "string",
				"description": "Cron expression (required for add).",
			},
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Shell command to run on schedule (required for add).",
			},
		},
		"required": []string{"action"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Optional reports that cron is gated by profile/tool_allow.
func (t *Tool) Optional() bool { return true }

// BridgeExposed reports that cron is safe to expose over MCP.
func (t *Tool) BridgeExposed() bool { return true }

func (t *Tool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	if t.scheduler == nil {
		return toolError("cron scheduler unavailable"), nil
	}
	var input struct {
		Action   string `json:"action"`
		ID       string `json:"id"`
		Schedule string `json:"schedule"`
		Command  string `json:"command"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}
	action := strings.ToLower(strings.TrimSpace(input.Action))
	if action == "" {
		return toolError("action is required"), nil
	}

	switch action {
	case "add":
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return toolError("id is required"), nil
		}
		job, err := t.scheduler.AddJob(id, input.Schedule, input.Command)
		if err != nil {
			return toolError(fmt.Sprintf("invalid cron expr: %v", err)), nil
		}
		return jsonResult(job), nil
	case "list":
		return jsonResult(map[string]interface{}{"jobs": t.scheduler.Jobs()}), nil
	case "remove":
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return toolError("id is required"), nil
		}
		if !t.scheduler.RemoveJob(id) {
			return toolError("job not found"), nil
		}
		return jsonResult(map[string]interface{}{"removed": true, "id": id}), nil
	case "run":
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return toolError("id is required"), nil
		}
		job, err := t.scheduler.RunJob(ctx, id)
		if err != nil {
			return toolError(fmt.Sprintf("run job: %v", err)), nil
		}
		return jsonResult(job), nil
	default:
		return toolError(fmt.Sprintf("unknown action %q", action)), nil
	}
}

func toolError(message string) *agent.ToolResult {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return &agent.ToolResult{Content: message, IsError: true}
	}
	return &agent.ToolResult{Content: string(payload), IsError: true}
}

func jsonResult(payload any) *agent.ToolResult {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err))
	}
	return &agent.ToolResult{Content: string(encoded)}
}
