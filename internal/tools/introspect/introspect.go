// Package introspect implements the introspection tools: the
// always-visible agents_list/sessions_list/session_status read-only views
// over the config catalog and session store, plus the optional
// agent_message tool, a narrow write path for cross-agent notes.
package introspect

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/config"
	"github.com/bashclaw/bashclaw/internal/session"
	"github.com/bashclaw/bashclaw/pkg/models"
)

// AgentsListTool reports the agents named in configuration.
type AgentsListTool struct {
	Config *config.Config
}

func NewAgentsListTool(cfg *config.Config) *AgentsListTool { return &AgentsListTool{Config: cfg} }

func (t *AgentsListTool) Name() string        { return "agents_list" }
func (t *AgentsListTool) Optional() bool      { return false }
func (t *AgentsListTool) BridgeExposed() bool { return true }
func (t *AgentsListTool) Description() string { return "List the agents defined in configuration." }
func (t *AgentsListTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *AgentsListTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	if t.Config == nil {
		return toolError("agents_list is not configured"), nil
	}
	type agentSummary struct {
		ID      string `json:"id"`
		Model   string `json:"model"`
		Profile string `json:"profile"`
		Engine  string `json:"engine"`
	}
	agents := make([]agentSummary, 0, len(t.Config.Agents.ByID))
	for id, cfg := range t.Config.Agents.ByID {
		resolved := t.Config.Resolve(id)
		_ = cfg
		agents = append(agents, agentSummary{ID: id, Model: resolved.Model, Profile: resolved.Profile, Engine: resolved.Engine})
	}
	payload, err := json.MarshalIndent(map[string]interface{}{"agents": agents, "count": len(agents)}, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}

// SessionsListTool lists known session files.
type SessionsListTool struct {
	Sessions *session.Store
}

func NewSessionsListTool(store *session.Store) *SessionsListTool {
	return &SessionsListTool{Sessions: store}
}

func (t *SessionsListTool) Name() string        { return "sessions_list" }
func (t *SessionsListTool) Optional() bool      { return false }
func (t *SessionsListTool) BridgeExposed() bool { return true }
func (t *SessionsListTool) Description() string { return "List session logs known to this agent." }
func (t *SessionsListTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{}}`)
}

func (t *SessionsListTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	if t.Sessions == nil {
		return toolError("sessions_list is not configured"), nil
	}
	infos, err := t.Sessions.List()
	if err != nil {
		return toolError(fmt.Sprintf("list sessions: %v", err)), nil
	}
	payload, err := json.MarshalIndent(map[string]interface{}{"sessions": infos, "count": len(infos)}, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}

// SessionStatusTool summarizes one session by path.
type SessionStatusTool struct {
	Sessions *session.Store
}

func NewSessionStatusTool(store *session.Store) *SessionStatusTool {
	return &SessionStatusTool{Sessions: store}
}

func (t *SessionStatusTool) Name() string        { return "session_status" }
func (t *SessionStatusTool) Optional() bool      { return false }
func (t *SessionStatusTool) BridgeExposed() bool { return true }
func (t *SessionStatusTool) Description() string {
	return "Report entry count and last-activity time for one session."
}
func (t *SessionStatusTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Session file path, as reported by sessions_list.",
			},
		},
		"required": []string{"path"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *SessionStatusTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Path == "" {
		return toolError("path is required"), nil
	}
	if t.Sessions == nil {
		return toolError("session_status is not configured"), nil
	}

	entries, err := t.Sessions.Load(input.Path, 0)
	if err != nil {
		return toolError(fmt.Sprintf("load session: %v", err)), nil
	}
	if len(entries) == 0 {
		return toolError(fmt.Sprintf("unknown session %q", input.Path)), nil
	}
	last := entries[len(entries)-1]

	payload, err := json.MarshalIndent(map[string]interface{}{
		"path":          input.Path,
		"entry_count":   len(entries),
		"last_activity": time.UnixMilli(last.TsMs).UTC(),
		"last_type":     last.Type,
	}, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}

// AgentMessageTool appends a note into another agent's session log
// without invoking the model -- an asynchronous mailbox, not a
// synchronous call (spawn/spawn_status exist for that).
type AgentMessageTool struct {
	Config   *config.Config
	Sessions *session.Store
}

func NewAgentMessageTool(cfg *config.Config, store *session.Store) *AgentMessageTool {
	return &AgentMessageTool{Config: cfg, Sessions: store}
}

func (t *AgentMessageTool) Name() string        { return "agent_message" }
func (t *AgentMessageTool) Optional() bool      { return true }
func (t *AgentMessageTool) BridgeExposed() bool { return true }
func (t *AgentMessageTool) Description() string {
	return "Leave a message in another agent's session log for it to see on its next turn."
}
func (t *AgentMessageTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"agent": map[string]interface{}{
				"type":        "string",
				"description": "Target agent id.",
			},
			"channel": map[string]interface{}{"type": "string"},
			"sender":  map[string]interface{}{"type": "string"},
			"text":    map[string]interface{}{"type": "string"},
		},
		"required": []string{"agent", "text"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

func (t *AgentMessageTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Agent   string `json:"agent"`
		Channel string `json:"channel"`
		Sender  string `json:"sender"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if input.Agent == "" || input.Text == "" {
		return toolError("agent and text are required"), nil
	}
	if t.Config == nil || t.Sessions == nil {
		return toolError("agent_message is not configured"), nil
	}

	agentCfg := t.Config.Resolve(input.Agent)
	path := session.Path(t.Sessions.Root(), input.Agent, input.Channel, input.Sender, t.Config.Session.Scope)
	_ = agentCfg

	if err := t.Sessions.Append(path, models.NewUserEntry(input.Text, time.Now().UnixMilli())); err != nil {
		return toolError(fmt.Sprintf("append message: %v", err)), nil
	}

	payload, _ := json.Marshal(map[string]interface{}{"delivered": true, "path": path})
	return &agent.ToolResult{Content: string(payload)}, nil
}

func toolError(message string) *agent.ToolResult {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return &agent.ToolResult{Content: message, IsError: true}
	}
	return &agent.ToolResult{Content: string(payload), IsError: true}
}
