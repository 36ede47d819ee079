package models

import "encoding/json"

// EntryType identifies the kind of session log line.
type EntryType string

const (
	EntryUser       EntryType = "user"
	EntryAssistant  EntryType = "assistant"
	EntryToolCall   EntryType = "tool_call"
	EntryToolResult EntryType = "tool_result"
	EntryMeta       EntryType = "meta"
)

// Entry is one line of a session JSONL file. Only the fields relevant to
// Type are populated on write; readers must tolerate absent fields on the
// others.
type Entry struct {
	Type EntryType `json:"type"`
	TsMs int64     `json:"ts_ms"`

	// user, assistant
	Content string `json:"content,omitempty"`

	// tool_call
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`
	ToolID    string          `json:"tool_id,omitempty"`

	// tool_result
	IsError bool `json:"is_error,omitempty"`

	// meta
	Meta map[string]string `json:"meta,omitempty"`
}

// NewUserEntry builds a user turn entry.
func NewUserEntry(content string, tsMs int64) Entry {
	return Entry{Type: EntryUser, Content: content, TsMs: tsMs}
}

// NewAssistantEntry builds an assistant turn entry.
func NewAssistantEntry(content string, tsMs int64) Entry {
	return Entry{Type: EntryAssistant, Content: content, TsMs: tsMs}
}

// NewToolCallEntry builds a tool_call entry.
func NewToolCallEntry(toolID, toolName string, input json.RawMessage, tsMs int64) Entry {
	return Entry{Type: EntryToolCall, ToolID: toolID, ToolName: toolName, ToolInput: input, TsMs: tsMs}
}

// NewToolResultEntry builds a tool_result entry.
func NewToolResultEntry(toolID, content string, isError bool, tsMs int64) Entry {
	return Entry{Type: EntryToolResult, ToolID: toolID, Content: content, IsError: isError, TsMs: tsMs}
}

// NewMetaEntry builds a meta entry carrying opaque key/value pairs.
func NewMetaEntry(meta map[string]string, tsMs int64) Entry {
	return Entry{Type: EntryMeta, Meta: meta, TsMs: tsMs}
}
