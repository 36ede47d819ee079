package agent

import (
	"context"
	"encoding/json"
)

// ToolResult is a tool handler's outcome. Tool implementations live in
// internal/tools/* and import this package for the contract; they never
// import each other, which is why Tool and ToolResult are defined here
// rather than in a separate tools package.
type ToolResult struct {
	Content string
	IsError bool
}

// Tool is one entry of the tool registry: a name, a description surfaced
// to the model, a JSON-schema for its input, and a handler.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error)

	// Optional reports whether the tool is included only when explicitly
	// allowed (agent.tool_allow), as opposed to being present in every
	// profile by default.
	Optional() bool

	// BridgeExposed reports whether the tool is part of the curated
	// subset exposed by the MCP bridge (§4.6).
	BridgeExposed() bool
}

// ToolSpec is the shape a Tool takes when handed to a provider adapter
// for encode_request.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}
