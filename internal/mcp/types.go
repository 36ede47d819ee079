// Package mcp implements the Model Context Protocol bridge (§4.6): a
// single-threaded NDJSON JSON-RPC 2.0 server exposing the agent's tool
// registry over stdin/stdout. Message and error-code vocabulary here
// mirrors the teacher's MCP client types (internal/mcp originally
// implemented the opposite direction, connecting outbound to external
// MCP servers); this repo only needs the server side, so the
// transport/client-config types were dropped -- see DESIGN.md.
package mcp

import "encoding/json"

// MCPTool describes one tool as surfaced over tools/list.
type MCPTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// JSONRPCRequest is a JSON-RPC 2.0 request or notification (no ID).
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether this request carries no id.
func (r *JSONRPCRequest) IsNotification() bool { return r.ID == nil }

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Standard JSON-RPC error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ServerInfo identifies this MCP server in the initialize response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities advertised by initialize.
type Capabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// ToolsCapability marks tool support with no extra flags.
type ToolsCapability struct{}

// InitializeResult is the result of the initialize method.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools []MCPTool `json:"tools"`
}

// CallToolParams are the parameters of a tools/call request.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResultContent is one content block of a tools/call result.
type ToolResultContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the result of a tools/call request.
type CallToolResult struct {
	Content []ToolResultContent `json:"content"`
	IsError bool                `json:"isError,omitempty"`
}

// EmptyListResult backs resources/list and prompts/list, which spec
// always answers with an empty array regardless of method name.
type EmptyListResult struct {
	Resources []any `json:"resources"`
	Prompts   []any `json:"prompts"`
}
