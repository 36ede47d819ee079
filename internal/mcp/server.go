package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/bashclaw/bashclaw/internal/agent"
)

// ServerVersion is reported in the initialize response.
const ServerVersion = "1.0.0"

var toolNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ToolRegistry is the subset of *agent.Registry the bridge dispatches
// against; declared locally so this package doesn't need the whole
// agent.Registry surface to be mockable in tests.
type ToolRegistry interface {
	BridgeExposed() []agent.Tool
	Get(name string) (agent.Tool, bool)
	Execute(ctx context.Context, name string, input json.RawMessage) (*agent.ToolResult, error)
}

// Server is a single-threaded NDJSON JSON-RPC 2.0 server exposing a
// tool registry's bridge-exposed tools over stdin/stdout (§4.6).
type Server struct {
	Registry ToolRegistry
	Logger   *slog.Logger

	toolsOnce sync.Once
	toolsList ListToolsResult
}

// NewServer creates a bridge server over registry.
func NewServer(registry ToolRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Registry: registry, Logger: logger}
}

// Serve reads one JSON-RPC message per line from r and writes one
// response line per line to w, until r is exhausted or ctx is done.
// Notifications (no id) never produce a response line.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10<<20)
	writer := bufio.NewWriter(w)
	defer writer.Flush()

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.handleLine(ctx, line)
		if resp == nil {
			continue
		}
		encoded, err := json.Marshal(resp)
		if err != nil {
			s.Logger.Error("mcp: encode response failed", "error", err)
			continue
		}
		if _, err := writer.Write(encoded); err != nil {
			return err
		}
		if _, err := writer.WriteString("\n"); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line string) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return errorResponse(nil, ErrCodeParseError, "parse error")
	}
	if req.IsNotification() {
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req.ID, req.Params)
	case "resources/list":
		return resultResponse(req.ID, EmptyListResult{Resources: []any{}, Prompts: []any{}})
	case "prompts/list":
		return resultResponse(req.ID, EmptyListResult{Resources: []any{}, Prompts: []any{}})
	default:
		return errorResponse(req.ID, ErrCodeMethodNotFound, "Method not found")
	}
}

func (s *Server) handleInitialize(id any) *JSONRPCResponse {
	return resultResponse(id, InitializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities:    Capabilities{Tools: ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: "bashclaw", Version: ServerVersion},
	})
}

func (s *Server) handleToolsList(id any) *JSONRPCResponse {
	s.toolsOnce.Do(func() {
		if s.Registry == nil {
			return
		}
		tools := s.Registry.BridgeExposed()
		list := make([]MCPTool, 0, len(tools))
		for _, t := range tools {
			list = append(list, MCPTool{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: t.Schema(),
			})
		}
		s.toolsList = ListToolsResult{Tools: list}
	})
	return resultResponse(id, s.toolsList)
}

func (s *Server) handleToolsCall(ctx context.Context, id any, params json.RawMessage) *JSONRPCResponse {
	var call CallToolParams
	if err := json.Unmarshal(params, &call); err != nil {
		return errorResponse(id, ErrCodeInvalidParams, "invalid params")
	}
	if !toolNamePattern.MatchString(call.Name) {
		return errorResponse(id, ErrCodeInvalidParams, "invalid tool name")
	}
	if s.Registry == nil {
		return errorResponse(id, ErrCodeInternalError, "registry unavailable")
	}
	if _, ok := s.Registry.Get(call.Name); !ok {
		return errorResponse(id, ErrCodeInvalidParams, fmt.Sprintf("unknown tool %q", call.Name))
	}

	result, err := s.Registry.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		return resultResponse(id, CallToolResult{
			Content: []ToolResultContent{{Type: "text", Text: flatten(err.Error())}},
			IsError: true,
		})
	}
	return resultResponse(id, CallToolResult{
		Content: []ToolResultContent{{Type: "text", Text: flatten(result.Content)}},
		IsError: result.IsError,
	})
}

// flatten collapses embedded newlines to spaces so a tool result's
// text renders on the single JSON-RPC response line.
func flatten(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", " "), "\n", " ")
}

func resultResponse(id any, result any) *JSONRPCResponse {
	encoded, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, ErrCodeInternalError, "internal error")
	}
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: encoded}
}

func errorResponse(id any, code int, message string) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &JSONRPCError{Code: code, Message: message}}
}
