package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bashclaw/bashclaw/internal/agent"
)

// ListTool lists directory entries within the workspace.
type ListTool struct {
	resolver Resolver
}

// NewListTool creates a list_files tool scoped to the workspace.
func NewListTool(cfg Config) *ListTool {
	return &ListTool{resolver: Resolver{Root: cfg.Workspace}}
}

func (t *ListTool) Name() string { return "list_files" }

func (t *ListTool) Description() string {
	return "List entries of a directory in the workspace."
}

func (t *ListTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory to list (relative to workspace).",
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

// Optional reports that list_files is gated by profile/tool_allow.
func (t *ListTool) Optional() bool { return true }

// BridgeExposed reports that list_files is safe to expose over MCP.
func (t *ListTool) BridgeExposed() bool { return true }

func (t *ListTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}
	if strings.TrimSpace(input.Path) == "" {
		return toolError("path is required"), nil
	}

	resolved, err := t.resolver.Resolve(input.Path)
	if err != nil {
		return toolError(err.Error()), nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return toolError(fmt.Sprintf("stat path: %v", err)), nil
	}
	if !info.IsDir() {
		return toolError(fmt.Sprintf("%s is not a directory", input.Path)), nil
	}

	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		return toolError(fmt.Sprintf("read directory: %v", err)), nil
	}

	entries := make([]map[string]interface{}, 0, len(dirEntries))
	for _, e := range dirEntries {
		fi, err := e.Info()
		size := int64(0)
		if err == nil {
			size = fi.Size()
		}
		entries = append(entries, map[string]interface{}{
			"name":  e.Name(),
			"path":  filepath.Join(input.Path, e.Name()),
			"isDir": e.IsDir(),
			"size":  size,
		})
	}

	payload, err := json.MarshalIndent(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	}, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}
