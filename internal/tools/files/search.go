package files

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bashclaw/bashclaw/internal/agent"
)

// SearchTool searches file contents under a directory in the workspace.
type SearchTool struct {
	resolver Resolver
	maxHits  int
}

// NewSearchTool creates a file_search tool scoped to the workspace.
func NewSearchTool(cfg Config) *SearchTool {
	return &SearchTool{resolver: Resolver{Root: cfg.Workspace}, maxHits: 500}
}

func (t *SearchTool) Name() string { return "file_search" }

func (t *SearchTool) Description() string {
	return "Search file contents under a directory in the workspace for a substring."
}

func (t *SearchTool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory to search (relative to workspace).",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Substring to search for.",
			},
		},
		"required": []string{"path", "content"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Optional reports that file_search is gated by profile/tool_allow.
func (t *SearchTool) Optional() bool { return true }

// BridgeExposed reports that file_search is safe to expose over MCP.
func (t *SearchTool) BridgeExposed() bool { return true }

func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}
	if strings.TrimSpace(input.Path) == "" {
		return toolError("path is required"), nil
	}
	if input.Content == "" {
		return toolError("content is required"), nil
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

	type hit struct {
		Path string `json:"path"`
		Line int    `json:"line"`
		Text string `json:"text"`
	}
	var results []hit

	_ = filepath.WalkDir(resolved, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || len(results) >= t.maxHits {
			return nil
		}
		f, err := os.Open(walkPath)
		if err != nil {
			return nil
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		lineNo := 0
		rel, _ := filepath.Rel(resolved, walkPath)
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.Contains(line, input.Content) {
				results = append(results, hit{Path: filepath.Join(input.Path, rel), Line: lineNo, Text: strings.TrimSpace(line)})
				if len(results) >= t.maxHits {
					break
				}
			}
		}
		return nil
	})

	payload, err := json.MarshalIndent(map[string]interface{}{
		"results": results,
		"count":   len(results),
	}, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}
