// Package memory implements the memory tool: a flat per-key JSON store
// under a root directory, one file per key at "<key>.json".
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/tools/security"
	"github.com/bashclaw/bashclaw/pkg/models"
)

// Tool implements the memory tool (spec: action ∈ {set,get,delete,list,search}).
type Tool struct {
	mu   sync.Mutex
	root string
}

// New creates a memory tool rooted at dir (created on first write).
func New(dir string) *Tool {
	return &Tool{root: dir}
}

func (t *Tool) Name() string { return "memory" }

func (t *Tool) Description() string {
	return "Store and recall small key/value facts across turns (set, get, delete, list, search)."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"set", "get", "delete", "list", "search"},
				"description": "Operation to perform.",
			},
			"key": map[string]interface{}{
				"type":        "string",
				"description": "Memory key (required for set, get, delete).",
			},
			"value": map[string]interface{}{
				"description": "Value to store (required for set); any JSON value.",
			},
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Substring to search for (required for search).",
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

// Optional reports that memory is a core, always-available tool
// present in every profile (spec §4.3's non-optional tool set).
func (t *Tool) Optional() bool { return false }

// BridgeExposed reports that memory is safe to expose over MCP.
func (t *Tool) BridgeExposed() bool { return true }

func (t *Tool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	_ = ctx
	var input struct {
		Action string          `json:"action"`
		Key    string          `json:"key"`
		Value  json.RawMessage `json:"value"`
		Query  string          `json:"query"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}

	switch strings.ToLower(strings.TrimSpace(input.Action)) {
	case "set":
		return t.set(input.Key, input.Value)
	case "get":
		return t.get(input.Key)
	case "delete":
		return t.delete(input.Key)
	case "list":
		return t.list()
	case "search":
		return t.search(input.Query)
	default:
		return toolError(fmt.Sprintf("unknown action %q", input.Action)), nil
	}
}

func (t *Tool) set(key string, raw json.RawMessage) (*agent.ToolResult, error) {
	path, err := t.keyPath(key)
	if err != nil {
		return toolError(err.Error()), nil
	}
	if len(raw) == 0 {
		return toolError("value is required"), nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return toolError(fmt.Sprintf("value is not valid JSON: %v", err)), nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.MkdirAll(t.root, 0o755); err != nil {
		return toolError(fmt.Sprintf("create memory root: %v", err)), nil
	}
	record := models.MemoryRecord{Value: value, UpdatedAt: time.Now().Unix()}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return toolError(fmt.Sprintf("encode record: %v", err)), nil
	}
	tmp := path + fmt.Sprintf(".tmp-%d", time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return toolError(fmt.Sprintf("write record: %v", err)), nil
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return toolError(fmt.Sprintf("write record: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"stored": true, "key": key})
}

func (t *Tool) get(key string) (*agent.ToolResult, error) {
	path, err := t.keyPath(key)
	if err != nil {
		return toolError(err.Error()), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	record, err := readRecord(path)
	if err != nil {
		if os.IsNotExist(err) {
			return jsonResult(map[string]interface{}{"key": key, "found": false})
		}
		return toolError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{"key": key, "found": true, "value": record.Value, "updated_at": record.UpdatedAt})
}

func (t *Tool) delete(key string) (*agent.ToolResult, error) {
	path, err := t.keyPath(key)
	if err != nil {
		return toolError(err.Error()), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return toolError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{"deleted": true, "key": key})
}

func (t *Tool) list() (*agent.ToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys, err := t.allKeys()
	if err != nil {
		return toolError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{"keys": keys, "count": len(keys)})
}

func (t *Tool) search(query string) (*agent.ToolResult, error) {
	if strings.TrimSpace(query) == "" {
		return toolError("query is required"), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	keys, err := t.allKeys()
	if err != nil {
		return toolError(err.Error()), nil
	}
	type hit struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	var matches []hit
	for _, key := range keys {
		record, err := readRecord(t.pathFor(key))
		if err != nil {
			continue
		}
		blob, _ := json.Marshal(record.Value)
		if strings.Contains(strings.ToLower(key), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(string(blob)), strings.ToLower(query)) {
			matches = append(matches, hit{Key: key, Value: record.Value})
		}
	}
	return jsonResult(map[string]interface{}{"matches": matches, "count": len(matches)})
}

func (t *Tool) allKeys() ([]string, error) {
	entries, err := os.ReadDir(t.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (t *Tool) pathFor(key string) string {
	return filepath.Join(t.root, key+".json")
}

// keyPath validates key as a safe bare filename (no traversal, no
// shell metacharacters) before joining it to the memory root.
func (t *Tool) keyPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if !security.IsValidFilename(key + ".json") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return t.pathFor(key), nil
}

func readRecord(path string) (models.MemoryRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.MemoryRecord{}, err
	}
	var record models.MemoryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.MemoryRecord{}, err
	}
	return record, nil
}

func jsonResult(v map[string]interface{}) (*agent.ToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
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
