package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

const includeKey = "$include"

// Load reads path, expands $VAR environment references (§6), resolves
// $include directives, and decodes the result into a Config layered on
// top of Default(). Unknown top-level keys are ignored.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := loadRawRecursive(path, map[string]bool{})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return decodeRawConfig(raw)
}

// loadRawRecursive loads a config file, resolving $include directives with cycle detection.
func loadRawRecursive(path string, seen map[string]bool) (map[string]any, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if seen[absPath] {
		return nil, fmt.Errorf("include cycle detected at %s", absPath)
	}
	seen[absPath] = true
	defer delete(seen, absPath)

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	expanded := os.ExpandEnv(string(data))

	var raw map[string]any
	if err := json5.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", absPath, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	includes, err := extractIncludes(raw)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	if len(includes) > 0 {
		baseDir := filepath.Dir(absPath)
		for _, inc := range includes {
			if strings.TrimSpace(inc) == "" {
				continue
			}
			incPath := inc
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(baseDir, incPath)
			}
			incRaw, err := loadRawRecursive(incPath, seen)
			if err != nil {
				return nil, err
			}
			merged = mergeMaps(merged, incRaw)
		}
	}

	return mergeMaps(merged, raw), nil
}

func extractIncludes(raw map[string]any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	val, ok := raw[includeKey]
	if !ok {
		return nil, nil
	}
	delete(raw, includeKey)

	switch typed := val.(type) {
	case string:
		return []string{typed}, nil
	case []any:
		paths := make([]string, 0, len(typed))
		for _, entry := range typed {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("$include entries must be strings")
			}
			paths = append(paths, s)
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("$include must be a string or list of strings")
	}
}

func mergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for key, value := range src {
		if valueMap, ok := value.(map[string]any); ok {
			if existing, ok := dst[key].(map[string]any); ok {
				dst[key] = mergeMaps(existing, valueMap)
				continue
			}
		}
		dst[key] = value
	}
	return dst
}

// decodeRawConfig converts the raw merged map into a typed Config,
// layered on top of Default(). agents.<id> keys other than "defaults"
// are collected into AgentsConfig.ByID via a second decode pass since
// encoding/json has no native "known field plus map of the rest" mode.
func decodeRawConfig(raw map[string]any) (*Config, error) {
	cfg := Default()

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode config: %w", err)
	}

	var shape struct {
		Agents  map[string]json.RawMessage `json:"agents"`
		Session SessionConfig              `json:"session"`
	}
	if err := json.Unmarshal(payload, &shape); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if shape.Session.Scope != "" {
		cfg.Session.Scope = shape.Session.Scope
	}
	if shape.Session.MaxHistory != 0 {
		cfg.Session.MaxHistory = shape.Session.MaxHistory
	}
	cfg.Session.IdleResetMinutes = shape.Session.IdleResetMinutes

	for id, rawAgent := range shape.Agents {
		var ac AgentConfig
		if err := json.Unmarshal(rawAgent, &ac); err != nil {
			return nil, fmt.Errorf("failed to parse agents.%s: %w", id, err)
		}
		if id == "defaults" {
			cfg.Agents.Defaults = mergeAgent(cfg.Agents.Defaults, ac)
			continue
		}
		cfg.Agents.ByID[id] = ac
	}
	return cfg, nil
}
