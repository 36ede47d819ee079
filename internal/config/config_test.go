package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExpandsEnvAndMergesAgent(t *testing.T) {
	t.Setenv("TEST_BASHCLAW_MODEL", "claude-sonnet-4-6")

	dir := t.TempDir()
	path := filepath.Join(dir, "bashclaw.json5")
	body := `{
  // comments and trailing commas are fine, it's json5
  agents: {
    defaults: { model: "$TEST_BASHCLAW_MODEL", maxTokens: 2048, profile: "minimal" },
    ops: { profile: "full", toolAllow: ["shell"] },
  },
  session: { scope: "per-channel", maxHistory: 50 },
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Scope != ScopePerChannel || cfg.Session.MaxHistory != 50 {
		t.Fatalf("session config = %+v", cfg.Session)
	}

	ops := cfg.Resolve("ops")
	if ops.Model != "claude-sonnet-4-6" {
		t.Fatalf("expanded model = %q", ops.Model)
	}
	if ops.MaxTokens != 2048 {
		t.Fatalf("inherited maxTokens = %d, want 2048", ops.MaxTokens)
	}
	if ops.Profile != "full" {
		t.Fatalf("override profile = %q, want full", ops.Profile)
	}
}

func TestResolveUnknownAgentFallsBackToMain(t *testing.T) {
	cfg := Default()
	cfg.Agents.ByID["main"] = AgentConfig{Model: "gpt-5"}
	resolved := cfg.Resolve("does-not-exist")
	if resolved.Model != "gpt-5" {
		t.Fatalf("Resolve fallback = %+v", resolved)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Agents.Defaults.Engine != "builtin" {
		t.Fatalf("Default() not returned for empty path: %+v", cfg)
	}
}
