package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/internal/config"
	"github.com/bashclaw/bashclaw/internal/session"
	"github.com/bashclaw/bashclaw/internal/tools/policy"
	"github.com/bashclaw/bashclaw/pkg/models"
)

type scriptedProvider struct {
	responses []*models.Response
	calls     int
}

func (p *scriptedProvider) Name() string { return "scripted" }
func (p *scriptedProvider) EncodeRequest(req CompletionRequest) ([]byte, error) {
	return json.Marshal(req)
}
func (p *scriptedProvider) DecodeResponse(body []byte) (*models.Response, error) { return nil, nil }
func (p *scriptedProvider) Complete(ctx context.Context, req CompletionRequest) (*models.Response, error) {
	r := p.responses[p.calls]
	p.calls++
	return r, nil
}

type recordingTool struct {
	gotInput json.RawMessage
}

func (t *recordingTool) Name() string               { return "memory" }
func (t *recordingTool) Description() string        { return "memory" }
func (t *recordingTool) Schema() json.RawMessage     { return nil }
func (t *recordingTool) Optional() bool              { return false }
func (t *recordingTool) BridgeExposed() bool         { return false }
func (t *recordingTool) Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error) {
	t.gotInput = input
	return &ToolResult{Content: `{"stored":true}`}, nil
}

// TestRunSingleToolCallThenEndTurn exercises spec §8 scenario 2: one
// tool_use turn followed by an end_turn turn, and checks the resulting
// session sequence.
func TestRunSingleToolCallThenEndTurn(t *testing.T) {
	provider := &scriptedProvider{responses: []*models.Response{
		{
			StopReason: models.StopToolUse,
			Content: []models.Block{
				models.ToolUseBlock("t1", "memory", json.RawMessage(`{"action":"set","key":"x","value":"42"}`)),
			},
		},
		{
			StopReason: models.StopEndTurn,
			Content:    []models.Block{models.TextBlock("stored")},
		},
	}}

	registry := NewRegistry(nil)
	tool := &recordingTool{}
	_ = registry.Register(tool)

	cfg := config.Default()
	cfg.Agents.Defaults.Model = "claude-sonnet-4-6"

	rt := &Runtime{
		Catalog:  catalog.New(),
		Sessions: session.New(t.TempDir(), nil),
		Config:   cfg,
		Registry: registry,
		Resolver: policy.NewResolver(),
		Providers: func(p catalog.Provider, apiKey string) Provider {
			return provider
		},
		LookupEnv: func(string) string { return "" },
	}

	text, err := rt.Run(context.Background(), "main", "go", "web", "alice")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if text != "stored" {
		t.Fatalf("final text = %q, want %q", text, "stored")
	}
	if tool.gotInput == nil {
		t.Fatal("expected memory tool to be invoked")
	}

	path := session.Path(rt.Sessions.Root(), "main", "web", "alice", cfg.Session.Scope)
	entries, err := rt.Sessions.Load(path, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantTypes := []models.EntryType{
		models.EntryUser, models.EntryAssistant, models.EntryToolCall, models.EntryToolResult, models.EntryAssistant,
	}
	if len(entries) != len(wantTypes) {
		t.Fatalf("entries = %+v, want %d entries", entries, len(wantTypes))
	}
	for i, want := range wantTypes {
		if entries[i].Type != want {
			t.Fatalf("entries[%d].Type = %q, want %q", i, entries[i].Type, want)
		}
	}
}

// TestRunToolLoopBudgetExhausted exercises the MAX_ITERS exhaustion path.
func TestRunToolLoopBudgetExhausted(t *testing.T) {
	toolUseResp := &models.Response{
		StopReason: models.StopToolUse,
		Content:    []models.Block{models.ToolUseBlock("t1", "memory", json.RawMessage(`{"action":"get","key":"x"}`))},
	}
	responses := make([]*models.Response, 0, DefaultMaxIters+1)
	for i := 0; i <= DefaultMaxIters; i++ {
		responses = append(responses, toolUseResp)
	}
	provider := &scriptedProvider{responses: responses}

	registry := NewRegistry(nil)
	_ = registry.Register(&recordingTool{})

	cfg := config.Default()
	cfg.Agents.Defaults.Model = "claude-sonnet-4-6"

	rt := &Runtime{
		Catalog:   catalog.New(),
		Sessions:  session.New(t.TempDir(), nil),
		Config:    cfg,
		Registry:  registry,
		Resolver:  policy.NewResolver(),
		Providers: func(p catalog.Provider, apiKey string) Provider { return provider },
		LookupEnv: func(string) string { return "" },
	}

	text, err := rt.Run(context.Background(), "main", "go", "web", "bob")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if text != "tool-loop budget exhausted" {
		t.Fatalf("text = %q, want budget-exhausted message", text)
	}
}
