package providers

import (
	"encoding/json"
	"testing"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/pkg/models"
)

func TestAnthropicRoundTripText(t *testing.T) {
	p := NewAnthropicProvider(catalog.Provider{APIVersion: "2023-06-01"}, "key")
	req := agent.CompletionRequest{
		Model:    "claude-sonnet-4-6",
		Messages: []models.Message{{Role: models.RoleUser, Content: []models.Block{models.TextBlock("say pineapple")}}},
	}
	wire, err := p.EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	fixture := `{"stop_reason":"end_turn","content":[{"type":"text","text":"pineapple"}],"usage":{"input_tokens":5,"output_tokens":1}}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Text() != "pineapple" {
		t.Fatalf("Text() = %q", resp.Text())
	}
	if resp.StopReason != models.StopEndTurn {
		t.Fatalf("StopReason = %q", resp.StopReason)
	}

	var decoded map[string]any
	if err := json.Unmarshal(wire, &decoded); err != nil {
		t.Fatalf("wire body is not valid JSON: %v", err)
	}
}

func TestAnthropicDecodeToolUse(t *testing.T) {
	p := NewAnthropicProvider(catalog.Provider{}, "key")
	fixture := `{"stop_reason":"tool_use","content":[{"type":"tool_use","id":"t1","name":"memory","input":{"action":"set","key":"x","value":"42"}}]}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.StopReason != models.StopToolUse {
		t.Fatalf("StopReason = %q, want tool_use", resp.StopReason)
	}
	uses := resp.ToolUses()
	if len(uses) != 1 || uses[0].ID != "t1" || uses[0].Name != "memory" {
		t.Fatalf("ToolUses() = %+v", uses)
	}
}

func TestAnthropicStripsThinkTags(t *testing.T) {
	p := NewAnthropicProvider(catalog.Provider{}, "key")
	fixture := `{"stop_reason":"end_turn","content":[{"type":"text","text":"<think>reasoning</think>final answer"}]}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Text() != "final answer" {
		t.Fatalf("Text() = %q, want think tags stripped", resp.Text())
	}
}
