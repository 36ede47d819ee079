package providers

import (
	"testing"

	"github.com/bashclaw/bashclaw/pkg/models"
)

func TestOpenAIDecodeToolCallsNormalization(t *testing.T) {
	p := NewOpenAIProvider(catalogProviderStub(), "key")
	fixture := `{"choices":[{"finish_reason":"tool_calls","message":{"content":null,"tool_calls":[{"id":"c1","type":"function","function":{"name":"memory","arguments":"{\"action\":\"list\"}"}}]}}]}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.StopReason != models.StopToolUse {
		t.Fatalf("StopReason = %q, want tool_use", resp.StopReason)
	}
	uses := resp.ToolUses()
	if len(uses) != 1 || uses[0].ID != "c1" || uses[0].Name != "memory" {
		t.Fatalf("ToolUses() = %+v", uses)
	}
	if string(uses[0].Input) != `{"action":"list"}` {
		t.Fatalf("Input = %s", uses[0].Input)
	}
}

func TestOpenAIDecodeEndTurn(t *testing.T) {
	p := NewOpenAIProvider(catalogProviderStub(), "key")
	fixture := `{"choices":[{"finish_reason":"stop","message":{"content":"pineapple"}}]}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Text() != "pineapple" || resp.StopReason != models.StopEndTurn {
		t.Fatalf("resp = %+v", resp)
	}
}
