package providers

import (
	"testing"

	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/pkg/models"
)

func TestGoogleDecodeFunctionCall(t *testing.T) {
	p := NewGoogleProvider(catalog.Provider{}, "key")
	fixture := `{"candidates":[{"finishReason":"STOP","content":{"parts":[{"functionCall":{"name":"memory","args":{"action":"get","key":"x"}}}]}}]}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.StopReason != models.StopToolUse {
		t.Fatalf("StopReason = %q, want tool_use when a functionCall part is present", resp.StopReason)
	}
	uses := resp.ToolUses()
	if len(uses) != 1 || uses[0].Name != "memory" || uses[0].ID == "" {
		t.Fatalf("ToolUses() = %+v", uses)
	}
}

func TestGoogleDecodeEndTurn(t *testing.T) {
	p := NewGoogleProvider(catalog.Provider{}, "key")
	fixture := `{"candidates":[{"finishReason":"STOP","content":{"parts":[{"text":"pineapple"}]}}]}`
	resp, err := p.DecodeResponse([]byte(fixture))
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if resp.Text() != "pineapple" || resp.StopReason != models.StopEndTurn {
		t.Fatalf("resp = %+v", resp)
	}
}
