package models

import "testing"

func TestMessageText(t *testing.T) {
	m := Message{Role: RoleAssistant, Content: []Block{
		TextBlock("hello "),
		ToolUseBlock("t1", "memory", nil),
		TextBlock("world"),
	}}
	if got := m.Text(); got != "hello world" {
		t.Fatalf("Text() = %q, want %q", got, "hello world")
	}
	uses := m.ToolUses()
	if len(uses) != 1 || uses[0].ID != "t1" {
		t.Fatalf("ToolUses() = %+v", uses)
	}
}

func TestResponseText(t *testing.T) {
	r := Response{StopReason: StopEndTurn, Content: []Block{TextBlock("pineapple")}}
	if got := r.Text(); got != "pineapple" {
		t.Fatalf("Text() = %q, want %q", got, "pineapple")
	}
	if len(r.ToolUses()) != 0 {
		t.Fatalf("expected no tool uses")
	}
}
