package message

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMessageToolSendsThroughRegisteredSender(t *testing.T) {
	var gotTarget, gotText string
	senders := map[string]Sender{
		"web": SenderFunc(func(ctx context.Context, target, text string) (string, error) {
			gotTarget, gotText = target, text
			return "d-1", nil
		}),
	}
	tool := NewTool("message", senders)

	params, _ := json.Marshal(map[string]interface{}{"channel": "web", "target": "alice", "text": "hi"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if gotTarget != "alice" || gotText != "hi" {
		t.Fatalf("sender got (%q, %q)", gotTarget, gotText)
	}
	if !strings.Contains(result.Content, "d-1") {
		t.Fatalf("expected delivery id in result: %s", result.Content)
	}
}

func TestMessageToolUnknownChannel(t *testing.T) {
	tool := NewTool("message", nil)
	params, _ := json.Marshal(map[string]interface{}{"channel": "telegram", "target": "x", "text": "hi"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "unknown channel") {
		t.Fatalf("expected unknown channel error, got %s", result.Content)
	}
}

func TestMessageToolSenderError(t *testing.T) {
	senders := map[string]Sender{
		"web": SenderFunc(func(ctx context.Context, target, text string) (string, error) {
			return "", errors.New("boom")
		}),
	}
	tool := NewTool("message", senders)
	params, _ := json.Marshal(map[string]interface{}{"channel": "web", "target": "x", "text": "hi"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected sender error to surface")
	}
}

func TestMessageToolMissingFields(t *testing.T) {
	tool := NewTool("message", nil)
	params, _ := json.Marshal(map[string]interface{}{"channel": "web"})
	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected missing target/text to error")
	}
}
