// Package message implements the message tool: outbound delivery
// through pluggable per-channel senders.
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bashclaw/bashclaw/internal/agent"
)

// Sender delivers text to a target within one channel and returns a
// delivery id.
type Sender interface {
	Send(ctx context.Context, target, text string) (deliveryID string, err error)
}

// SenderFunc adapts a function to a Sender.
type SenderFunc func(ctx context.Context, target, text string) (string, error)

// Send calls the underlying function.
func (f SenderFunc) Send(ctx context.Context, target, text string) (string, error) {
	return f(ctx, target, text)
}

// Tool sends outbound messages through registered channel senders.
type Tool struct {
	name    string
	senders map[string]Sender
}

// NewTool creates a message tool with a custom name ("message" or "send_message").
func NewTool(name string, senders map[string]Sender) *Tool {
	if strings.TrimSpace(name) == "" {
		name = "message"
	}
	if senders == nil {
		senders = map[string]Sender{}
	}
	return &Tool{name: name, senders: senders}
}

func (t *Tool) Name() string { return t.name }

func (t *Tool) Description() string {
	return "Send a message to a channel/target using a registered channel sender."
}

func (t *Tool) Schema() json.RawMessage {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"channel": map[string]interface{}{
				"type":        "string",
				"description": "Registered channel name (e.g. telegram, slack, web).",
			},
			"target": map[string]interface{}{
				"type":        "string",
				"description": "Recipient id within the channel.",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Message text to send.",
			},
		},
		"required": []string{"channel", "target", "text"},
	}
	payload, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return payload
}

// Optional reports that message is gated by profile/tool_allow.
func (t *Tool) Optional() bool { return true }

// BridgeExposed reports that message is safe to expose over MCP.
func (t *Tool) BridgeExposed() bool { return true }

func (t *Tool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Channel string `json:"channel"`
		Target  string `json:"target"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return toolError(fmt.Sprintf("Invalid parameters: %v", err)), nil
	}

	channel := strings.ToLower(strings.TrimSpace(input.Channel))
	if channel == "" {
		return toolError("channel is required"), nil
	}
	target := strings.TrimSpace(input.Target)
	if target == "" {
		return toolError("target is required"), nil
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return toolError("text is required"), nil
	}

	sender, ok := t.senders[channel]
	if !ok {
		return toolError(fmt.Sprintf("unknown channel %q", channel)), nil
	}

	deliveryID, err := sender.Send(ctx, target, text)
	if err != nil {
		return toolError(fmt.Sprintf("send message: %v", err)), nil
	}
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	payload, err := json.MarshalIndent(map[string]interface{}{
		"delivery_id": deliveryID,
		"channel":     channel,
		"target":      target,
	}, "", "  ")
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
