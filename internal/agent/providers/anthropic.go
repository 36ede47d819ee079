package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/pkg/models"
)

// AnthropicProvider encodes/decodes the Anthropic Messages API wire
// format directly over net/http rather than through anthropic-sdk-go:
// §4.2 and §8 scenario 5 require exact control over the retry/timeout
// contract that the SDK's own transport layer would otherwise own.
type AnthropicProvider struct {
	provider catalog.Provider
	apiKey   string
	client   httpDoer
}

// NewAnthropicProvider builds an adapter bound to a resolved catalog
// provider record and its credential.
func NewAnthropicProvider(p catalog.Provider, apiKey string) *AnthropicProvider {
	return &AnthropicProvider{provider: p, apiKey: apiKey, client: defaultClient()}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string            `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

func (p *AnthropicProvider) EncodeRequest(req agent.CompletionRequest) ([]byte, error) {
	body := anthropicRequest{
		Model:       req.Model,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, anthropicMessage{
			Role:    string(m.Role),
			Content: blocksToAnthropic(m.Content),
		})
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, anthropicTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return json.Marshal(body)
}

func blocksToAnthropic(blocks []models.Block) []anthropicContent {
	out := make([]anthropicContent, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case models.BlockText:
			out = append(out, anthropicContent{Type: "text", Text: b.Text})
		case models.BlockToolUse:
			out = append(out, anthropicContent{Type: "tool_use", ID: b.ID, Name: b.Name, Input: b.Input})
		case models.BlockToolResult:
			out = append(out, anthropicContent{Type: "tool_result", ToolUseID: b.ToolUseID, Content: b.Content, IsError: b.IsError})
		case models.BlockImage:
			out = append(out, anthropicContent{Type: "image"})
		}
	}
	return out
}

type anthropicResponse struct {
	StopReason string             `json:"stop_reason"`
	Content    []anthropicContent `json:"content"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *AnthropicProvider) DecodeResponse(body []byte) (*models.Response, error) {
	var wire anthropicResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("anthropic: decoding response: %w", err)
	}
	if wire.Error != nil {
		return nil, NewProviderError(p.Name(), "", fmt.Errorf("%s: %s", wire.Error.Type, wire.Error.Message)).WithCode(wire.Error.Type)
	}

	resp := &models.Response{
		Usage: models.Usage{InputTokens: wire.Usage.InputTokens, OutputTokens: wire.Usage.OutputTokens},
	}
	switch wire.StopReason {
	case "end_turn", "stop_sequence":
		resp.StopReason = models.StopEndTurn
	case "tool_use":
		resp.StopReason = models.StopToolUse
	case "max_tokens":
		resp.StopReason = models.StopMaxTokens
	default:
		resp.StopReason = models.StopEndTurn
	}
	for _, c := range wire.Content {
		switch c.Type {
		case "text":
			resp.Content = append(resp.Content, models.TextBlock(stripThinkTags(c.Text)))
		case "tool_use":
			resp.Content = append(resp.Content, models.ToolUseBlock(c.ID, c.Name, c.Input))
		}
	}
	return resp, nil
}

func (p *AnthropicProvider) Complete(ctx context.Context, req agent.CompletionRequest) (*models.Response, error) {
	wireBody, err := p.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"content-type":      "application/json",
		"x-api-key":         p.apiKey,
		"anthropic-version": p.provider.APIVersion,
	}
	status, respBody, err := postWithRetry(ctx, p.client, p.Name(), req.Model, p.provider.BaseURL+"/v1/messages", headers, wireBody)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, NewProviderError(p.Name(), req.Model, fmt.Errorf("http %d: %s", status, respBody)).WithStatus(status)
	}
	return p.DecodeResponse(respBody)
}
