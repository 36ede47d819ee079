package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/pkg/models"
)

// OpenAIProvider encodes/decodes the OpenAI chat-completions wire format
// directly, for the same reason AnthropicProvider bypasses its SDK.
type OpenAIProvider struct {
	provider catalog.Provider
	apiKey   string
	client   httpDoer
}

func NewOpenAIProvider(p catalog.Provider, apiKey string) *OpenAIProvider {
	return &OpenAIProvider{provider: p, apiKey: apiKey, client: defaultClient()}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	Tools       []openaiTool    `json:"tools,omitempty"`
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openaiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openaiTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

func (p *OpenAIProvider) EncodeRequest(req agent.CompletionRequest) ([]byte, error) {
	body := openaiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openaiMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, blocksToOpenAI(string(m.Role), m.Content)...)
	}
	for _, t := range req.Tools {
		tool := openaiTool{Type: "function"}
		tool.Function.Name = t.Name
		tool.Function.Description = t.Description
		tool.Function.Parameters = t.InputSchema
		body.Tools = append(body.Tools, tool)
	}
	return json.Marshal(body)
}

// blocksToOpenAI can expand a single normalized message into several
// wire messages: OpenAI represents each tool_result as its own
// role:"tool" message rather than as content within one user turn.
func blocksToOpenAI(role string, blocks []models.Block) []openaiMessage {
	var out []openaiMessage
	var text string
	var calls []openaiToolCall
	for _, b := range blocks {
		switch b.Type {
		case models.BlockText:
			text += b.Text
		case models.BlockToolUse:
			call := openaiToolCall{ID: b.ID, Type: "function"}
			call.Function.Name = b.Name
			call.Function.Arguments = string(b.Input)
			calls = append(calls, call)
		case models.BlockToolResult:
			out = append(out, openaiMessage{Role: "tool", Content: b.Content, ToolCallID: b.ToolUseID})
		}
	}
	if text != "" || len(calls) > 0 {
		wireRole := role
		if wireRole == string(models.RoleUser) {
			wireRole = "user"
		} else {
			wireRole = "assistant"
		}
		msg := openaiMessage{Role: wireRole, ToolCalls: calls}
		if text != "" {
			msg.Content = text
		}
		out = append([]openaiMessage{msg}, out...)
	}
	return out
}

type openaiResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content   *string          `json:"content"`
			ToolCalls []openaiToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) DecodeResponse(body []byte) (*models.Response, error) {
	var wire openaiResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("openai: decoding response: %w", err)
	}
	if wire.Error != nil {
		return nil, NewProviderError(p.Name(), "", fmt.Errorf("%s: %s", wire.Error.Type, wire.Error.Message)).WithCode(wire.Error.Type)
	}
	if len(wire.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}
	choice := wire.Choices[0]

	resp := &models.Response{
		Usage: models.Usage{InputTokens: wire.Usage.PromptTokens, OutputTokens: wire.Usage.CompletionTokens},
	}
	switch choice.FinishReason {
	case "stop":
		resp.StopReason = models.StopEndTurn
	case "tool_calls":
		resp.StopReason = models.StopToolUse
	case "length":
		resp.StopReason = models.StopMaxTokens
	default:
		resp.StopReason = models.StopEndTurn
	}
	if choice.Message.Content != nil && *choice.Message.Content != "" {
		resp.Content = append(resp.Content, models.TextBlock(stripThinkTags(*choice.Message.Content)))
	}
	for _, tc := range choice.Message.ToolCalls {
		var args json.RawMessage
		if tc.Function.Arguments != "" {
			args = json.RawMessage(tc.Function.Arguments)
		}
		resp.Content = append(resp.Content, models.ToolUseBlock(tc.ID, tc.Function.Name, args))
	}
	return resp, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req agent.CompletionRequest) (*models.Response, error) {
	wireBody, err := p.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"content-type":  "application/json",
		"authorization": "Bearer " + p.apiKey,
	}
	status, respBody, err := postWithRetry(ctx, p.client, p.Name(), req.Model, p.provider.BaseURL+"/chat/completions", headers, wireBody)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, NewProviderError(p.Name(), req.Model, fmt.Errorf("http %d: %s", status, respBody)).WithStatus(status)
	}
	return p.DecodeResponse(respBody)
}
