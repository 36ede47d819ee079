package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bashclaw/bashclaw/internal/agent"
	"github.com/bashclaw/bashclaw/internal/catalog"
	"github.com/bashclaw/bashclaw/pkg/models"
)

// GoogleProvider encodes/decodes the Gemini generateContent wire format
// directly, for the same reason the other two adapters bypass their SDKs.
type GoogleProvider struct {
	provider catalog.Provider
	apiKey   string
	client   httpDoer
}

func NewGoogleProvider(p catalog.Provider, apiKey string) *GoogleProvider {
	return &GoogleProvider{provider: p, apiKey: apiKey, client: defaultClient()}
}

func (p *GoogleProvider) Name() string { return "google" }

type googleRequest struct {
	SystemInstruction *googleContent  `json:"systemInstruction,omitempty"`
	Contents          []googleContent `json:"contents"`
	Tools             []googleTool    `json:"tools,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature,omitempty"`
	} `json:"generationConfig,omitempty"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googlePart struct {
	Text             string          `json:"text,omitempty"`
	FunctionCall     *googleFuncCall `json:"functionCall,omitempty"`
	FunctionResponse *googleFuncResp `json:"functionResponse,omitempty"`
}

type googleFuncCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type googleFuncResp struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type googleTool struct {
	FunctionDeclarations []googleFuncDecl `json:"functionDeclarations"`
}

type googleFuncDecl struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// synthID gives Google's unlabeled functionCall a stable, turn-unique
// tool_use id, since Gemini does not assign one on the wire (§4.2).
func synthID(name string, idx int) string {
	return fmt.Sprintf("g_%s_%d", name, idx)
}

func (p *GoogleProvider) EncodeRequest(req agent.CompletionRequest) ([]byte, error) {
	body := googleRequest{}
	if req.System != "" {
		body.SystemInstruction = &googleContent{Parts: []googlePart{{Text: req.System}}}
	}
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens
	body.GenerationConfig.Temperature = req.Temperature

	for _, m := range req.Messages {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		var parts []googlePart
		for _, b := range m.Content {
			switch b.Type {
			case models.BlockText:
				parts = append(parts, googlePart{Text: b.Text})
			case models.BlockToolUse:
				parts = append(parts, googlePart{FunctionCall: &googleFuncCall{Name: b.Name, Args: b.Input}})
			case models.BlockToolResult:
				var resp map[string]any
				_ = json.Unmarshal([]byte(fmt.Sprintf(`{"result":%q}`, b.Content)), &resp)
				parts = append(parts, googlePart{FunctionResponse: &googleFuncResp{Name: b.ToolUseID, Response: resp}})
			}
		}
		body.Contents = append(body.Contents, googleContent{Role: role, Parts: parts})
	}

	if len(req.Tools) > 0 {
		decls := make([]googleFuncDecl, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, googleFuncDecl{Name: t.Name, Description: t.Description, Parameters: t.InputSchema})
		}
		body.Tools = []googleTool{{FunctionDeclarations: decls}}
	}
	return json.Marshal(body)
}

type googleResponse struct {
	Candidates []struct {
		FinishReason string        `json:"finishReason"`
		Content      googleContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *GoogleProvider) DecodeResponse(body []byte) (*models.Response, error) {
	var wire googleResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("google: decoding response: %w", err)
	}
	if wire.Error != nil {
		return nil, NewProviderError(p.Name(), "", fmt.Errorf("%s", wire.Error.Message)).WithStatus(wire.Error.Code)
	}
	if len(wire.Candidates) == 0 {
		return nil, fmt.Errorf("google: no candidates in response")
	}
	candidate := wire.Candidates[0]

	resp := &models.Response{
		Usage: models.Usage{InputTokens: wire.UsageMetadata.PromptTokenCount, OutputTokens: wire.UsageMetadata.CandidatesTokenCount},
	}

	hasFunctionCall := false
	funcIdx := 0
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			resp.Content = append(resp.Content, models.TextBlock(stripThinkTags(part.Text)))
		}
		if part.FunctionCall != nil {
			hasFunctionCall = true
			resp.Content = append(resp.Content, models.ToolUseBlock(synthID(part.FunctionCall.Name, funcIdx), part.FunctionCall.Name, part.FunctionCall.Args))
			funcIdx++
		}
	}

	switch {
	case hasFunctionCall:
		resp.StopReason = models.StopToolUse
	case candidate.FinishReason == "MAX_TOKENS":
		resp.StopReason = models.StopMaxTokens
	case candidate.FinishReason == "STOP", candidate.FinishReason == "":
		resp.StopReason = models.StopEndTurn
	default:
		resp.StopReason = models.StopEndTurn
	}
	return resp, nil
}

func (p *GoogleProvider) Complete(ctx context.Context, req agent.CompletionRequest) (*models.Response, error) {
	wireBody, err := p.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"content-type": "application/json"}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.provider.BaseURL, req.Model, p.apiKey)
	status, respBody, err := postWithRetry(ctx, p.client, p.Name(), req.Model, url, headers, wireBody)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, NewProviderError(p.Name(), req.Model, fmt.Errorf("http %d: %s", status, respBody)).WithStatus(status)
	}
	return p.DecodeResponse(respBody)
}
