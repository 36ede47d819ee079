package agent

import (
	"context"

	"github.com/bashclaw/bashclaw/pkg/models"
)

// CompletionRequest is the normalized-in shape passed to a Provider's
// Complete method: everything encode_request needs.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []models.Message
	MaxTokens   int
	Temperature float64
	Tools       []ToolSpec
}

// Provider is one of the three wire-format adapters (§4.2). Complete
// performs encode_request, POST-with-retry, and decode_response as one
// call; EncodeRequest/DecodeResponse are exposed separately so adapters
// and their tests can exercise the wire mapping without a live network
// call, matching §8's round-trip law.
type Provider interface {
	Name() string

	EncodeRequest(req CompletionRequest) ([]byte, error)
	DecodeResponse(body []byte) (*models.Response, error)

	Complete(ctx context.Context, req CompletionRequest) (*models.Response, error)
}
