package providers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/bashclaw/bashclaw/internal/catalog"
)

func catalogProviderStub() catalog.Provider {
	return catalog.Provider{ID: "openai", APIFormat: catalog.FormatOpenAI, BaseURL: "https://api.openai.com/v1"}
}

// stubTransport returns a canned sequence of (status, body) responses,
// one per call, for exercising postWithRetry without a live network
// call (§8 scenario 5).
type stubTransport struct {
	responses []stubResponse
	calls     int
}

type stubResponse struct {
	status int
	body   string
	err    error
}

func (s *stubTransport) Do(req *http.Request) (*http.Response, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	r := s.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(r.body))),
	}, nil
}
