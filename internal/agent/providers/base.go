// Package providers implements the three wire-format adapters
// (anthropic, openai, google) behind agent.Provider, plus the shared
// retry/error-classification machinery they all use.
package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bashclaw/bashclaw/internal/backoff"
)

// requestTimeout is the per-attempt timeout (§4.2).
const requestTimeout = 120 * time.Second

// maxAttempts is the total number of POST attempts, including the first.
const maxAttempts = 3

// httpDoer is the subset of *http.Client that postWithRetry needs; tests
// substitute a stub transport to exercise the 500/503/200 retry sequence
// (§8 scenario 5) without a live network call.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// postWithRetry POSTs body to url with headers, retrying on HTTP
// 429/500/502/503 and on network errors, up to maxAttempts total. The
// delay after failed attempt n (before attempt n+1) is
// backoff.ProviderDelay(n): 2^(n-1)s plus a uniform jitter in [0,2]s. A 4xx status other than 429 is fatal and returned
// immediately without consuming further attempts.
func postWithRetry(ctx context.Context, client httpDoer, provider, model, url string, headers map[string]string, body []byte) (int, []byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := backoff.SleepWithContext(ctx, backoff.ProviderDelay(attempt-1)); err != nil {
				return 0, nil, err
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		status, respBody, err := doOnce(reqCtx, client, url, headers, body)
		cancel()
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				continue
			}
			return 0, nil, NewProviderError(provider, model, err).WithMessage(err.Error())
		}

		if !isRetryableStatus(status) {
			return status, respBody, nil
		}
		lastErr = fmt.Errorf("provider returned retryable status %d", status)
		if attempt == maxAttempts {
			return status, respBody, NewProviderError(provider, model, lastErr).WithStatus(status)
		}
	}
	return 0, nil, NewProviderError(provider, model, lastErr)
}

func doOnce(ctx context.Context, client httpDoer, url string, headers map[string]string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
