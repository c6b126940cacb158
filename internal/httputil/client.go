// Package httputil provides the shared HTTP client for quizstake's
// off-chain service calls.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// JSON Client
// =============================================================================

// Client is a JSON-over-HTTP client with bounded retries for transient
// failures. Both the question generator and the attribution consumer sit
// behind ordinary HTTPS endpoints and share its semantics.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	authHeader string
}

// Config configures the client.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration

	// BearerToken, when set, is attached as an Authorization header.
	BearerToken string
}

// NewClient creates a JSON client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 2
	}
	backoff := cfg.Backoff
	if backoff == 0 {
		backoff = 500 * time.Millisecond
	}

	var authHeader string
	if cfg.BearerToken != "" {
		authHeader = "Bearer " + cfg.BearerToken
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    backoff,
		authHeader: authHeader,
	}
}

// PostJSON sends payload to url and decodes the response into out. A nil out
// discards the response body. Transport errors and 5xx responses are retried
// up to the configured limit; 4xx responses fail immediately.
func (c *Client) PostJSON(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		retry, err := c.post(ctx, url, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}
	return lastErr
}

// post performs one attempt. The bool result reports whether the failure is
// worth retrying.
func (c *Client) post(ctx context.Context, url string, body []byte, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}
