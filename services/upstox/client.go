// Package upstox talks to the Upstox REST API: historical EOD candles for
// NSE equities and the OAuth token refresh flow.
package upstox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the v3 API root for market data.
	DefaultBaseURL = "https://api.upstox.com/v3"
	// DefaultAuthURL is the v2 root, which still hosts the login endpoints.
	DefaultAuthURL = "https://api.upstox.com/v2"

	maxAttempts = 3
	retryDelay  = time.Second
)

// Client is a thin bearer-token HTTP client. The zero value is not usable;
// build one with NewClient.
type Client struct {
	baseURL string
	authURL string
	token   string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the market-data API root.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithAuthURL overrides the login API root.
func WithAuthURL(u string) Option { return func(c *Client) { c.authURL = u } }

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func NewClient(accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		authURL: DefaultAuthURL,
		token:   accessToken,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches url with the bearer token, retrying transient failures
// a few times before giving up. Non-200 responses surface with a snippet
// of the body for diagnosis.
func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("http %d: %s", resp.StatusCode, snippet(body))
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("GET %s failed after %d attempts: %w", url, maxAttempts, lastErr)
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}
