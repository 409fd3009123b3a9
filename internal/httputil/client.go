// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the paced JSON client shared by outbound API
// calls.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 1024

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client issues GET requests paced by a token bucket. It never retries.
type Client struct {
	HTTP      *http.Client
	Limiter   *rate.Limiter
	UserAgent string
}

// NewClient builds a Client from cfg allowing rps requests per second.
// A non-positive rps disables pacing.
func NewClient(cfg types.HTTPConfig, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		Limiter:   rate.NewLimiter(limit, 1),
		UserAgent: cfg.UserAgent,
	}
}

// Get waits for a pacing token and performs a GET request. Any status other
// than 200 is returned as a *StatusError with the body drained and closed.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

// GetJSON performs Get and decodes the body into v. Numbers decode as
// json.Number so callers keep their literal spelling.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}
