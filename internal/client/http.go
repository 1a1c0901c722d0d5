// Package client provides the fetch capability shared by both data providers:
// a retrying JSON GET with exponential backoff on transient failures and a
// hard stop on permanent ones.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/metrics"
)

// ErrNotFound marks a permanent 404: the resource does not exist upstream and
// retrying will not help. Callers treat it as "no data for this item".
var ErrNotFound = errors.New("resource not found")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPClient is the shared retrying HTTP core. Fetches run one at a time; the
// politeness delay between requests is the caller's job, not the client's.
type HTTPClient struct {
	provider   string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	userAgent  string
}

// NewHTTPClient creates a retrying client for one provider. The provider name
// labels metrics and logs only.
func NewHTTPClient(provider string, timeout time.Duration, maxRetries int) *HTTPClient {
	return &HTTPClient{
		provider:   provider,
		maxRetries: maxRetries,
		retryDelay: 1 * time.Second,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetJSON fetches a URL and decodes the JSON body into out. Transient
// failures (network errors, timeouts, 429, 5xx) are retried up to the bounded
// count with exponential backoff. Permanent failures are not retried: 404
// returns ErrNotFound, other 4xx and non-JSON bodies return an error
// immediately.
func (c *HTTPClient) GetJSON(ctx context.Context, endpoint, url string, params map[string]string, out any) error {
	start := time.Now()
	err := c.getJSON(ctx, url, params, out)

	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordFetch(c.provider, endpoint, status, time.Since(start).Seconds())

	return err
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, params map[string]string, out any) error {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Info().
				Str("provider", c.provider).
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Retrying fetch after backoff")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network errors and timeouts are transient
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			contentType := resp.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				// HTML error pages and the like are permanent for this URL
				return fmt.Errorf("non-JSON response (content-type %q)", contentType)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("upstream returned retryable status %d", resp.StatusCode)
			log.Warn().
				Str("provider", c.provider).
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("attempt", attempt+1).
				Msg("Received retryable error")

		default:
			// Other client errors are permanent
			return fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, truncate(body, 200))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
