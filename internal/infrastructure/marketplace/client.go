// Package marketplace implements the source adapters that pull orders from
// Shopee, Lazada and TikTok Shop and normalize them into order records.
package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ordersync/backend/internal/domain/sync"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024 // 10MB max response
	// maxBackoffDelay caps the exponential retry delay
	maxBackoffDelay = 30 * time.Second
	// maxFetchPages bounds one update window; a source claiming more
	// pages than this is not making progress
	maxFetchPages = 1000
)

// apiClient is the shared HTTP transport for all marketplace adapters.
// Transient failures (transport errors and 5xx responses) are retried with
// exponential backoff; client errors are returned immediately.
type apiClient struct {
	http      *http.Client
	retries   int
	baseDelay time.Duration
	userAgent string
}

func newAPIClient(timeout time.Duration, retries int, baseDelay time.Duration, userAgent string) *apiClient {
	if retries < 1 {
		retries = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &apiClient{
		http:      &http.Client{Timeout: timeout},
		retries:   retries,
		baseDelay: baseDelay,
		userAgent: userAgent,
	}
}

func (c *apiClient) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, header, nil)
}

func (c *apiClient) postJSON(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")
	return c.do(ctx, http.MethodPost, url, header, body)
}

func (c *apiClient) do(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", sync.ErrSourceRequestFailed, err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", sync.ErrSourceUnavailable, err)
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", sync.ErrSourceUnavailable, readErr)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: HTTP %d", sync.ErrSourceAuthFailed, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: HTTP %d", sync.ErrSourceRateLimited, resp.StatusCode)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: HTTP %d", sync.ErrSourceUnavailable, resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("%w: HTTP %d", sync.ErrSourceRequestFailed, resp.StatusCode)
		}

		return respBody, nil
	}

	return nil, lastErr
}

// backoff returns the delay before retry n: baseDelay * 2^(n-1), capped.
func (c *apiClient) backoff(n int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < n; i++ {
		delay *= 2
		if delay >= maxBackoffDelay {
			return maxBackoffDelay
		}
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
