// Package providers holds the guarded HTTP client shared by the upstream
// metric sources. Every provider call is rate limited and wrapped in a
// circuit breaker; a tripped breaker surfaces as a fetch failure for that
// metric only.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "btis/1.0 (+https://github.com/ddellaringa6/btis)"

// maxErrorBody bounds how much of an upstream error payload gets copied into
// the wrapped error.
const maxErrorBody = 256

// Client wraps http.Client with a token-bucket rate limiter and a circuit
// breaker, one instance per upstream venue.
type Client struct {
	name      string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	userAgent string
}

// NewClient builds a guarded client for one venue. rps bounds the request
// rate; the breaker opens after three consecutive failures and probes again
// after a minute.
func NewClient(name string, timeout time.Duration, rps float64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if rps <= 0 {
		rps = 1.0
	}

	settings := gobreaker.Settings{Name: name}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}

	return &Client{
		name:      name,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		userAgent: defaultUserAgent,
	}
}

// Name returns the venue name the client was built for.
func (c *Client) Name() string { return c.name }

// GetJSON fetches url and decodes the response body into v. Non-2xx status,
// transport errors, and malformed payloads all count as fetch failures.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", c.name, err)
	}

	body, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", c.name, err)
	}

	if err := json.Unmarshal(body.([]byte), v); err != nil {
		return fmt.Errorf("%s: malformed response: %w", c.name, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
