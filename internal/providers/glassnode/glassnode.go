// Package glassnode fetches the MVRV Z-Score, the one credential-gated
// metric. Without an API key the provider is never constructed and the
// metric is omitted from the run.
package glassnode

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ddellaringa6/btis/internal/providers"
)

// Client talks to the Glassnode metrics API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *providers.Client
}

// New builds a Glassnode client. apiKey must be non-empty; the gate lives in
// the caller.
func New(baseURL, apiKey string, timeout time.Duration, rps float64) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("glassnode: api key is required")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      providers.NewClient("glassnode", timeout, rps),
	}, nil
}

type zScorePoint struct {
	Timestamp int64    `json:"t"`
	Value     *float64 `json:"v"`
}

// MVRVZScore returns the latest non-null MVRV Z-Score for the asset.
func (c *Client) MVRVZScore(ctx context.Context, asset string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v1/metrics/market/mvrv_z_score?api_key=%s&a=%s&i=1d",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(strings.ToUpper(asset)))

	var points []zScorePoint
	if err := c.hc.GetJSON(ctx, endpoint, &points); err != nil {
		return 0, err
	}

	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Value != nil {
			return *points[i].Value, nil
		}
	}
	return 0, fmt.Errorf("glassnode: no non-null z-score values")
}
