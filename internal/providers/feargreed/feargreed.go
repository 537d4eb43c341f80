// Package feargreed fetches the Alternative.me crypto Fear & Greed index,
// already expressed on the 0-100 scale.
package feargreed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ddellaringa6/btis/internal/providers"
)

// Client talks to the Alternative.me FNG API.
type Client struct {
	baseURL string
	hc      *providers.Client
}

// New builds a Fear & Greed client.
func New(baseURL string, timeout time.Duration, rps float64) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      providers.NewClient("feargreed", timeout, rps),
	}
}

type fngResponse struct {
	Data []struct {
		Value string `json:"value"`
	} `json:"data"`
}

// Index returns the latest Fear & Greed reading. The API reports the value
// as a string.
func (c *Client) Index(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/fng/?limit=1", c.baseURL)

	var resp fngResponse
	if err := c.hc.GetJSON(ctx, url, &resp); err != nil {
		return 0, err
	}
	if len(resp.Data) == 0 {
		return 0, fmt.Errorf("feargreed: empty response")
	}

	value, err := strconv.ParseFloat(resp.Data[0].Value, 64)
	if err != nil {
		return 0, fmt.Errorf("feargreed: malformed value %q: %w", resp.Data[0].Value, err)
	}
	return value, nil
}
