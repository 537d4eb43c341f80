// Package coingecko fetches the daily BTC/USD price history used for the RSI
// and log-range percentile components.
package coingecko

import (
	"context"
	"fmt"
	"time"

	"github.com/ddellaringa6/btis/internal/providers"
)

// Client talks to the CoinGecko market chart API.
type Client struct {
	baseURL string
	hc      *providers.Client
}

// New builds a CoinGecko client.
func New(baseURL string, timeout time.Duration, rps float64) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      providers.NewClient("coingecko", timeout, rps),
	}
}

type marketChart struct {
	Prices [][]float64 `json:"prices"`
}

// DailyPrices returns the daily closing prices for bitcoin over the trailing
// window, oldest first.
func (c *Client) DailyPrices(ctx context.Context, days int) ([]float64, error) {
	url := fmt.Sprintf("%s/coins/bitcoin/market_chart?vs_currency=usd&days=%d&interval=daily",
		c.baseURL, days)

	var chart marketChart
	if err := c.hc.GetJSON(ctx, url, &chart); err != nil {
		return nil, err
	}
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("coingecko: empty price series")
	}

	prices := make([]float64, 0, len(chart.Prices))
	for _, point := range chart.Prices {
		// Each point is a [timestamp_ms, price] pair.
		if len(point) < 2 {
			return nil, fmt.Errorf("coingecko: malformed price point")
		}
		prices = append(prices, point[1])
	}
	return prices, nil
}
