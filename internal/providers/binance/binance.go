// Package binance fetches the latest perpetual funding rate from the Binance
// futures API. The rate is reported per 8h settlement and converted to
// percent for normalization.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ddellaringa6/btis/internal/providers"
)

// Client talks to the Binance futures REST API.
type Client struct {
	baseURL string
	hc      *providers.Client
}

// New builds a Binance futures client.
func New(baseURL string, timeout time.Duration, rps float64) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      providers.NewClient("binance", timeout, rps),
	}
}

type fundingEntry struct {
	Symbol      string `json:"symbol"`
	FundingRate string `json:"fundingRate"`
	FundingTime int64  `json:"fundingTime"`
}

// LastFundingRate returns the most recent settled funding rate for the
// symbol's USDT perpetual, as percent per 8h.
func (c *Client) LastFundingRate(ctx context.Context, symbol string) (float64, error) {
	pair := strings.ToUpper(symbol) + "USDT"
	url := fmt.Sprintf("%s/fapi/v1/fundingRate?symbol=%s&limit=1", c.baseURL, pair)

	var entries []fundingEntry
	if err := c.hc.GetJSON(ctx, url, &entries); err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, fmt.Errorf("binance: no funding data for %s", pair)
	}

	rate, err := strconv.ParseFloat(entries[0].FundingRate, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: malformed funding rate %q: %w", entries[0].FundingRate, err)
	}
	return rate * 100, nil
}
