package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastFundingRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/fundingRate", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"symbol": "BTCUSDT", "fundingRate": "0.00050000", "fundingTime": 1700000000000}]`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	rate, err := client.LastFundingRate(context.Background(), "btc")
	require.NoError(t, err)

	// 0.0005 fraction per 8h becomes 0.05 percent per 8h.
	assert.InDelta(t, 0.05, rate, 1e-9)
}

func TestLastFundingRate_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.LastFundingRate(context.Background(), "BTC")
	assert.Error(t, err)
}

func TestLastFundingRate_MalformedRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol": "BTCUSDT", "fundingRate": "??", "fundingTime": 1}]`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.LastFundingRate(context.Background(), "BTC")
	assert.Error(t, err)
}
