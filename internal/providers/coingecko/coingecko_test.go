package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "365", r.URL.Query().Get("days"))
		w.Write([]byte(`{"prices": [[1700000000000, 35000.5], [1700086400000, 36250.0], [1700172800000, 35900.25]]}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	prices, err := client.DailyPrices(context.Background(), 365)
	require.NoError(t, err)

	assert.Equal(t, []float64{35000.5, 36250.0, 35900.25}, prices)
}

func TestDailyPrices_EmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices": []}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.DailyPrices(context.Background(), 365)
	assert.Error(t, err)
}

func TestDailyPrices_MalformedPoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices": [[1700000000000]]}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.DailyPrices(context.Background(), 365)
	assert.Error(t, err)
}

func TestDailyPrices_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "upstream down"}`, http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.DailyPrices(context.Background(), 365)
	assert.Error(t, err)
}
