package feargreed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fng/", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"name": "Fear and Greed Index", "data": [{"value": "61", "value_classification": "Greed"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	value, err := client.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 61.0, value)
}

func TestIndex_EmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.Index(context.Background())
	assert.Error(t, err)
}

func TestIndex_MalformedValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"value": "not-a-number"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, 100)
	_, err := client.Index(context.Background())
	assert.Error(t, err)
}
