package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, outputPath string) *Server {
	t.Helper()
	return NewServer("127.0.0.1:0", outputPath, NewMetricsRegistry())
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, "/nonexistent")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestScore_NotYetWritten(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "missing.json"))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/btis", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScore_ServesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "btis.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"score": 52.7}`), 0o644))

	server := newTestServer(t, path)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/btis", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"score": 52.7}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := NewMetricsRegistry()
	metrics.LatestScore.Set(52.7)
	server := NewServer("127.0.0.1:0", "/nonexistent", metrics)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "btis_score 52.7")
}

func TestStatus_Summary(t *testing.T) {
	metrics := NewMetricsRegistry()
	metrics.LatestScore.Set(61.5)
	metrics.ComponentsPresent.Set(4)
	metrics.RunsTotal.WithLabelValues("ok").Inc()
	metrics.RunsTotal.WithLabelValues("no_data").Inc()
	server := NewServer("127.0.0.1:0", "/nonexistent", metrics)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var summary map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 61.5, summary["btis_score"])
	assert.Equal(t, 4.0, summary["btis_components_present"])
	assert.Equal(t, 2.0, summary["btis_runs_total"])
}
