package http

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// MetricsRegistry holds the Prometheus metrics for BTIS runs.
type MetricsRegistry struct {
	// Per-provider fetch instrumentation
	FetchDuration *prometheus.HistogramVec
	FetchFailures *prometheus.CounterVec

	// Run outcomes
	RunsTotal         *prometheus.CounterVec
	ComponentsPresent prometheus.Gauge
	LatestScore       prometheus.Gauge

	registry *prometheus.Registry
}

var (
	globalMetrics *MetricsRegistry
	metricsOnce   sync.Once
)

// NewMetricsRegistry creates the registry with all BTIS metrics registered.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "btis_fetch_duration_seconds",
				Help:    "Duration of each upstream metric fetch in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"metric", "result"},
		),
		FetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btis_fetch_failures_total",
				Help: "Upstream fetch failures by metric",
			},
			[]string{"metric"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "btis_runs_total",
				Help: "Scoring runs by outcome (ok|no_data|error)",
			},
			[]string{"result"},
		),
		ComponentsPresent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "btis_components_present",
				Help: "Number of metrics present in the latest run",
			},
		),
		LatestScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "btis_score",
				Help: "Latest composite BTIS score (0-100)",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FetchDuration,
		m.FetchFailures,
		m.RunsTotal,
		m.ComponentsPresent,
		m.LatestScore,
	)
	return m
}

// InitializeMetrics sets up the global metrics registry once.
func InitializeMetrics() {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsRegistry()
		log.Debug().Msg("metrics registry initialized")
	})
}

// GetMetrics returns the global registry, initializing it if needed.
func GetMetrics() *MetricsRegistry {
	InitializeMetrics()
	return globalMetrics
}

// Registry exposes the underlying prometheus registry for the /metrics
// handler.
func (m *MetricsRegistry) Registry() *prometheus.Registry {
	return m.registry
}

// Summary gathers the registered families and reports the headline values
// for the /status endpoint.
func (m *MetricsRegistry) Summary() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	summary := make(map[string]float64)
	for _, family := range families {
		switch family.GetName() {
		case "btis_score", "btis_components_present":
			for _, metric := range family.GetMetric() {
				summary[family.GetName()] = metric.GetGauge().GetValue()
			}
		case "btis_runs_total":
			total := 0.0
			for _, metric := range family.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
			summary[family.GetName()] = total
		case "btis_fetch_failures_total":
			summary[family.GetName()] = sumCounters(family)
		}
	}
	return summary, nil
}

func sumCounters(family *dto.MetricFamily) float64 {
	total := 0.0
	for _, metric := range family.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}
