package score

import (
	"fmt"
	"math"
	"time"
)

// Canonical metric names used across config, providers, and output.
const (
	MetricRSI           = "rsi"
	MetricMVRV          = "mvrv_z"
	MetricFearGreed     = "fear_greed"
	MetricPriceLogRange = "price_log_range"
	MetricFunding       = "funding"
)

// MetricNames lists all metrics in output order.
func MetricNames() []string {
	return []string{MetricRSI, MetricMVRV, MetricFearGreed, MetricPriceLogRange, MetricFunding}
}

// Reading is one metric observation for a single run. Raw and Normalized are
// nil when the fetch failed or the metric is disabled; absent metrics are
// excluded from aggregation, never defaulted.
type Reading struct {
	Name       string
	Raw        *float64
	Normalized *float64
	Detail     string
}

// Present builds a reading with both raw and normalized values.
func Present(name string, raw, normalized float64, detail string) Reading {
	return Reading{Name: name, Raw: &raw, Normalized: &normalized, Detail: detail}
}

// Absent builds a reading for a metric that could not be observed.
func Absent(name string) Reading {
	return Reading{Name: name, Detail: "n/a"}
}

// WeightTable maps metric name to its nonnegative base weight. A complete
// table sums to 1.0; aggregation re-normalizes over the present subset.
type WeightTable map[string]float64

// Sum returns the total of all weights in the table.
func (wt WeightTable) Sum() float64 {
	total := 0.0
	for _, w := range wt {
		total += w
	}
	return total
}

const weightSumTolerance = 0.01

// Validate checks that all weights are nonnegative and sum to 1.0 within
// tolerance.
func (wt WeightTable) Validate() error {
	if len(wt) == 0 {
		return fmt.Errorf("weight table is empty")
	}
	for name, w := range wt {
		if w < 0 {
			return fmt.Errorf("negative weight for %s: %.4f", name, w)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid weight for %s: %f", name, w)
		}
	}
	if sum := wt.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, expected 1.0 ± %.2f", sum, weightSumTolerance)
	}
	return nil
}

// Component is the per-metric breakdown in the output document. Raw and
// Normalized are null in JSON when the metric was absent. EffectiveWeight is
// the re-normalized weight actually applied, null for absent metrics.
type Component struct {
	Name            string   `json:"name"`
	Raw             *float64 `json:"raw"`
	Normalized      *float64 `json:"normalized"`
	Weight          float64  `json:"weight"`
	EffectiveWeight *float64 `json:"effective_weight"`
	Detail          string   `json:"detail,omitempty"`
}

// Result is the composite score for one run. Immutable after construction;
// each run overwrites the previous output document.
type Result struct {
	Score      float64     `json:"score"`
	Timestamp  time.Time   `json:"timestamp"`
	RunID      string      `json:"run_id"`
	Components []Component `json:"components"`
}
