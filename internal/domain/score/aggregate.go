package score

import (
	"errors"
	"math"
	"time"
)

// ErrNoData is returned when no metric carries a usable value; the run aborts
// and the previous output document is preserved.
var ErrNoData = errors.New("no metric data available")

// Aggregate combines readings into a composite score. Weights are
// re-normalized over the metrics that are present so a single failed fetch
// degrades the weighting but never aborts the run. The score is the weighted
// mean of normalized values, rounded to one decimal.
func Aggregate(readings []Reading, weights WeightTable, ts time.Time, runID string) (*Result, error) {
	presentWeight := 0.0
	for _, r := range readings {
		if r.Normalized != nil && weights[r.Name] > 0 {
			presentWeight += weights[r.Name]
		}
	}
	if presentWeight <= 0 {
		return nil, ErrNoData
	}

	sum := 0.0
	components := make([]Component, 0, len(readings))
	for _, r := range readings {
		comp := Component{
			Name:       r.Name,
			Raw:        r.Raw,
			Normalized: r.Normalized,
			Weight:     weights[r.Name],
			Detail:     r.Detail,
		}
		if r.Normalized != nil && weights[r.Name] > 0 {
			ew := weights[r.Name] / presentWeight
			comp.EffectiveWeight = &ew
			sum += ew * *r.Normalized
		}
		components = append(components, comp)
	}

	return &Result{
		Score:      roundTo(sum, 1),
		Timestamp:  ts.UTC(),
		RunID:      runID,
		Components: components,
	}, nil
}

func roundTo(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}
