// Package indicator holds the pure price-series computations feeding the
// composite score: Wilder RSI and the log-price percentile rank.
package indicator

import "fmt"

// RSI computes the Relative Strength Index over closing prices using Wilder's
// smoothing (SMA seed for the first period, then EMA with alpha=1/period).
// Returns an error when the series is too short; the caller treats that as an
// absent metric rather than substituting a neutral value.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("rsi period must be positive, got %d", period)
	}
	if len(closes) < period+1 {
		return 0, fmt.Errorf("rsi needs at least %d closes, got %d", period+1, len(closes))
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period; i < len(gains); i++ {
		avgGain = avgGain*(1-alpha) + gains[i]*alpha
		avgLoss = avgLoss*(1-alpha) + losses[i]*alpha
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), nil
}

// Tail returns the trailing n elements of the series, or the whole series
// when it is shorter. RSI is computed over a bounded recent window for
// stability while the percentile uses the full history.
func Tail(series []float64, n int) []float64 {
	if n <= 0 || len(series) <= n {
		return series
	}
	return series[len(series)-n:]
}
