package indicator

import (
	"fmt"
	"math"
)

// LogPricePercentile returns the percentile rank (0-100) of the latest price
// within the full historical series, computed in log space so early-cycle
// prices do not dominate the range. Nonpositive prices are skipped. Uses the
// mid-rank convention for ties.
func LogPricePercentile(prices []float64) (float64, error) {
	if len(prices) == 0 {
		return 0, fmt.Errorf("empty price series")
	}

	last := prices[len(prices)-1]
	if last <= 0 {
		return 0, fmt.Errorf("nonpositive latest price: %f", last)
	}
	target := math.Log(last)

	below := 0
	equal := 0
	total := 0
	for _, p := range prices {
		if p <= 0 {
			continue
		}
		lp := math.Log(p)
		switch {
		case lp < target:
			below++
		case lp == target:
			equal++
		}
		total++
	}
	if total == 0 {
		return 0, fmt.Errorf("no positive prices in series")
	}

	return 100 * (float64(below) + 0.5*float64(equal)) / float64(total), nil
}
