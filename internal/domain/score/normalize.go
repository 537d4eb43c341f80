package score

import (
	"fmt"
	"math"
)

// Scale maps a raw metric value linearly onto [0,100] between Lo and Hi,
// clamped outside that range. Identity scales (already 0-100 metrics) use
// Lo=0, Hi=100.
type Scale struct {
	Lo float64
	Hi float64
}

// Normalize applies the linear mapping with clamping. Lo==Hi is a
// configuration error, not a data error.
func (s Scale) Normalize(raw float64) (float64, error) {
	if s.Hi == s.Lo {
		return 0, fmt.Errorf("degenerate scale [%.4f, %.4f]", s.Lo, s.Hi)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("invalid raw value: %f", raw)
	}
	x := 100 * (raw - s.Lo) / (s.Hi - s.Lo)
	return clamp(x, 0, 100), nil
}

// Validate checks the scale bounds are usable.
func (s Scale) Validate() error {
	if math.IsNaN(s.Lo) || math.IsNaN(s.Hi) || math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) {
		return fmt.Errorf("non-finite scale bounds [%f, %f]", s.Lo, s.Hi)
	}
	if s.Hi <= s.Lo {
		return fmt.Errorf("scale upper bound %.4f not above lower bound %.4f", s.Hi, s.Lo)
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
