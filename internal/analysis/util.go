package analysis

import (
	"fmt"
	"math"
)

// UtilizationTrend computes the instantaneous accessed/total ratio at each
// emitted window position. Unlike the rate trends this works on the raw
// counter values at the window's right edge, not on summed deltas; the
// window/step gating and NaN-on-undefined rules are the same. A missing or
// non-positive total makes the position NaN.
func UtilizationTrend(accessed, total []float64, window, step int) ([]float64, error) {
	if len(accessed) != len(total) {
		return nil, fmt.Errorf("accessed and total series lengths differ: %d vs %d", len(accessed), len(total))
	}
	if window < 1 {
		window = 1
	}
	if step < 1 {
		step = 1
	}

	rates := nanSlice(len(accessed))
	for i := 0; i < len(accessed); i += step {
		if i < window-1 {
			continue
		}
		if math.IsNaN(total[i]) || total[i] <= 0 || math.IsNaN(accessed[i]) {
			continue
		}
		rates[i] = accessed[i] / total[i]
	}

	return rates, nil
}
