package analysis

import "math"

// Smooth applies a trailing moving average for display purposes: each
// position becomes the mean of the valid values in [max(0, i-window+1), i].
// A window with no valid values stays NaN. This is independent of the
// window/step gating used for rate derivation.
func Smooth(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	out := nanSlice(len(values))
	for i := range values {
		lo := max(0, i-window+1)
		sum, count := 0.0, 0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count > 0 {
			out[i] = sum / float64(count)
		}
	}
	return out
}
