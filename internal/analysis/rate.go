package analysis

import (
	"fmt"
	"math"
)

// RateKind selects which side of the hit/miss pair a rate reports.
type RateKind string

const (
	RateHit  RateKind = "hit"
	RateMiss RateKind = "miss"
)

// Deltas converts a cumulative counter series to per-period increments:
// d[0] = s[0], d[i] = s[i] - s[i-1]. NaN readings produce NaN deltas.
// Monotonicity is not assumed; a mid-run counter reset shows up as a
// negative delta and is passed through.
func Deltas(series []float64) []float64 {
	deltas := make([]float64, len(series))
	prev := 0.0
	for i, v := range series {
		deltas[i] = v - prev
		prev = v
	}
	return deltas
}

// nanSum sums the valid values in window [lo, hi], treating NaN as 0.
// An all-NaN window sums to 0; the caller's total check makes that case
// undefined rather than a zero rate.
func nanSum(values []float64, lo, hi int) float64 {
	sum := 0.0
	for i := lo; i <= hi; i++ {
		if !math.IsNaN(values[i]) {
			sum += values[i]
		}
	}
	return sum
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// RateTrend derives a windowed hit or miss rate from two cumulative counter
// series. Output length equals input length. At each emitted position the
// deltas over the trailing window are summed (NaN contributions ignored);
// a non-positive total means no accesses occurred and the rate is NaN,
// which is distinct from a computed 0.
func RateTrend(hits, misses []float64, window, step int, kind RateKind) ([]float64, error) {
	if len(hits) != len(misses) {
		return nil, fmt.Errorf("hit and miss series lengths differ: %d vs %d", len(hits), len(misses))
	}
	if window < 1 {
		window = 1
	}
	if step < 1 {
		step = 1
	}

	hitDeltas := Deltas(hits)
	missDeltas := Deltas(misses)
	rates := nanSlice(len(hits))

	for i := 0; i < len(hits); i += step {
		if i < window-1 {
			continue
		}
		lo := max(0, i-window+1)
		windowHits := nanSum(hitDeltas, lo, i)
		windowMisses := nanSum(missDeltas, lo, i)
		total := windowHits + windowMisses
		if total <= 0 {
			continue
		}
		if kind == RateMiss {
			rates[i] = windowMisses / total
		} else {
			rates[i] = windowHits / total
		}
	}

	return rates, nil
}

// TotalHitRateTrend computes the combined hit rate across the load and store
// access classes: hits and totals are summed across both classes inside the
// window before dividing, under the same window/step/NaN rules as RateTrend.
func TotalHitRateTrend(loadHits, loadMisses, storeHits, storeMisses []float64, window, step int) ([]float64, error) {
	n := len(loadHits)
	if len(loadMisses) != n || len(storeHits) != n || len(storeMisses) != n {
		return nil, fmt.Errorf("hit and miss series lengths differ")
	}
	if window < 1 {
		window = 1
	}
	if step < 1 {
		step = 1
	}

	loadHitDeltas := Deltas(loadHits)
	loadMissDeltas := Deltas(loadMisses)
	storeHitDeltas := Deltas(storeHits)
	storeMissDeltas := Deltas(storeMisses)
	rates := nanSlice(n)

	for i := 0; i < n; i += step {
		if i < window-1 {
			continue
		}
		lo := max(0, i-window+1)
		totalHits := nanSum(loadHitDeltas, lo, i) + nanSum(storeHitDeltas, lo, i)
		totalAccesses := totalHits + nanSum(loadMissDeltas, lo, i) + nanSum(storeMissDeltas, lo, i)
		if totalAccesses <= 0 {
			continue
		}
		rates[i] = totalHits / totalAccesses
	}

	return rates, nil
}
