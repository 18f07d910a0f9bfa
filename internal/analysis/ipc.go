package analysis

import (
	"math"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// IPCResult holds per-core and system-wide instructions-per-cycle trends.
// Series are period-aligned; gated positions hold NaN.
type IPCResult struct {
	PerCore map[string][]float64 `json:"perCore"`
	Overall []float64            `json:"overall"`
	Cores   []string             `json:"cores"`
}

// zeroIfAllNaN replaces a series that never produced a reading with zeros,
// so a core that simply lacks the optional cCycles counter does not poison
// the cycle denominator.
func zeroIfAllNaN(series []float64) []float64 {
	for _, v := range series {
		if !math.IsNaN(v) {
			return series
		}
	}
	return make([]float64, len(series))
}

// addInto accumulates src into dst treating NaN contributions as 0, the
// cross-core aggregation rule: a core with a missing reading contributes
// nothing for that period instead of voiding the system total.
func addInto(dst, src []float64) {
	for i, v := range src {
		if !math.IsNaN(v) {
			dst[i] += v
		}
	}
}

// IPC computes instructions-per-cycle trends for every discovered core and
// for the system as a whole. The denominator is cycles plus contention
// cycles (cCycles) when the latter counter exists. Per-core series derive
// from that core's own deltas; the overall series sums instruction- and
// cycle-deltas across all cores before dividing, which is not the same as
// averaging per-core rates. An empty result means no cores were discovered.
func IPC(periods []*models.Node, window, step int) IPCResult {
	corePaths := FindCorePaths(periods)
	result := IPCResult{
		PerCore: make(map[string][]float64, len(corePaths)),
		Cores:   corePaths,
	}
	if len(corePaths) == 0 {
		return result
	}
	if window < 1 {
		window = 1
	}
	if step < 1 {
		step = 1
	}

	n := len(periods)
	totalInstrDeltas := make([]float64, n)
	totalCycleDeltas := make([]float64, n)

	for _, corePath := range corePaths {
		instrs := ExtractSeries(periods, corePath+".instrs")
		cycles := ExtractSeries(periods, corePath+".cycles")
		cCycles := zeroIfAllNaN(ExtractSeries(periods, corePath+".cCycles"))

		instrDeltas := Deltas(instrs)
		cycleDeltas := Deltas(cycles)
		cCycleDeltas := Deltas(cCycles)

		coreCycleDeltas := make([]float64, n)
		for i := range coreCycleDeltas {
			coreCycleDeltas[i] = cycleDeltas[i] + cCycleDeltas[i]
		}

		result.PerCore[corePath] = windowedRatio(instrDeltas, coreCycleDeltas, window, step)

		addInto(totalInstrDeltas, instrDeltas)
		addInto(totalCycleDeltas, coreCycleDeltas)
	}

	result.Overall = windowedRatio(totalInstrDeltas, totalCycleDeltas, window, step)
	return result
}

// windowedRatio emits sum(numDeltas)/sum(denDeltas) over the trailing window
// at step-gated positions, NaN when the denominator is not positive.
func windowedRatio(numDeltas, denDeltas []float64, window, step int) []float64 {
	out := nanSlice(len(numDeltas))
	for i := 0; i < len(numDeltas); i += step {
		if i < window-1 {
			continue
		}
		lo := max(0, i-window+1)
		den := nanSum(denDeltas, lo, i)
		if den <= 0 {
			continue
		}
		out[i] = nanSum(numDeltas, lo, i) / den
	}
	return out
}

// TotalInstructions sums the cumulative instruction counter across all
// discovered cores for each period. Useful as an instruction-based x-axis.
// Nil when no cores are found.
func TotalInstructions(periods []*models.Node) []float64 {
	corePaths := FindCorePaths(periods)
	if len(corePaths) == 0 {
		return nil
	}

	totals := make([]float64, len(periods))
	for _, corePath := range corePaths {
		addInto(totals, ExtractSeries(periods, corePath+".instrs"))
	}
	return totals
}
