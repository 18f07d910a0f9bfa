package analysis

import (
	"math"

	moremath "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// Summarize aggregates the valid points of a derived series. An all-NaN
// series yields a summary with Valid == 0 and NaN statistics, mirroring the
// undefined-vs-zero rule of the rate computations.
func Summarize(values []float64) models.SeriesSummary {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	summary := models.SeriesSummary{
		Count:  len(values),
		Valid:  len(valid),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
		P50:    math.NaN(),
		P95:    math.NaN(),
	}
	if len(valid) == 0 {
		return summary
	}

	summary.Mean = stat.Mean(valid, nil)
	if len(valid) > 1 {
		summary.StdDev = stat.StdDev(valid, nil)
	} else {
		summary.StdDev = 0
	}

	sample := moremath.Sample{Xs: valid}
	sample.Sort()
	summary.Min = sample.Xs[0]
	summary.Max = sample.Xs[len(sample.Xs)-1]
	summary.P50 = sample.Quantile(0.5)
	summary.P95 = sample.Quantile(0.95)

	return summary
}
