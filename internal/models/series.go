package models

// SeriesSummary aggregates the valid (non-NaN) points of one derived series.
type SeriesSummary struct {
	Count  int     `json:"count"`
	Valid  int     `json:"valid"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}
