package models

// RunConfig carries the two annotation scalars from the companion out.cfg
// file. Both are pass-through data for callers (plot markers, warm-up
// boundaries) and never affect computed series.
type RunConfig struct {
	Points       []int `json:"points"`
	WarmupInstrs int64 `json:"warmupInstrs"`
}
