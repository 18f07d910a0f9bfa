package models

import "time"

// Run records one parsed statistics dump that was persisted to the store.
type Run struct {
	ID        int64     `json:"id"`
	StatsPath string    `json:"statsPath"`
	Mode      string    `json:"mode"`
	Periods   int       `json:"periods"`
	ParsedAt  time.Time `json:"parsedAt"`
}
