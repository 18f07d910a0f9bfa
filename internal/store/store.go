package store

import (
	"github.com/TELOS-syslab/zsimview/internal/models"
)

// Store defines the interface for persisting parsed runs and derived series.
type Store interface {
	HasRun(statsPath, mode string) (bool, error)
	InsertRun(run *models.Run) (int64, error)
	GetRun(statsPath, mode string) (*models.Run, error)
	ListRuns() ([]*models.Run, error)

	BulkInsertSeries(runID int64, path string, values []float64) error
	GetSeries(runID int64, path string) ([]float64, error)
	ListSeriesPaths(runID int64) ([]string, error)

	Optimize() error
	Close() error
}
