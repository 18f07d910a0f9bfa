package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/TELOS-syslab/zsimview/internal/models"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=MEMORY;",
		"PRAGMA cache_size=-64000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			slog.Warn("pragma failed", "pragma", pragma, "error", err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for schema initialization: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(SchemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = tx.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	if currentVersion < 1 {
		if _, err := tx.Exec(RunSchema); err != nil {
			return fmt.Errorf("failed to create runs table: %w", err)
		}
		if _, err := tx.Exec(SeriesSchema); err != nil {
			return fmt.Errorf("failed to create series table: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
			return fmt.Errorf("failed to update schema version to 1: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) HasRun(statsPath, mode string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs WHERE stats_path = ? AND mode = ?", statsPath, mode).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing run: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) InsertRun(run *models.Run) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(
		"INSERT INTO runs (stats_path, mode, periods, parsed_at) VALUES (?, ?, ?, ?) ON CONFLICT(stats_path, mode) DO UPDATE SET periods = excluded.periods, parsed_at = excluded.parsed_at",
		run.StatsPath, run.Mode, run.Periods, run.ParsedAt.UnixMicro(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil || id == 0 {
		// The upsert path does not always report an insert id; look it up.
		err = s.db.QueryRow("SELECT id FROM runs WHERE stats_path = ? AND mode = ?", run.StatsPath, run.Mode).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve run id: %w", err)
		}
	}
	run.ID = id
	return id, nil
}

func (s *SQLiteStore) GetRun(statsPath, mode string) (*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &models.Run{}
	var parsedAt int64
	err := s.db.QueryRow(
		"SELECT id, stats_path, mode, periods, parsed_at FROM runs WHERE stats_path = ? AND mode = ?",
		statsPath, mode,
	).Scan(&run.ID, &run.StatsPath, &run.Mode, &run.Periods, &parsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.ParsedAt = time.UnixMicro(parsedAt)
	return run, nil
}

func (s *SQLiteStore) ListRuns() ([]*models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, stats_path, mode, periods, parsed_at FROM runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*models.Run
	for rows.Next() {
		run := &models.Run{}
		var parsedAt int64
		if err := rows.Scan(&run.ID, &run.StatsPath, &run.Mode, &run.Periods, &parsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.ParsedAt = time.UnixMicro(parsedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// BulkInsertSeries stores one derived series for a run. NaN values are
// stored as NULL so the undefined-vs-zero distinction survives persistence.
// Re-inserting a path replaces the previous values for that path.
func (s *SQLiteStore) BulkInsertSeries(runID int64, path string, values []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for bulk series insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM series WHERE run_id = ? AND path = ?", runID, path); err != nil {
		return fmt.Errorf("failed to clear old series values: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO series (run_id, path, period_idx, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement for bulk series insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, v := range values {
		value := sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
		if _, err := stmt.Exec(runID, path, i, value); err != nil {
			return fmt.Errorf("failed to insert series value during bulk operation: %w", err)
		}
	}

	return tx.Commit()
}

// GetSeries returns the stored values for a path in period order, with NULL
// rows decoded back to NaN. A path with no rows yields an empty series.
func (s *SQLiteStore) GetSeries(runID int64, path string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT value FROM series WHERE run_id = ? AND path = ? ORDER BY period_idx",
		runID, path,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var values []float64
	for rows.Next() {
		var value sql.NullFloat64
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan series value: %w", err)
		}
		if value.Valid {
			values = append(values, value.Float64)
		} else {
			values = append(values, math.NaN())
		}
	}
	return values, rows.Err()
}

func (s *SQLiteStore) ListSeriesPaths(runID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT DISTINCT path FROM series WHERE run_id = ? ORDER BY path", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list series paths: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan series path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

func (s *SQLiteStore) Optimize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []string{"ANALYZE;", "PRAGMA optimize;"} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to optimize database: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
