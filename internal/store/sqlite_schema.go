package store

const RunSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stats_path TEXT NOT NULL,
    mode TEXT NOT NULL,
    periods INTEGER NOT NULL,
    parsed_at INTEGER NOT NULL,
    UNIQUE(stats_path, mode)
);
CREATE INDEX IF NOT EXISTS idx_runs_stats_path ON runs(stats_path);
`

const SeriesSchema = `
CREATE TABLE IF NOT EXISTS series (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    period_idx INTEGER NOT NULL,
    value REAL, -- NULL encodes a missing reading
    UNIQUE(run_id, path, period_idx)
);
CREATE INDEX IF NOT EXISTS idx_series_run_path ON series(run_id, path);
`

const SchemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`
