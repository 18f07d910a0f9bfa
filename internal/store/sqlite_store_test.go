package store

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndGetRun(t *testing.T) {
	s := newTestStore(t)

	has, err := s.HasRun("/runs/a/zsim.out", "text")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("HasRun true on empty store")
	}

	id, err := s.InsertRun(&models.Run{
		StatsPath: "/runs/a/zsim.out",
		Mode:      "text",
		Periods:   12,
		ParsedAt:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("InsertRun returned id 0")
	}

	run, err := s.GetRun("/runs/a/zsim.out", "text")
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.ID != id || run.Periods != 12 {
		t.Fatalf("GetRun = %+v, want id %d with 12 periods", run, id)
	}
}

func TestInsertRunUpsertsByPathAndMode(t *testing.T) {
	s := newTestStore(t)

	first, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 3, ParsedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 7, ParsedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("upsert created a new run: %d vs %d", first, second)
	}

	run, err := s.GetRun("/runs/a/zsim.out", "text")
	if err != nil {
		t.Fatal(err)
	}
	if run.Periods != 7 {
		t.Errorf("Periods = %d, want 7 after upsert", run.Periods)
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("ListRuns = %d runs, want 1", len(runs))
	}
}

func TestRunModesAreDistinct(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 3, ParsedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	has, err := s.HasRun("/runs/a/zsim.out", "record")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("HasRun matched a different mode")
	}
}

func TestSeriesRoundTripPreservesNaN(t *testing.T) {
	s := newTestStore(t)
	id, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 4, ParsedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	values := []float64{math.NaN(), 1.0, 0.5, math.NaN()}
	if err := s.BulkInsertSeries(id, "root.mem.l1d-0.hitRate", values); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSeries(id, "root.mem.l1d-0.hitRate")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d values, want 4", len(got))
	}
	if !math.IsNaN(got[0]) || got[1] != 1.0 || got[2] != 0.5 || !math.IsNaN(got[3]) {
		t.Errorf("round trip = %v, want [NaN 1 0.5 NaN]", got)
	}
}

func TestBulkInsertSeriesReplacesPath(t *testing.T) {
	s := newTestStore(t)
	id, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 2, ParsedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.BulkInsertSeries(id, "root.ipc", []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.BulkInsertSeries(id, "root.ipc", []float64{3, 4}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSeries(id, "root.ipc")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("GetSeries = %v, want [3 4]", got)
	}
}

func TestListSeriesPaths(t *testing.T) {
	s := newTestStore(t)
	id, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 1, ParsedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"root.ipc", "root.mem.hitRate"} {
		if err := s.BulkInsertSeries(id, path, []float64{1}); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := s.ListSeriesPaths(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0] != "root.ipc" || paths[1] != "root.mem.hitRate" {
		t.Errorf("ListSeriesPaths = %v", paths)
	}
}

func TestGetSeriesMissingPath(t *testing.T) {
	s := newTestStore(t)
	id, err := s.InsertRun(&models.Run{StatsPath: "/runs/a/zsim.out", Mode: "text", Periods: 1, ParsedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSeries(id, "root.nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("GetSeries = %v, want empty", got)
	}
}

func TestOptimize(t *testing.T) {
	s := newTestStore(t)
	if err := s.Optimize(); err != nil {
		t.Fatal(err)
	}
}
