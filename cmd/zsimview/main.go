package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/TELOS-syslab/zsimview/internal/analysis"
	"github.com/TELOS-syslab/zsimview/internal/models"
	"github.com/TELOS-syslab/zsimview/internal/parser"
	"github.com/TELOS-syslab/zsimview/internal/server"
	"github.com/TELOS-syslab/zsimview/internal/store"
	"github.com/TELOS-syslab/zsimview/internal/version"
)

var Version = "dev"

const (
	textDumpName   = "zsim-pout.out"
	recordDumpName = "zsim.h5.json"
)

func main() {
	envPort := 7575
	if p := os.Getenv("PORT"); p != "" {
		fmt.Sscanf(p, "%d", &envPort)
	}
	port := flag.Int("port", envPort, "Port to listen on (can also be set via PORT env var)")

	envHost := "127.0.0.1"
	if h := os.Getenv("HOST"); h != "" {
		envHost = h
	}
	host := flag.String("host", envHost, "Host to bind to (default: 127.0.0.1, use 0.0.0.0 for containers) (can also be set via HOST env var)")

	dbPath := flag.String("db", "", "SQLite database path (default: <cache-dir>/zsimview/zsimview.db)")
	persist := flag.Bool("persist", false, "Persist parsed runs and derived series to the database")
	record := flag.Bool("record", false, "Read the structured record dump (zsim.h5.json) instead of the text dump")
	window := flag.Int("window", 1, "Trailing window size in periods for derived metrics")
	step := flag.Int("step", 1, "Emit a value every N periods")
	stat := flag.String("stat", "", "One-shot mode: compute and print a statistic (hit|miss|thit|ipc|util|custom) and exit")
	path := flag.String("path", "", "Counter path for -stat custom, or accessed,total paths for -stat util")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <run-directory>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("zsimview version %s\n", Version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	version.Version = Version
	latestVersionChan := make(chan string, 1)
	go func() {
		latest, err := version.CheckUpdate()
		if err != nil {
			logger.Debug("Failed to check for updates", "error", err)
		}
		latestVersionChan <- latest
	}()
	select {
	case latest := <-latestVersionChan:
		if latest != "" {
			logger.Info("A new version of zsimview is available", "latest", latest, "current", Version)
		}
	case <-time.After(1 * time.Second):
		logger.Debug("Version check timed out")
	}

	// The flag package stops at the first non-flag argument, so scan the
	// trailing ones too.
	var runDir string
	for _, arg := range flag.Args() {
		switch arg {
		case "-persist", "--persist":
			*persist = true
		case "-record", "--record":
			*record = true
		default:
			if runDir == "" {
				runDir = arg
			}
		}
	}
	if runDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	mode := parser.ModeText
	dumpName := textDumpName
	if *record {
		mode = parser.ModeRecord
		dumpName = recordDumpName
	}
	statsPath := filepath.Join(runDir, dumpName)

	p := parser.New(0, logger)
	periods, err := p.Parse(statsPath, mode)
	if err != nil {
		logger.Error("Failed to parse statistics dump", "path", statsPath, "error", err)
		os.Exit(1)
	}
	logger.Info("Parsed statistics dump", "path", statsPath, "periods", len(periods))

	var sqliteStore *store.SQLiteStore
	if *persist {
		resolvedDB := *dbPath
		if resolvedDB == "" {
			cacheDir, err := os.UserCacheDir()
			if err != nil {
				cacheDir = os.TempDir()
			}
			dataDir := filepath.Join(cacheDir, "zsimview")
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				logger.Error("Failed to create data directory", "path", dataDir, "error", err)
				os.Exit(1)
			}
			resolvedDB = filepath.Join(dataDir, "zsimview.db")
		}
		sqliteStore, err = store.NewSQLiteStore(resolvedDB)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err)
			os.Exit(1)
		}
		logger.Info("Persisting to database", "path", resolvedDB)
	}

	if *stat != "" {
		if err := runOneShot(periods, sqliteStore, statsPath, mode, *stat, *path, *window, *step, logger); err != nil {
			logger.Error("One-shot computation failed", "stat", *stat, "error", err)
			os.Exit(1)
		}
		if sqliteStore != nil {
			_ = sqliteStore.Optimize()
			_ = sqliteStore.Close()
		}
		return
	}

	if sqliteStore != nil {
		if err := persistRun(periods, sqliteStore, statsPath, mode, *window, *step); err != nil {
			logger.Warn("Failed to persist run", "error", err)
		}
	}

	var storeInterface store.Store
	if sqliteStore != nil {
		storeInterface = sqliteStore
	}
	srv := server.New(server.Config{
		StatsPath: statsPath,
		Mode:      mode,
		Window:    *window,
		Step:      *step,
		Version:   Version,
	}, p, storeInterface, logger)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	logger.Info("Server listening on", "address", addr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := http.ListenAndServe(addr, srv); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-c
	logger.Info("Shutting down...")
	srv.Shutdown()
}

// persistRun stores the run row plus the derived series the API serves most
// often: per-cache hit rates and the overall IPC trend.
func persistRun(periods []*models.Node, s *store.SQLiteStore, statsPath string, mode parser.Mode, window, step int) error {
	runID, err := s.InsertRun(&models.Run{
		StatsPath: statsPath,
		Mode:      mode.String(),
		Periods:   len(periods),
		ParsedAt:  time.Now(),
	})
	if err != nil {
		return err
	}

	for _, cachePath := range analysis.FindCachePaths(periods) {
		hitName, missName, ok := analysis.CounterPair(periods, cachePath)
		if !ok {
			continue
		}
		trend, err := analysis.RateTrend(
			analysis.ExtractSeries(periods, cachePath+"."+hitName),
			analysis.ExtractSeries(periods, cachePath+"."+missName),
			window, step, analysis.RateHit,
		)
		if err != nil {
			return err
		}
		if err := s.BulkInsertSeries(runID, cachePath+".hitRate", trend); err != nil {
			return err
		}
	}

	ipc := analysis.IPC(periods, window, step)
	if len(ipc.Cores) > 0 {
		if err := s.BulkInsertSeries(runID, "root.ipc", ipc.Overall); err != nil {
			return err
		}
	}
	return nil
}

func runOneShot(periods []*models.Node, s *store.SQLiteStore, statsPath string, mode parser.Mode, stat, path string, window, step int, logger *slog.Logger) error {
	var runID int64
	if s != nil {
		id, err := s.InsertRun(&models.Run{
			StatsPath: statsPath,
			Mode:      mode.String(),
			Periods:   len(periods),
			ParsedAt:  time.Now(),
		})
		if err != nil {
			return err
		}
		runID = id
	}

	persistSeries := func(seriesPath string, values []float64) {
		if s == nil {
			return
		}
		if err := s.BulkInsertSeries(runID, seriesPath, values); err != nil {
			logger.Warn("Failed to persist series", "path", seriesPath, "error", err)
		}
	}

	switch stat {
	case "hit", "miss":
		kind := analysis.RateHit
		if stat == "miss" {
			kind = analysis.RateMiss
		}
		cachePaths := analysis.FindCachePaths(periods)
		if path != "" {
			cachePaths = []string{path}
		}
		if len(cachePaths) == 0 {
			return fmt.Errorf("no cache sections found in this dump")
		}
		for _, cachePath := range cachePaths {
			hitName, missName, ok := analysis.CounterPair(periods, cachePath)
			if !ok {
				return fmt.Errorf("no hit/miss counters at %s", cachePath)
			}
			trend, err := analysis.RateTrend(
				analysis.ExtractSeries(periods, cachePath+"."+hitName),
				analysis.ExtractSeries(periods, cachePath+"."+missName),
				window, step, kind,
			)
			if err != nil {
				return err
			}
			printSeries(cachePath, trend)
			persistSeries(cachePath+"."+stat+"Rate", trend)
		}

	case "thit":
		cachePaths := analysis.FindCachePaths(periods)
		if path != "" {
			cachePaths = []string{path}
		}
		if len(cachePaths) == 0 {
			return fmt.Errorf("no cache sections found in this dump")
		}
		for _, cachePath := range cachePaths {
			trend, err := analysis.TotalHitRateTrend(
				analysis.ExtractSeries(periods, cachePath+".loadHit"),
				analysis.ExtractSeries(periods, cachePath+".loadMiss"),
				analysis.ExtractSeries(periods, cachePath+".storeHit"),
				analysis.ExtractSeries(periods, cachePath+".storeMiss"),
				window, step,
			)
			if err != nil {
				return err
			}
			printSeries(cachePath, trend)
			persistSeries(cachePath+".totalHitRate", trend)
		}

	case "ipc":
		result := analysis.IPC(periods, window, step)
		if len(result.Cores) == 0 {
			return fmt.Errorf("no core sections found in this dump")
		}
		for _, corePath := range result.Cores {
			printSeries(corePath, result.PerCore[corePath])
		}
		printSeries("overall", result.Overall)
		persistSeries("root.ipc", result.Overall)

	case "util":
		parts := strings.SplitN(path, ",", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("-stat util requires -path accessedPath,totalPath")
		}
		trend, err := analysis.UtilizationTrend(
			analysis.ExtractSeries(periods, parts[0]),
			analysis.ExtractSeries(periods, parts[1]),
			window, step,
		)
		if err != nil {
			return err
		}
		printSeries(parts[0], trend)
		persistSeries(parts[0]+".utilization", trend)

	case "custom":
		if path == "" {
			return fmt.Errorf("-stat custom requires -path")
		}
		values := analysis.ExtractSeries(periods, path)
		printSeries(path, values)
		persistSeries(path, values)

	default:
		return fmt.Errorf("unknown statistic %q (want hit|miss|thit|ipc|util|custom)", stat)
	}

	return nil
}

// printSeries writes one series with its summary line to stdout. Gated or
// undefined positions print as NaN.
func printSeries(name string, values []float64) {
	fmt.Printf("%s:", name)
	for _, v := range values {
		if math.IsNaN(v) {
			fmt.Print(" NaN")
		} else {
			fmt.Printf(" %.6g", v)
		}
	}
	fmt.Println()

	summary := analysis.Summarize(values)
	fmt.Printf("  valid=%d/%d mean=%.6g p50=%.6g p95=%.6g\n",
		summary.Valid, summary.Count, summary.Mean, summary.P50, summary.P95)
}
