package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/TELOS-syslab/zsimview/internal/analysis"
	"github.com/TELOS-syslab/zsimview/internal/models"
	"github.com/TELOS-syslab/zsimview/internal/parser"
)

// jsonSeries converts a derived series to a JSON-safe form: NaN positions
// become null, since encoding/json rejects NaN outright.
func jsonSeries(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) {
			v := values[i]
			out[i] = &v
		}
	}
	return out
}

func jsonNumber(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

type summaryPayload struct {
	Count  int      `json:"count"`
	Valid  int      `json:"valid"`
	Mean   *float64 `json:"mean"`
	StdDev *float64 `json:"stdDev"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	P50    *float64 `json:"p50"`
	P95    *float64 `json:"p95"`
}

func jsonSummary(s models.SeriesSummary) summaryPayload {
	return summaryPayload{
		Count:  s.Count,
		Valid:  s.Valid,
		Mean:   jsonNumber(s.Mean),
		StdDev: jsonNumber(s.StdDev),
		Min:    jsonNumber(s.Min),
		Max:    jsonNumber(s.Max),
		P50:    jsonNumber(s.P50),
		P95:    jsonNumber(s.P95),
	}
}

// runConfig returns the pass-through annotations from out.cfg. They ride
// along on derived-metric payloads but never affect computed values.
func (s *Server) runConfig() models.RunConfig {
	return parser.ReadRunConfig(s.config.StatsPath)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) periods(w http.ResponseWriter) ([]*models.Node, bool) {
	periods, err := s.parser.Parse(s.config.StatsPath, s.config.Mode)
	if err != nil {
		s.logger.Error("Failed to parse statistics dump", "path", s.config.StatsPath, "error", err)
		http.Error(w, fmt.Sprintf("Failed to parse statistics dump: %v", err), http.StatusInternalServerError)
		return nil, false
	}
	return periods, true
}

// windowStep reads window/step query overrides, falling back to the
// server's configured defaults.
func (s *Server) windowStep(r *http.Request) (int, int) {
	window, step := s.config.Window, s.config.Step
	if v := r.URL.Query().Get("window"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			window = n
		}
	}
	if v := r.URL.Query().Get("step"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			step = n
		}
	}
	return window, step
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>zsimview</title></head>
<body>
<h1>zsimview %s</h1>
<p>Serving analysis for <code>%s</code> (%s mode).</p>
<ul>
<li><a href="/api/config">/api/config</a></li>
<li><a href="/api/paths">/api/paths</a></li>
<li>/api/series?path=&lt;dot.path&gt;</li>
<li>/api/rate?path=&lt;cache&gt;&amp;kind=hit|miss</li>
<li>/api/totalrate?path=&lt;cache&gt;</li>
<li><a href="/api/ipc">/api/ipc</a></li>
<li>/api/util?accessed=&lt;path&gt;&amp;total=&lt;path&gt;</li>
<li>/api/summary?path=&lt;dot.path&gt;</li>
</ul>
</body>
</html>
`, s.config.Version, s.config.StatsPath, s.config.Mode)
}

func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.periods(w)
	if !ok {
		return
	}
	runConfig := s.runConfig()
	s.writeJSON(w, map[string]interface{}{
		"statsPath":    s.config.StatsPath,
		"mode":         s.config.Mode.String(),
		"periods":      len(periods),
		"window":       s.config.Window,
		"step":         s.config.Step,
		"points":       runConfig.Points,
		"warmupInstrs": runConfig.WarmupInstrs,
		"version":      s.config.Version,
	})
}

func (s *Server) pathsHandler(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.periods(w)
	if !ok {
		return
	}
	var leaves []string
	if len(periods) > 0 {
		leaves = analysis.LeafPaths(periods[0])
	}
	s.writeJSON(w, map[string]interface{}{
		"paths":  leaves,
		"caches": analysis.FindCachePaths(periods),
		"cores":  analysis.FindCorePaths(periods),
	})
}

func (s *Server) seriesHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing required query parameter: path", http.StatusBadRequest)
		return
	}
	periods, ok := s.periods(w)
	if !ok {
		return
	}

	values := analysis.ExtractSeries(periods, path)
	response := map[string]interface{}{
		"path":   path,
		"values": jsonSeries(values),
	}
	if v := r.URL.Query().Get("smooth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			response["smoothed"] = jsonSeries(analysis.Smooth(values, n))
		}
	}
	s.writeJSON(w, response)
}

// rateHandler serves windowed hit or miss rates. Without an explicit path
// it computes the rate for every discovered cache section.
func (s *Server) rateHandler(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.periods(w)
	if !ok {
		return
	}
	window, step := s.windowStep(r)

	kind := analysis.RateHit
	if r.URL.Query().Get("kind") == "miss" {
		kind = analysis.RateMiss
	}

	cachePaths := analysis.FindCachePaths(periods)
	if path := r.URL.Query().Get("path"); path != "" {
		cachePaths = []string{path}
	}
	if len(cachePaths) == 0 {
		http.Error(w, "No cache sections found in this dump", http.StatusNotFound)
		return
	}

	rates := make(map[string][]*float64, len(cachePaths))
	for _, cachePath := range cachePaths {
		hitName, missName, ok := analysis.CounterPair(periods, cachePath)
		if !ok {
			http.Error(w, fmt.Sprintf("No hit/miss counters at %s", cachePath), http.StatusNotFound)
			return
		}
		hits := analysis.ExtractSeries(periods, cachePath+"."+hitName)
		misses := analysis.ExtractSeries(periods, cachePath+"."+missName)
		trend, err := analysis.RateTrend(hits, misses, window, step, kind)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to compute rate for %s: %v", cachePath, err), http.StatusInternalServerError)
			return
		}
		rates[cachePath] = jsonSeries(trend)
	}

	s.writeJSON(w, map[string]interface{}{
		"kind":   string(kind),
		"window": window,
		"step":   step,
		"rates":  rates,
		"config": s.runConfig(),
	})
}

func (s *Server) totalRateHandler(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.periods(w)
	if !ok {
		return
	}
	window, step := s.windowStep(r)

	cachePaths := analysis.FindCachePaths(periods)
	if path := r.URL.Query().Get("path"); path != "" {
		cachePaths = []string{path}
	}
	if len(cachePaths) == 0 {
		http.Error(w, "No cache sections found in this dump", http.StatusNotFound)
		return
	}

	rates := make(map[string][]*float64, len(cachePaths))
	for _, cachePath := range cachePaths {
		trend, err := analysis.TotalHitRateTrend(
			analysis.ExtractSeries(periods, cachePath+".loadHit"),
			analysis.ExtractSeries(periods, cachePath+".loadMiss"),
			analysis.ExtractSeries(periods, cachePath+".storeHit"),
			analysis.ExtractSeries(periods, cachePath+".storeMiss"),
			window, step,
		)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to compute total rate for %s: %v", cachePath, err), http.StatusInternalServerError)
			return
		}
		rates[cachePath] = jsonSeries(trend)
	}

	s.writeJSON(w, map[string]interface{}{
		"window": window,
		"step":   step,
		"rates":  rates,
		"config": s.runConfig(),
	})
}

func (s *Server) ipcHandler(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.periods(w)
	if !ok {
		return
	}
	window, step := s.windowStep(r)

	result := analysis.IPC(periods, window, step)
	perCore := make(map[string][]*float64, len(result.PerCore))
	for corePath, series := range result.PerCore {
		perCore[corePath] = jsonSeries(series)
	}

	s.writeJSON(w, map[string]interface{}{
		"window":  window,
		"step":    step,
		"cores":   result.Cores,
		"perCore": perCore,
		"overall": jsonSeries(result.Overall),
		"config":  s.runConfig(),
	})
}

func (s *Server) utilHandler(w http.ResponseWriter, r *http.Request) {
	accessedPath := r.URL.Query().Get("accessed")
	totalPath := r.URL.Query().Get("total")
	if accessedPath == "" || totalPath == "" {
		http.Error(w, "Missing required query parameters: accessed, total", http.StatusBadRequest)
		return
	}
	periods, ok := s.periods(w)
	if !ok {
		return
	}
	window, step := s.windowStep(r)

	trend, err := analysis.UtilizationTrend(
		analysis.ExtractSeries(periods, accessedPath),
		analysis.ExtractSeries(periods, totalPath),
		window, step,
	)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to compute utilization: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"accessed": accessedPath,
		"total":    totalPath,
		"window":   window,
		"step":     step,
		"values":   jsonSeries(trend),
		"config":   s.runConfig(),
	})
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing required query parameter: path", http.StatusBadRequest)
		return
	}
	periods, ok := s.periods(w)
	if !ok {
		return
	}

	values := analysis.ExtractSeries(periods, path)
	s.writeJSON(w, map[string]interface{}{
		"path":    path,
		"summary": jsonSummary(analysis.Summarize(values)),
	})
}

func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Persistence is disabled", http.StatusNotFound)
		return
	}
	runs, err := s.store.ListRuns()
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, map[string]interface{}{"runs": runs})
}
