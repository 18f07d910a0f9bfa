package server

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TELOS-syslab/zsimview/internal/parser"
	"github.com/TELOS-syslab/zsimview/internal/store"
)

// SecurityHeadersMiddleware adds security-related headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
		next.ServeHTTP(w, r)
	})
}

type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzip.NewWriter(w)
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		next.ServeHTTP(gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	})
}

// Config carries the server's fixed settings.
type Config struct {
	StatsPath string
	Mode      parser.Mode
	Window    int
	Step      int
	Version   string
}

type Server struct {
	config  Config
	parser  *parser.Parser
	store   store.Store // nil when persistence is off
	logger  *slog.Logger
	handler http.Handler
}

// New builds the HTTP handler serving the analysis API for one statistics
// dump. The store may be nil; the persistence endpoints then report that
// persistence is disabled.
func New(config Config, p *parser.Parser, s store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	server := &Server{
		config: config,
		parser: p,
		store:  s,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", server.homeHandler)
	mux.HandleFunc("/api/config", server.configHandler)
	mux.HandleFunc("/api/paths", server.pathsHandler)
	mux.HandleFunc("/api/series", server.seriesHandler)
	mux.HandleFunc("/api/rate", server.rateHandler)
	mux.HandleFunc("/api/totalrate", server.totalRateHandler)
	mux.HandleFunc("/api/ipc", server.ipcHandler)
	mux.HandleFunc("/api/util", server.utilHandler)
	mux.HandleFunc("/api/summary", server.summaryHandler)
	mux.HandleFunc("/api/runs", server.runsHandler)

	var handler http.Handler = mux
	handler = SecurityHeadersMiddleware(handler)
	handler = GzipMiddleware(handler)
	server.handler = handler

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Shutdown() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close store", "error", err)
		}
	}
}
