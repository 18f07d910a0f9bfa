// Package parser turns zsim statistics dumps into period trees. Two physical
// encodings are supported: the indentation-structured text dump
// (zsim-pout.out) and the structured record export of the columnar dump
// (zsim.h5.json). Parsed results are memoized in a bounded LRU keyed by file
// path so repeated metric queries against the same run parse once.
package parser

import (
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/TELOS-syslab/zsimview/internal/cache"
	"github.com/TELOS-syslab/zsimview/internal/models"
)

// Mode selects the physical encoding of a stats file.
type Mode int

const (
	ModeText Mode = iota
	ModeRecord
)

func (m Mode) String() string {
	if m == ModeRecord {
		return "record"
	}
	return "text"
}

type Parser struct {
	cache  *cache.LRU
	logger *slog.Logger
	parses atomic.Int64
}

// New builds a parser with a bounded result cache. cacheSize <= 0 selects
// the default capacity.
func New(cacheSize int, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		cache:  cache.New(cacheSize),
		logger: logger,
	}
}

// ParseCount reports how many files were actually read and parsed, excluding
// cache hits.
func (p *Parser) ParseCount() int64 {
	return p.parses.Load()
}

// Parse returns the period trees for the given stats file, consulting the
// cache first. A missing or unreadable file is fatal for the whole parse.
func (p *Parser) Parse(path string, mode Mode) ([]*models.Node, error) {
	key := mode.String() + ":" + path
	if periods, ok := p.cache.Get(key); ok {
		return periods, nil
	}

	start := time.Now()
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file %s: %w", path, err)
	}

	var periods []*models.Node
	switch mode {
	case ModeRecord:
		periods, err = ParseRecords(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse record dump %s: %w", path, err)
		}
	default:
		periods = ParseText(decodeContent(raw))
	}

	p.parses.Add(1)
	p.cache.Add(key, periods)
	p.logger.Info("Parsed stats file", "path", path, "mode", mode.String(),
		"periods", len(periods), "took", time.Since(start))

	return periods, nil
}

// readFile loads the file, transparently decompressing .gz and .zst dumps.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("bad gzip stream: %w", err)
		}
		defer func() { _ = zr.Close() }()
		return io.ReadAll(zr)
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("bad zstd stream: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(f)
	}
}
