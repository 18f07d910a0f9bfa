package parser

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

var (
	pointsRe = regexp.MustCompile(`ffiPoints\s*=\s*"([^"]+)"`)
	warmupRe = regexp.MustCompile(`warmupInstrs\s*=\s*(\d+)L?;?`)
)

// ReadRunConfig extracts the points-of-interest list and warm-up instruction
// count from the out.cfg file next to the stats dump. A missing file or
// missing fields degrade to zero values; nothing here is fatal.
func ReadRunConfig(statsPath string) models.RunConfig {
	var cfg models.RunConfig

	raw, err := os.ReadFile(filepath.Join(filepath.Dir(statsPath), "out.cfg"))
	if err != nil {
		return cfg
	}
	content := string(raw)

	if m := pointsRe.FindStringSubmatch(content); m != nil {
		fields := strings.Fields(strings.ReplaceAll(m[1], ";", " "))
		for _, f := range fields {
			if v, err := strconv.Atoi(f); err == nil {
				cfg.Points = append(cfg.Points, v)
			}
		}
	}

	if m := warmupRe.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			cfg.WarmupInstrs = v
		}
	}

	return cfg
}
