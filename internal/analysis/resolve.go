// Package analysis computes derived metrics over parsed period trees:
// path-addressed counter series, windowed hit/miss rates, IPC trends,
// utilization ratios, and smoothing. Missing data flows through every
// computation as NaN, never as zero.
package analysis

import (
	"math"
	"strings"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// RootKey is the top-level wrapper key both parse modes produce.
const RootKey = "root"

// Resolve walks a dot-delimited path in one period tree. Paths are
// normalized to start at the root wrapper; segments are matched atomically,
// so hyphenated keys like "mem-0" are one segment. Any missing segment
// yields nil, never an error.
func Resolve(period *models.Node, path string) *models.Node {
	if period == nil || path == "" {
		return nil
	}
	if path != RootKey && !strings.HasPrefix(path, RootKey+".") {
		path = RootKey + "." + path
	}

	current := period
	for _, segment := range strings.Split(path, ".") {
		child, ok := current.Child(segment)
		if !ok {
			return nil
		}
		current = child
	}
	return current
}

// ExtractMany resolves a set of paths against every period in a single pass
// over the period sequence, preserving period order. Missing values are nil.
func ExtractMany(periods []*models.Node, paths []string) map[string][]*models.Node {
	result := make(map[string][]*models.Node, len(paths))
	for _, path := range paths {
		result[path] = make([]*models.Node, 0, len(periods))
	}

	for _, period := range periods {
		for _, path := range paths {
			result[path] = append(result[path], Resolve(period, path))
		}
	}

	return result
}

// NumericSeries converts resolved nodes to a float series, with NaN standing
// in for missing or non-numeric readings.
func NumericSeries(nodes []*models.Node) []float64 {
	series := make([]float64, len(nodes))
	for i, n := range nodes {
		if f, ok := n.Float(); ok {
			series[i] = f
		} else {
			series[i] = math.NaN()
		}
	}
	return series
}

// ExtractSeries is the common resolve-then-coerce shortcut for one path.
func ExtractSeries(periods []*models.Node, path string) []float64 {
	nodes := make([]*models.Node, len(periods))
	for i, period := range periods {
		nodes[i] = Resolve(period, path)
	}
	return NumericSeries(nodes)
}

// LeafPaths lists every leaf path in a period tree, in section insertion
// order. Used by the API to enumerate addressable statistics.
func LeafPaths(period *models.Node) []string {
	var paths []string
	var walk func(n *models.Node, prefix string)
	walk = func(n *models.Node, prefix string) {
		switch n.Kind() {
		case models.KindSection:
			for _, key := range n.Keys() {
				child, _ := n.Child(key)
				next := key
				if prefix != "" {
					next = prefix + "." + key
				}
				walk(child, next)
			}
		default:
			paths = append(paths, prefix)
		}
	}
	walk(period, "")
	return paths
}
