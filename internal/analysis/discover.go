package analysis

import (
	"sort"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// cacheSignatures are the paired counter names whose joint presence marks a
// section as a cache. Different cache schemes emit different pairs.
var cacheSignatures = [][]string{
	{"loadHit", "loadMiss"},
	{"hits", "misses"},
	{"hGETS", "hGETX"},
	{"cleanEvict", "dirtyEvict"},
}

// coreSignature marks a section as a core.
var coreSignature = []string{"cycles", "instrs"}

func hasAll(n *models.Node, names []string) bool {
	for _, name := range names {
		if _, ok := n.Child(name); !ok {
			return false
		}
	}
	return true
}

func looksLikeCache(n *models.Node) bool {
	for _, sig := range cacheSignatures {
		if hasAll(n, sig) {
			return true
		}
	}
	return false
}

// FindCachePaths locates the memory-side sections that carry paired hit/miss
// counters. Periods are tried in order until one yields a result, since the
// counters may be absent from early or late periods. An empty result means
// no cache was found; that is an outcome, not an error.
func FindCachePaths(periods []*models.Node) []string {
	searchRoots := []string{
		"root.mem.mem-0",
		"root.mem-0",
		"root.mem",
	}

	for _, period := range periods {
		if period == nil {
			continue
		}

		// A flat layout puts the counters directly on root.mem.
		if mem := Resolve(period, "root.mem"); looksLikeCache(mem) {
			return []string{"root.mem"}
		}

		for _, base := range searchRoots {
			node := Resolve(period, base)
			if node.Kind() != models.KindSection {
				continue
			}
			var found []string
			for _, key := range node.Keys() {
				child, _ := node.Child(key)
				if looksLikeCache(child) {
					found = append(found, base+"."+key)
				}
			}
			if len(found) > 0 {
				return found
			}
		}
	}

	return nil
}

// CounterPair reports which hit/miss counter names a cache section carries.
// Sections found by FindCachePaths always match one of the known pairs; the
// first period that resolves the path decides.
func CounterPair(periods []*models.Node, cachePath string) (hit, miss string, ok bool) {
	for _, period := range periods {
		node := Resolve(period, cachePath)
		if node == nil {
			continue
		}
		for _, sig := range cacheSignatures {
			if hasAll(node, sig) {
				return sig[0], sig[1], true
			}
		}
		return "", "", false
	}
	return "", "", false
}

// FindCorePaths locates every section that carries both cycles and instrs
// counters, searching the whole tree recursively. The result is sorted for
// deterministic core ordering. Empty when no period contains core stats.
func FindCorePaths(periods []*models.Node) []string {
	found := make(map[string]bool)

	var search func(n *models.Node, path string)
	search = func(n *models.Node, path string) {
		if n.Kind() != models.KindSection {
			return
		}
		if hasAll(n, coreSignature) {
			found[path] = true
			return
		}
		for _, key := range n.Keys() {
			child, _ := n.Child(key)
			search(child, path+"."+key)
		}
	}

	for _, period := range periods {
		root := Resolve(period, RootKey)
		if root == nil {
			continue
		}
		search(root, RootKey)
		if len(found) > 0 {
			break
		}
	}

	paths := make([]string, 0, len(found))
	for path := range found {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
