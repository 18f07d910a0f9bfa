package analysis

import (
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// buildPeriod constructs a period tree from nested string keys, e.g.
// {"mem.mem-0.loadHit": 10}. Values land under the root wrapper. Keys are
// inserted in sorted order so sibling ordering is deterministic.
func buildPeriod(values map[string]int64) *models.Node {
	period := models.NewSection()
	root := models.NewSection()
	period.SetChild("root", root)

	paths := make([]string, 0, len(values))
	for path := range values {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		v := values[path]
		current := root
		segments := splitPath(path)
		for _, seg := range segments[:len(segments)-1] {
			child, ok := current.Child(seg)
			if !ok {
				child = models.NewSection()
				current.SetChild(seg, child)
			}
			current = child
		}
		current.SetChild(segments[len(segments)-1], models.NewInt(v))
	}
	return period
}

func splitPath(path string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	return append(segments, path[start:])
}

func TestResolve(t *testing.T) {
	period := buildPeriod(map[string]int64{
		"mem.mem-0.loadHit":  10,
		"mem.mem-0.loadMiss": 2,
	})

	tests := []struct {
		name string
		path string
		want int64
		ok   bool
	}{
		{"full path", "root.mem.mem-0.loadHit", 10, true},
		{"root prefix implied", "mem.mem-0.loadMiss", 2, true},
		{"hyphenated segment atomic", "root.mem.mem-0.loadHit", 10, true},
		{"missing leaf", "root.mem.mem-0.storeHit", 0, false},
		{"missing intermediate", "root.cpu.core-0.loadHit", 0, false},
		{"descend past leaf", "root.mem.mem-0.loadHit.deeper", 0, false},
		{"empty path", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := Resolve(period, tt.path)
			if !tt.ok {
				if node != nil {
					t.Fatalf("Resolve(%q) = %v, want nil", tt.path, node)
				}
				return
			}
			got, ok := node.Int()
			if !ok || got != tt.want {
				t.Fatalf("Resolve(%q) = %d (ok=%v), want %d", tt.path, got, ok, tt.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	period := buildPeriod(map[string]int64{"mem.mem-0.loadHit": 10})
	first := Resolve(period, "root.mem.mem-0.loadHit")
	second := Resolve(period, "root.mem.mem-0.loadHit")
	if first != second {
		t.Fatal("repeated resolution returned different nodes")
	}
	if v, _ := second.Int(); v != 10 {
		t.Fatalf("value changed across resolutions: %d", v)
	}
}

func TestExtractManySinglePass(t *testing.T) {
	periods := []*models.Node{
		buildPeriod(map[string]int64{"mem.loadHit": 10, "mem.loadMiss": 0}),
		buildPeriod(map[string]int64{"mem.loadHit": 15}),
		buildPeriod(map[string]int64{"mem.loadHit": 15, "mem.loadMiss": 5}),
	}
	paths := []string{"root.mem.loadHit", "root.mem.loadMiss"}

	got := ExtractMany(periods, paths)
	if len(got) != 2 {
		t.Fatalf("got %d paths, want 2", len(got))
	}

	hits := NumericSeries(got["root.mem.loadHit"])
	if !reflect.DeepEqual(hits, []float64{10, 15, 15}) {
		t.Errorf("hits = %v, want [10 15 15]", hits)
	}

	misses := NumericSeries(got["root.mem.loadMiss"])
	if misses[0] != 0 || !math.IsNaN(misses[1]) || misses[2] != 5 {
		t.Errorf("misses = %v, want [0 NaN 5]", misses)
	}
}

func TestLeafPaths(t *testing.T) {
	period := buildPeriod(map[string]int64{
		"mem.mem-0.loadHit": 1,
		"phase":             2,
	})
	got := LeafPaths(period)

	want := map[string]bool{
		"root.mem.mem-0.loadHit": true,
		"root.phase":             true,
	}
	if len(got) != len(want) {
		t.Fatalf("LeafPaths = %v, want %d paths", got, len(want))
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected leaf path %q", p)
		}
	}
}
