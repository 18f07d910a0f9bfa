package parser

import (
	"testing"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

func TestParseRecordsWrapsUnderRoot(t *testing.T) {
	raw := []byte(`[
		{"phase": 1, "mem": {"mem-0": {"loadHit": 10, "loadMiss": 0}}},
		{"phase": 2, "mem": {"mem-0": {"loadHit": 15, "loadMiss": 0}}}
	]`)

	periods, err := ParseRecords(raw)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(periods))
	}

	root := mustChild(t, periods[0], "root")
	mem := mustChild(t, root, "mem")
	mem0 := mustChild(t, mem, "mem-0")
	if v, _ := mustChild(t, mem0, "loadHit").Int(); v != 10 {
		t.Errorf("loadHit = %d, want 10", v)
	}
	if v, _ := mustChild(t, root, "phase").Int(); v != 1 {
		t.Errorf("phase = %d, want 1", v)
	}
}

func TestParseRecordsNumericKinds(t *testing.T) {
	raw := []byte(`[{"count": 7, "ratio": 0.5}]`)
	periods, err := ParseRecords(raw)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	root := mustChild(t, periods[0], "root")
	if mustChild(t, root, "count").Kind() != models.KindInt {
		t.Error("integral field should decode as int")
	}
	if mustChild(t, root, "ratio").Kind() != models.KindFloat {
		t.Error("fractional field should decode as float")
	}
}

func TestParseRecordsArrays(t *testing.T) {
	raw := []byte(`[{
		"l2": [{"hGETS": 1, "hGETX": 2}, {"hGETS": 3, "hGETX": 4}],
		"hist": [10, 20, 30]
	}]`)
	periods, err := ParseRecords(raw)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	root := mustChild(t, periods[0], "root")

	l2 := mustChild(t, root, "l2")
	if l2.Kind() != models.KindList || l2.Len() != 2 {
		t.Fatalf("l2 = %v with %d items, want list of 2", l2.Kind(), l2.Len())
	}
	first := l2.Items()[0]
	if v, _ := mustChild(t, first, "hGETS").Int(); v != 1 {
		t.Errorf("l2[0].hGETS = %d, want 1", v)
	}

	hist := mustChild(t, root, "hist")
	if hist.Kind() != models.KindList || hist.Len() != 3 {
		t.Fatalf("hist = %v with %d items, want list of 3", hist.Kind(), hist.Len())
	}
	if v, _ := hist.Items()[2].Int(); v != 30 {
		t.Errorf("hist[2] = %d, want 30", v)
	}
}

func TestParseRecordsBadInput(t *testing.T) {
	if _, err := ParseRecords([]byte(`{"not": "an array"}`)); err == nil {
		t.Fatal("expected error for non-array input")
	}
	if _, err := ParseRecords([]byte(`[{]`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
