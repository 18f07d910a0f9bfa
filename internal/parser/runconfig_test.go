package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadRunConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := `sim = {
    ffiPoints = "1000 2000 3000;";
    warmupInstrs = 500000000L;
};
`
	if err := os.WriteFile(filepath.Join(dir, "out.cfg"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ReadRunConfig(filepath.Join(dir, "zsim-pout.out"))
	if !reflect.DeepEqual(got.Points, []int{1000, 2000, 3000}) {
		t.Errorf("Points = %v, want [1000 2000 3000]", got.Points)
	}
	if got.WarmupInstrs != 500000000 {
		t.Errorf("WarmupInstrs = %d, want 500000000", got.WarmupInstrs)
	}
}

func TestReadRunConfigMissingFile(t *testing.T) {
	got := ReadRunConfig(filepath.Join(t.TempDir(), "zsim-pout.out"))
	if got.Points != nil || got.WarmupInstrs != 0 {
		t.Errorf("expected zero config for missing file, got %+v", got)
	}
}

func TestReadRunConfigPartialFields(t *testing.T) {
	dir := t.TempDir()
	cfg := `sim = { warmupInstrs = 42; };`
	if err := os.WriteFile(filepath.Join(dir, "out.cfg"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	got := ReadRunConfig(filepath.Join(dir, "zsim-pout.out"))
	if got.Points != nil {
		t.Errorf("Points = %v, want nil", got.Points)
	}
	if got.WarmupInstrs != 42 {
		t.Errorf("WarmupInstrs = %d, want 42", got.WarmupInstrs)
	}
}
