package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/arcglobe/config"
	"github.com/pthm-cable/arcglobe/sampler"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	// Methods are nil-safe
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Error(err)
	}
	if err := om.WriteLinks(nil); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should report no dir and close cleanly")
	}
}

func TestOutputManagerWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.WriteLinks(LinkRows(make([]sampler.LinkPair, 3))); err != nil {
		t.Fatalf("WriteLinks: %v", err)
	}
	if err := om.WriteSampling([]SamplingReport{{Channel: "arrival"}, {Channel: "destination"}}); err != nil {
		t.Fatalf("WriteSampling: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := om.WritePerf(PerfStats{PhasePct: map[string]float64{}}, i*60); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "links.csv"))
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "link,") {
		t.Errorf("links.csv = %q", lines)
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 4 || !strings.HasPrefix(perf[0], "frame,") {
		t.Errorf("perf.csv should have one header and three rows, got %q", perf)
	}

	sampling := readLines(t, filepath.Join(dir, "sampling.csv"))
	if len(sampling) != 3 {
		t.Errorf("sampling.csv = %q", sampling)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
