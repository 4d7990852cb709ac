package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Links.Count <= 0 {
		t.Errorf("expected positive default link count, got %d", cfg.Links.Count)
	}
	if len(cfg.Gradients) == 0 {
		t.Fatal("expected default gradients")
	}
	if cfg.Derived.SegmentsPerTube != cfg.Links.MaxSegments+1 {
		t.Errorf("SegmentsPerTube = %d, want %d", cfg.Derived.SegmentsPerTube, cfg.Links.MaxSegments+1)
	}
	if cfg.Derived.VerticesPerTube != cfg.Links.Sides*(cfg.Links.MaxSegments+1) {
		t.Errorf("VerticesPerTube = %d", cfg.Derived.VerticesPerTube)
	}
	if cfg.Derived.IndexCount != 6*cfg.Links.Sides*cfg.Links.MaxSegments {
		t.Errorf("IndexCount = %d", cfg.Derived.IndexCount)
	}
	if cfg.Derived.MarkerIndexCount != 6*(6+2)*8 {
		t.Errorf("MarkerIndexCount = %d, want %d", cfg.Derived.MarkerIndexCount, 6*(6+2)*8)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("links:\n  count: 12\n  draw_on_random_points: true\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Links.Count != 12 {
		t.Errorf("count = %d, want 12", cfg.Links.Count)
	}
	if !cfg.Links.DrawOnRandomPoints {
		t.Error("expected draw_on_random_points to be overlaid")
	}
	// Untouched fields keep their defaults
	if cfg.Links.Sides != 8 {
		t.Errorf("sides = %d, want default 8", cfg.Links.Sides)
	}
}

func TestLoadRejectsBadLayout(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"too few sides", "links:\n  sides: 2\n"},
		{"no segments", "links:\n  max_segments: 0\n"},
		{"negative count", "links:\n  count: -1\n"},
		{"flat globe", "globe:\n  rings: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Links.Count = 77

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config failed: %v", err)
	}
	if reloaded.Links.Count != 77 {
		t.Errorf("count = %d, want 77", reloaded.Links.Count)
	}
	if len(reloaded.Gradients) != len(cfg.Gradients) {
		t.Errorf("gradients = %d, want %d", len(reloaded.Gradients), len(cfg.Gradients))
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Screen.Width == 0 {
		t.Error("expected screen width from defaults")
	}
}
