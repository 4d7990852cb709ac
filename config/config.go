// Package config provides configuration loading and access for the visualization.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all visualization configuration parameters.
type Config struct {
	Screen    ScreenConfig     `yaml:"screen"`
	Globe     GlobeConfig      `yaml:"globe"`
	Links     LinksConfig      `yaml:"links"`
	Noise     NoiseConfig      `yaml:"noise"`
	Gradients []GradientConfig `yaml:"gradients"`
	Compute   ComputeConfig    `yaml:"compute"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GlobeConfig describes the surface the links are sampled on.
type GlobeConfig struct {
	Radius      float64       `yaml:"radius"`
	Rings       int           `yaml:"rings"`  // Latitude bands of the generated sphere
	Slices      int           `yaml:"slices"` // Longitude bands of the generated sphere
	Position    [3]float64    `yaml:"position"`
	Scale       float64       `yaml:"scale"`
	RotationDeg float64       `yaml:"rotation_deg"` // Rotation about the Y axis
	Density     DensityConfig `yaml:"density"`
}

// DensityConfig selects the density map used for importance sampling.
type DensityConfig struct {
	Texture   string  `yaml:"texture"`   // Image path; R = arrival, B = destination
	Disabled  bool    `yaml:"disabled"`  // No density map at all (zero-weight fallback)
	Seed      int64   `yaml:"seed"`      // Procedural map seed when Texture is empty
	Frequency float64 `yaml:"frequency"` // Procedural map base frequency
	Octaves   int     `yaml:"octaves"`
	Width     int     `yaml:"width"`  // Procedural map resolution
	Height    int     `yaml:"height"` // Procedural map resolution
}

// LinksConfig holds the tube field parameters.
type LinksConfig struct {
	Count              int     `yaml:"count"`        // Number of tubes
	MaxSegments        int     `yaml:"max_segments"` // Ring transitions per tube
	Sides              int     `yaml:"sides"`        // Vertices per ring
	Radius             float64 `yaml:"radius"`
	Length             float64 `yaml:"length"` // Arc lift as a fraction of chord length
	Height             float64 `yaml:"height"` // Constant arc lift
	ColorChangeSpeed   float64 `yaml:"color_change_speed"`
	DrawOnRandomPoints bool    `yaml:"draw_on_random_points"` // Ignore density, pick triangles uniformly
	ShowNodePoints     bool    `yaml:"show_node_points"`
	NodePointRadius    float64 `yaml:"node_point_radius"`
	MarkerRings        int     `yaml:"marker_rings"`  // Node marker sphere tessellation
	MarkerSlices       int     `yaml:"marker_slices"` // Node marker sphere tessellation
	Seed               int64   `yaml:"seed"`          // Sampling seed (0 = time-based)
}

// NoiseConfig holds the per-frame segment displacement parameters.
type NoiseConfig struct {
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	Speed     float64 `yaml:"speed"`
	Seed      int64   `yaml:"seed"`
}

// GradientConfig is one color palette the tubes cycle through.
type GradientConfig struct {
	Name string              `yaml:"name"`
	Keys []GradientKeyConfig `yaml:"keys"`
}

// GradientKeyConfig is a color key at a normalized position.
type GradientKeyConfig struct {
	At    float64 `yaml:"at"`
	Color string  `yaml:"color"` // #rrggbb or #rrggbbaa
}

// ComputeConfig holds CPU compute backend parameters.
type ComputeConfig struct {
	Workers int `yaml:"workers"` // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Frames averaged by the perf collector
	LogInterval int `yaml:"log_interval"` // Frames between perf log lines
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SegmentsPerTube  int // MaxSegments + 1
	VerticesPerTube  int // Sides * SegmentsPerTube
	IndexCount       int // 6 * Sides * MaxSegments
	MarkerIndexCount int // Index count of one node marker sphere
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the builders cannot work with.
func (c *Config) validate() error {
	switch {
	case c.Links.Count < 0:
		return fmt.Errorf("links.count must be >= 0, got %d", c.Links.Count)
	case c.Links.MaxSegments < 1:
		return fmt.Errorf("links.max_segments must be >= 1, got %d", c.Links.MaxSegments)
	case c.Links.Sides < 3:
		return fmt.Errorf("links.sides must be >= 3, got %d", c.Links.Sides)
	case c.Globe.Rings < 2 || c.Globe.Slices < 3:
		return fmt.Errorf("globe needs rings >= 2 and slices >= 3, got %dx%d", c.Globe.Rings, c.Globe.Slices)
	case len(c.Gradients) == 0:
		return fmt.Errorf("at least one gradient is required")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.SegmentsPerTube = c.Links.MaxSegments + 1
	c.Derived.VerticesPerTube = c.Links.Sides * c.Derived.SegmentsPerTube
	c.Derived.IndexCount = 6 * c.Links.Sides * c.Links.MaxSegments
	// Sphere markers are (rings+2) bands of slices quads
	c.Derived.MarkerIndexCount = 6 * (c.Links.MarkerRings + 2) * c.Links.MarkerSlices

	if c.Globe.Scale == 0 {
		c.Globe.Scale = 1
	}
	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
