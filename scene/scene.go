// Package scene wires the sampler, the tube field, the compute pipeline and
// the palette cycle into one animated arc field. It has no graphics
// dependency; the viewer package draws it.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/compute"
	"github.com/pthm-cable/arcglobe/config"
	"github.com/pthm-cable/arcglobe/density"
	"github.com/pthm-cable/arcglobe/geom"
	"github.com/pthm-cable/arcglobe/palette"
	"github.com/pthm-cable/arcglobe/sampler"
	"github.com/pthm-cable/arcglobe/telemetry"
	"github.com/pthm-cable/arcglobe/tube"
)

// Density modes reported by DensityMode.
const (
	DensityTexture    = "texture"
	DensityProcedural = "procedural"
	DensityDisabled   = "disabled"
	DensityUniform    = "uniform"
)

// Options configures a scene beyond the loaded config.
type Options struct {
	Seed        int64  // Sampling seed
	OutputDir   string // Empty disables file output
	LogStats    bool   // Periodic perf log lines and perf.csv rows
	SnapshotDir string // Where SaveSnapshot writes
	Replay      string // Snapshot file whose links replace the first sample
}

// Settings are the live-tunable parameters. They start from the config
// and are edited by the control panel.
type Settings struct {
	TubeRadius       float64
	ColorChangeSpeed float64
	NoiseAmplitude   float64
	NoiseSpeed       float64
	NodePointRadius  float64
	ShowNodePoints   bool
	Paused           bool
}

// Scene holds the complete arc field state.
type Scene struct {
	cfg  *config.Config
	opts Options
	rng  *rand.Rand

	mesh         *geom.Mesh
	transform    geom.Transform
	field        density.Field
	densityImage *density.Image // nil unless the field is image backed
	densityMode  string

	sampler *sampler.SurfaceSampler
	pairs   []sampler.LinkPair
	replay  []sampler.LinkPair // Consumed by the first rebuild
	tubes   *tube.Field
	reports []telemetry.SamplingReport

	cycle  *palette.Cycle
	colors []palette.Color

	backend  *compute.CPUBackend
	pipeline *compute.Pipeline

	perf    *telemetry.PerfCollector
	output  *telemetry.OutputManager
	inFrame bool

	Settings Settings

	time       float64
	frame      int
	generation int // Bumped whenever the tube field is rebuilt
}

// New builds a scene from the global config.
func New(opts Options) (*Scene, error) {
	return NewWithConfig(config.Cfg(), opts)
}

// NewWithConfig builds a scene from an explicit config.
func NewWithConfig(cfg *config.Config, opts Options) (*Scene, error) {
	s := &Scene{
		cfg:  cfg,
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		mesh: geom.UVSphere(cfg.Globe.Radius, cfg.Globe.Rings, cfg.Globe.Slices),
		transform: geom.NewTransform(
			r3.Vec{X: cfg.Globe.Position[0], Y: cfg.Globe.Position[1], Z: cfg.Globe.Position[2]},
			cfg.Globe.Scale,
			cfg.Globe.RotationDeg*math.Pi/180,
		),
		perf: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		Settings: Settings{
			TubeRadius:       cfg.Links.Radius,
			ColorChangeSpeed: cfg.Links.ColorChangeSpeed,
			NoiseAmplitude:   cfg.Noise.Amplitude,
			NoiseSpeed:       cfg.Noise.Speed,
			NodePointRadius:  cfg.Links.NodePointRadius,
			ShowNodePoints:   cfg.Links.ShowNodePoints,
		},
	}

	if opts.Replay != "" {
		snap, err := telemetry.LoadSnapshot(opts.Replay)
		if err != nil {
			return nil, err
		}
		s.replay = snap.Pairs()
		s.time = snap.Time
		slog.Info("replaying snapshot", "path", opts.Replay, "links", len(s.replay), "time", snap.Time)
	}

	var err error
	if s.field, s.densityImage, s.densityMode, err = loadDensity(cfg.Globe.Density); err != nil {
		return nil, err
	}
	if cfg.Links.DrawOnRandomPoints {
		s.densityMode = DensityUniform
	}

	s.sampler = sampler.New(s.mesh, s.transform, s.field)
	if err := s.sampler.Prepare(); err != nil {
		return nil, fmt.Errorf("preparing sampler: %w", err)
	}
	if s.cycle, err = palette.FromConfig(cfg.Gradients); err != nil {
		return nil, fmt.Errorf("building palettes: %w", err)
	}
	s.colors = s.cycle.ChangeColor(0)

	s.backend = compute.NewCPUBackend(cfg.Compute.Workers, cfg.Noise.Seed)
	s.pipeline = compute.NewPipeline(s.backend)
	s.pipeline.SetPhaseTimer(s.perf)

	if err := s.rebuild(); err != nil {
		s.pipeline.Close()
		return nil, err
	}
	for _, r := range s.reports {
		r.LogStats()
	}

	if s.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		s.pipeline.Close()
		return nil, err
	}
	s.writeOutputs()

	slog.Info("scene ready",
		"seed", opts.Seed,
		"density", s.densityMode,
		"triangles", s.mesh.TriangleCount(),
		"tubes", s.tubes.TubeCount(),
		"segments_per_tube", cfg.Derived.SegmentsPerTube,
		"vertices_per_tube", cfg.Derived.VerticesPerTube,
		"indices_per_tube", cfg.Derived.IndexCount,
		"workers", s.backend.Workers(),
		"palettes", s.cycle.Len(),
	)
	return s, nil
}

// loadDensity picks the density provider described by the config.
func loadDensity(dc config.DensityConfig) (density.Field, *density.Image, string, error) {
	switch {
	case dc.Disabled:
		return nil, nil, DensityDisabled, nil
	case dc.Texture != "":
		img, err := density.Load(dc.Texture)
		if err != nil {
			return nil, nil, "", err
		}
		return img, img, DensityTexture, nil
	default:
		img := density.Procedural(density.NoiseParams{
			Seed:      dc.Seed,
			Frequency: dc.Frequency,
			Octaves:   dc.Octaves,
			Width:     dc.Width,
			Height:    dc.Height,
		})
		return img, img, DensityProcedural, nil
	}
}

// samplePairs draws the link endpoints. A density map with no weight falls
// back to uniform triangle picks.
func (s *Scene) samplePairs() ([]sampler.LinkPair, error) {
	uniform := s.cfg.Links.DrawOnRandomPoints
	pairs, err := s.sampler.Pairs(s.cfg.Links.Count, s.rng, uniform)
	if errors.Is(err, sampler.ErrZeroProbability) {
		slog.Warn("density map has no weight, sampling uniformly", "error", err)
		s.densityMode = DensityUniform
		pairs, err = s.sampler.Pairs(s.cfg.Links.Count, s.rng, true)
	}
	if err != nil {
		return nil, fmt.Errorf("sampling links: %w", err)
	}
	return pairs, nil
}

// rebuild samples new pairs, builds a fresh tube field and seeds it.
func (s *Scene) rebuild() error {
	pairs := s.replay
	s.replay = nil
	if pairs == nil {
		var err error
		if pairs, err = s.samplePairs(); err != nil {
			return err
		}
	}

	tubes, err := tube.Build(pairs, tube.Layout{
		Rings:            s.cfg.Links.MaxSegments,
		Sides:            s.cfg.Links.Sides,
		MarkerIndexCount: s.cfg.Derived.MarkerIndexCount,
	})
	if err != nil {
		return fmt.Errorf("building tubes: %w", err)
	}
	if err := s.backend.Bind(tubes); err != nil {
		return err
	}
	if err := s.pipeline.Reseed(s.params()); err != nil {
		return fmt.Errorf("seeding segments: %w", err)
	}

	s.pairs = pairs
	s.tubes = tubes
	s.reports = telemetry.ReportSampler(s.sampler)
	s.generation++
	return nil
}

// SaveSnapshot writes the current links and clock to the snapshot directory.
func (s *Scene) SaveSnapshot() (string, error) {
	dir := s.opts.SnapshotDir
	if dir == "" {
		dir = "snapshots"
	}
	snap := telemetry.NewSnapshot(s.opts.Seed, s.frame, s.time, s.densityMode, s.pairs)
	path, err := telemetry.SaveSnapshot(snap, dir)
	if err != nil {
		return "", err
	}
	slog.Info("snapshot saved", "path", path, "links", len(snap.Links))
	return path, nil
}

// Resample draws a new set of links and rebuilds the tube field.
func (s *Scene) Resample() error {
	if err := s.rebuild(); err != nil {
		return err
	}
	if err := s.output.WriteLinks(telemetry.LinkRows(s.pairs)); err != nil {
		slog.Warn("failed to write links", "error", err)
	}
	if err := s.output.WriteSampling(s.reports); err != nil {
		slog.Warn("failed to write sampling reports", "error", err)
	}
	slog.Info("resampled", "generation", s.generation, "tubes", s.tubes.TubeCount())
	return nil
}

// params assembles the kernel inputs for the current time and settings.
func (s *Scene) params() compute.Params {
	return compute.Params{
		Time:           s.time,
		Radius:         s.Settings.TubeRadius,
		Height:         s.cfg.Links.Height,
		Length:         s.cfg.Links.Length,
		Center:         s.transform.Position,
		NoiseFrequency: s.cfg.Noise.Frequency,
		NoiseAmplitude: s.Settings.NoiseAmplitude,
		NoiseSpeed:     s.Settings.NoiseSpeed,
	}
}

// writeOutputs saves the run's config, links, weight tables and reports.
func (s *Scene) writeOutputs() {
	if s.output == nil {
		return
	}
	if err := s.output.WriteConfig(s.cfg); err != nil {
		slog.Warn("failed to write config", "error", err)
	}
	if err := s.output.WriteLinks(telemetry.LinkRows(s.pairs)); err != nil {
		slog.Warn("failed to write links", "error", err)
	}
	if err := s.output.WriteWeights(telemetry.WeightRows(s.sampler)); err != nil {
		slog.Warn("failed to write weights", "error", err)
	}
	if err := s.output.WriteSampling(s.reports); err != nil {
		slog.Warn("failed to write sampling reports", "error", err)
	}
	slog.Info("output written", "dir", s.output.Dir())
}

// Unload stops the compute workers and closes output files.
func (s *Scene) Unload() {
	if err := s.pipeline.Close(); err != nil {
		slog.Warn("closing pipeline", "error", err)
	}
	if err := s.output.Close(); err != nil {
		slog.Warn("closing output", "error", err)
	}
}
