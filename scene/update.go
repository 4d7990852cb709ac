package scene

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/arcglobe/compute"
	"github.com/pthm-cable/arcglobe/density"
	"github.com/pthm-cable/arcglobe/geom"
	"github.com/pthm-cable/arcglobe/palette"
	"github.com/pthm-cable/arcglobe/telemetry"
	"github.com/pthm-cable/arcglobe/tube"
)

// Step advances the animation by dt seconds: the four kernels in order,
// then the palette blend. The frame stays open for timing until EndFrame.
// A paused scene does nothing.
func (s *Scene) Step(dt float64) error {
	if s.Settings.Paused {
		return nil
	}

	s.perf.StartUpdate()
	s.inFrame = true

	if err := s.pipeline.Frame(s.params()); err != nil {
		return fmt.Errorf("frame %d: %w", s.frame, err)
	}

	s.perf.StartPhase(telemetry.PhaseColors)
	t := palette.Repeat(s.time*s.Settings.ColorChangeSpeed, float64(s.cycle.Len()))
	s.colors = s.cycle.ChangeColor(t)

	s.time += dt
	s.frame++
	return nil
}

// StartDraw opens the draw phase of the current frame.
func (s *Scene) StartDraw() {
	if s.inFrame {
		s.perf.StartPhase(telemetry.PhaseDraw)
	}
}

// EndFrame closes the frame's timing and emits periodic perf output.
func (s *Scene) EndFrame() {
	if !s.inFrame {
		return
	}
	s.perf.EndUpdate()
	s.inFrame = false

	interval := s.cfg.Telemetry.LogInterval
	if !s.opts.LogStats || interval <= 0 || s.frame%interval != 0 {
		return
	}
	stats := s.perf.Stats()
	stats.LogStats()
	if err := s.output.WritePerf(stats, s.frame); err != nil {
		slog.Warn("failed to write perf", "error", err)
	}
}

// Tick runs one complete headless frame.
func (s *Scene) Tick(dt float64) error {
	err := s.Step(dt)
	s.EndFrame()
	return err
}

// RecordFrame records wall-clock frame timing for the FPS readout.
func (s *Scene) RecordFrame() {
	s.perf.RecordFrame()
}

// Frame returns the number of animation frames run.
func (s *Scene) Frame() int {
	return s.frame
}

// Time returns the animation clock in seconds.
func (s *Scene) Time() float64 {
	return s.time
}

// Generation changes whenever Resample rebuilds the tube field.
func (s *Scene) Generation() int {
	return s.generation
}

// Tubes returns the current tube field.
func (s *Scene) Tubes() *tube.Field {
	return s.tubes
}

// Colors returns the current blended palette stops.
func (s *Scene) Colors() []palette.Color {
	return s.colors
}

// PaletteName names the palette the cycle is currently leaving.
func (s *Scene) PaletteName() string {
	t := palette.Repeat(s.time*s.Settings.ColorChangeSpeed, float64(s.cycle.Len()))
	return s.cycle.Name(int(t) % s.cycle.Len())
}

// Mesh returns the globe mesh and its placement.
func (s *Scene) Mesh() (*geom.Mesh, geom.Transform) {
	return s.mesh, s.transform
}

// Density returns the density field, which may be nil, and its image when
// image backed.
func (s *Scene) Density() (density.Field, *density.Image) {
	return s.field, s.densityImage
}

// DensityMode reports which density provider drives sampling.
func (s *Scene) DensityMode() string {
	return s.densityMode
}

// Reports returns the per-channel sampling reports.
func (s *Scene) Reports() []telemetry.SamplingReport {
	return s.reports
}

// PerfStats returns aggregated frame timing.
func (s *Scene) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}

// Params returns the kernel inputs for the current frame.
func (s *Scene) Params() compute.Params {
	return s.params()
}
