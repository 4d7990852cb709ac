package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one animation frame. The kernel phases match
// compute.Kernel.String so the pipeline can report them directly.
const (
	PhaseInitSegment          = "init_segment"
	PhaseApplyNoise           = "apply_noise"
	PhaseUpdateVertex         = "update_vertex"
	PhaseUpdateTargetPosition = "update_target_position"
	PhaseColors               = "colors"
	PhaseDraw                 = "draw"
)

// Phases lists every frame phase in dispatch order.
var Phases = []string{
	PhaseInitSegment, PhaseApplyNoise, PhaseUpdateVertex,
	PhaseUpdateTargetPosition, PhaseColors, PhaseDraw,
}

// PerfSample is the timing of one arc frame: the whole step and each
// kernel or draw phase inside it.
type PerfSample struct {
	UpdateDuration time.Duration
	Phases         map[string]time.Duration
}

// PerfCollector times arc frames over a rolling window of the last
// windowSize steps. It satisfies compute.PhaseTimer, so the kernel
// pipeline opens a phase per dispatched kernel.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	updateStart   time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall time between rendered frames, zero when headless
	lastFrameTime time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector returns a collector averaging over windowSize frames,
// or 60 when windowSize is not positive.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartUpdate opens the timing of one arc frame step.
func (p *PerfCollector) StartUpdate() {
	p.updateStart = p.now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase closes the running kernel phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndUpdate closes the frame step and stores it in the window.
func (p *PerfCollector) EndUpdate() {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		UpdateDuration: now.Sub(p.updateStart),
		Phases:         p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// RecordFrame marks a presented frame in the viewer.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats summarizes the window: arc step times, the per-phase split
// and the viewer frame rate.
type PerfStats struct {
	AvgUpdate time.Duration
	MinUpdate time.Duration
	MaxUpdate time.Duration

	// Average duration and share of step time per kernel or draw phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	UpdatesPerSecond float64

	// Viewer only
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
		FPS:           fps,
	}
	if p.sampleCount == 0 {
		return stats
	}

	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.UpdateDuration
		if i == 0 || s.UpdateDuration < stats.MinUpdate {
			stats.MinUpdate = s.UpdateDuration
		}
		if s.UpdateDuration > stats.MaxUpdate {
			stats.MaxUpdate = s.UpdateDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	stats.AvgUpdate = total / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if stats.AvgUpdate > 0 {
			stats.PhasePct[phase] = float64(stats.PhaseAvg[phase]) / float64(stats.AvgUpdate) * 100
		}
	}
	if stats.AvgUpdate > 0 {
		stats.UpdatesPerSecond = float64(time.Second) / float64(stats.AvgUpdate)
	}
	return stats
}

// LogStats writes one "perf" line with step times and phase shares.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_update_us", s.AvgUpdate.Microseconds(),
		"min_update_us", s.MinUpdate.Microseconds(),
		"max_update_us", s.MaxUpdate.Microseconds(),
		"updates_per_sec", int(s.UpdatesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_update_us", s.AvgUpdate.Microseconds()),
		slog.Int64("min_update_us", s.MinUpdate.Microseconds()),
		slog.Int64("max_update_us", s.MaxUpdate.Microseconds()),
		slog.Float64("updates_per_sec", s.UpdatesPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	Frame                   int     `csv:"frame"`
	AvgUpdateUS             int64   `csv:"avg_update_us"`
	MinUpdateUS             int64   `csv:"min_update_us"`
	MaxUpdateUS             int64   `csv:"max_update_us"`
	UpdatesPerSec           float64 `csv:"updates_per_sec"`
	FPS                     float64 `csv:"fps"`
	InitSegmentPct          float64 `csv:"init_segment_pct"`
	ApplyNoisePct           float64 `csv:"apply_noise_pct"`
	UpdateVertexPct         float64 `csv:"update_vertex_pct"`
	UpdateTargetPositionPct float64 `csv:"update_target_position_pct"`
	ColorsPct               float64 `csv:"colors_pct"`
	DrawPct                 float64 `csv:"draw_pct"`
}

// ToCSV flattens the stats into a perf.csv row for frame.
func (s PerfStats) ToCSV(frame int) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:                   frame,
		AvgUpdateUS:             s.AvgUpdate.Microseconds(),
		MinUpdateUS:             s.MinUpdate.Microseconds(),
		MaxUpdateUS:             s.MaxUpdate.Microseconds(),
		UpdatesPerSec:           s.UpdatesPerSecond,
		FPS:                     s.FPS,
		InitSegmentPct:          s.PhasePct[PhaseInitSegment],
		ApplyNoisePct:           s.PhasePct[PhaseApplyNoise],
		UpdateVertexPct:         s.PhasePct[PhaseUpdateVertex],
		UpdateTargetPositionPct: s.PhasePct[PhaseUpdateTargetPosition],
		ColorsPct:               s.PhasePct[PhaseColors],
		DrawPct:                 s.PhasePct[PhaseDraw],
	}
}
