package compute

import (
	"fmt"
)

// PhaseTimer receives a phase name before each kernel runs.
// telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Pipeline dispatches kernels on a backend in frame order.
type Pipeline struct {
	backend Backend
	timer   PhaseTimer
	frames  int
}

// NewPipeline wraps a backend that already has a field bound.
func NewPipeline(b Backend) *Pipeline {
	return &Pipeline{backend: b}
}

// SetPhaseTimer attaches a timer; nil detaches it.
func (p *Pipeline) SetPhaseTimer(t PhaseTimer) {
	p.timer = t
}

// Frames returns the number of completed frames.
func (p *Pipeline) Frames() int {
	return p.frames
}

// Reseed lays every segment on its resting arc. Call once after binding so
// the buffers are initialized before the first frame is drawn.
func (p *Pipeline) Reseed(params Params) error {
	return p.run(InitSegment, params)
}

// Frame runs all four kernels in order. The first failure stops the frame.
func (p *Pipeline) Frame(params Params) error {
	for _, k := range FrameKernels {
		if err := p.run(k, params); err != nil {
			return err
		}
	}
	p.frames++
	return nil
}

func (p *Pipeline) run(k Kernel, params Params) error {
	if p.timer != nil {
		p.timer.StartPhase(k.String())
	}
	if err := p.backend.Dispatch(k, params); err != nil {
		return fmt.Errorf("dispatch %s: %w", k, err)
	}
	return nil
}

// Close releases the backend.
func (p *Pipeline) Close() error {
	return p.backend.Close()
}
