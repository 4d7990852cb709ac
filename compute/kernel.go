// Package compute animates a tube field each frame by running four ordered
// kernels on a pluggable backend.
package compute

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/tube"
)

// ErrNotBound is returned when a kernel is dispatched before a field is bound.
var ErrNotBound = errors.New("compute: no field bound")

// Kernel identifies one stage of the per-frame update.
type Kernel uint8

const (
	InitSegment          Kernel = iota // Lay segments along the lifted arc
	ApplyNoise                         // Displace segments over time
	UpdateVertex                       // Rebuild ring vertices around segments
	UpdateTargetPosition               // Move node markers to the tube ends
	numKernels
)

// FrameKernels is the order every frame dispatches in. Each kernel reads the
// previous one's output.
var FrameKernels = [numKernels]Kernel{InitSegment, ApplyNoise, UpdateVertex, UpdateTargetPosition}

func (k Kernel) String() string {
	switch k {
	case InitSegment:
		return "init_segment"
	case ApplyNoise:
		return "apply_noise"
	case UpdateVertex:
		return "update_vertex"
	case UpdateTargetPosition:
		return "update_target_position"
	default:
		return "unknown"
	}
}

// Params are the per-dispatch uniforms.
type Params struct {
	Time   float64 // Seconds since start
	Radius float64 // Tube radius
	Height float64 // Constant arc lift
	Length float64 // Arc lift per unit of chord length
	Center r3.Vec  // Globe center, defines the outward direction

	NoiseFrequency float64
	NoiseAmplitude float64
	NoiseSpeed     float64
}

// Backend runs kernels over a bound field's buffers.
type Backend interface {
	Bind(f *tube.Field) error
	Dispatch(k Kernel, p Params) error
	Close() error
}
