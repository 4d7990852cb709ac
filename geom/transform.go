package geom

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform places a mesh in world space: rotate, then scale, then translate.
type Transform struct {
	Position r3.Vec
	Scale    float64
	Rotation r3.Rotation
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{Scale: 1, Rotation: r3.NewRotation(0, r3.Vec{Y: 1})}
}

// NewTransform builds a placement with a rotation of yaw radians about +Y.
func NewTransform(position r3.Vec, scale, yaw float64) Transform {
	return Transform{
		Position: position,
		Scale:    scale,
		Rotation: r3.NewRotation(yaw, r3.Vec{Y: 1}),
	}
}

// Apply maps a local-space point to world space.
// A zero Rotation is treated as identity.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	if t.Rotation != (r3.Rotation{}) {
		p = t.Rotation.Rotate(p)
	}
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	return r3.Add(r3.Scale(scale, p), t.Position)
}
