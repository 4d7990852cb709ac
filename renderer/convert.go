// Package renderer draws the globe, the tube field and the node markers
// with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/camera"
	"github.com/pthm-cable/arcglobe/palette"
)

func vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

func rgba(c palette.Color) rl.Color {
	r, g, b, a := c.RGBA8()
	return rl.Color{R: r, G: g, B: b, A: a}
}

// Camera3D converts an orbit camera into a raylib perspective camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(c.Position()),
		Target:     vec3(c.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(c.Fovy),
		Projection: rl.CameraPerspective,
	}
}
