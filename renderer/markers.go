package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/tube"
)

// MarkerRenderer draws a small sphere at each tube end.
type MarkerRenderer struct {
	field         *tube.Field
	radius        float32
	rings, slices int32
	from, to      rl.Color
}

// NewMarkerRenderer creates node markers for a field. rings and slices set
// the sphere tessellation.
func NewMarkerRenderer(f *tube.Field, radius float64, rings, slices int) *MarkerRenderer {
	return &MarkerRenderer{
		field:  f,
		radius: float32(radius),
		rings:  int32(rings),
		slices: int32(slices),
		from:   rl.Color{R: 255, G: 110, B: 90, A: 255},
		to:     rl.Color{R: 90, G: 160, B: 255, A: 255},
	}
}

// SetRadius changes the marker size.
func (m *MarkerRenderer) SetRadius(r float64) {
	m.radius = float32(r)
}

// Draw renders Args.InstanceCount markers. Call inside BeginMode3D.
func (m *MarkerRenderer) Draw() {
	n := int(m.field.Args.InstanceCount())
	if n > len(m.field.Endpoints) {
		n = len(m.field.Endpoints)
	}
	for i := 0; i < n; i++ {
		col := m.from
		if i%2 == 1 {
			col = m.to
		}
		rl.DrawSphereEx(vec3(m.field.Endpoints[i]), m.radius, m.rings, m.slices, col)
	}
}
