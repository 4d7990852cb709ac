package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/palette"
	"github.com/pthm-cable/arcglobe/tube"
)

// TubeRenderer draws every tube of a field with the shared index template.
type TubeRenderer struct {
	field     *tube.Field
	ringStops []int // Palette stop per ring
	colors    []rl.Color
}

// NewTubeRenderer prepares the per-ring color lookup for a field.
func NewTubeRenderer(f *tube.Field) *TubeRenderer {
	rings := f.Layout.Rings
	stops := make([]int, rings+1)
	for j := range stops {
		stops[j] = palette.StopFor(j, rings)
	}
	return &TubeRenderer{
		field:     f,
		ringStops: stops,
		colors:    make([]rl.Color, rings+1),
	}
}

// SetColors maps the current palette stops onto the rings.
func (t *TubeRenderer) SetColors(stops []palette.Color) {
	if len(stops) == 0 {
		return
	}
	for j, s := range t.ringStops {
		if s >= len(stops) {
			s = len(stops) - 1
		}
		t.colors[j] = rgba(stops[s])
	}
}

// Draw renders every tube. Each triangle takes the color of its first
// vertex's ring. Call inside BeginMode3D.
func (t *TubeRenderer) Draw() {
	f := t.field
	sides := int32(f.Layout.Sides)
	perTube := f.VerticesPerTube()

	// The template winds inconsistently with raylib's front face
	rl.DisableBackfaceCulling()
	defer rl.EnableBackfaceCulling()

	for tb := 0; tb < f.TubeCount(); tb++ {
		base := tb * perTube
		for i := 0; i+2 < len(f.Indices); i += 3 {
			i0, i1, i2 := f.Indices[i], f.Indices[i+1], f.Indices[i+2]
			col := t.colors[i0/sides]
			rl.DrawTriangle3D(
				vec3(f.Vertices[base+int(i0)].Pos),
				vec3(f.Vertices[base+int(i1)].Pos),
				vec3(f.Vertices[base+int(i2)].Pos),
				col,
			)
		}
	}
}
