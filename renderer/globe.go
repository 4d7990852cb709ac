package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/density"
	"github.com/pthm-cable/arcglobe/geom"
)

type globeTriangle struct {
	a, b, c rl.Vector3
	plain   rl.Color
	heat    rl.Color // Tinted by density: red = arrival, blue = destination
}

// GlobeRenderer draws the sampled mesh in world space.
type GlobeRenderer struct {
	triangles []globeTriangle
	wire      rl.Color
}

// NewGlobeRenderer bakes the mesh's world-space triangles and their
// density tint. A nil field leaves every triangle the base color.
func NewGlobeRenderer(mesh *geom.Mesh, transform geom.Transform, field density.Field, base rl.Color) *GlobeRenderer {
	g := &GlobeRenderer{
		triangles: make([]globeTriangle, mesh.TriangleCount()),
		wire:      rl.Color{R: base.R / 2, G: base.G / 2, B: base.B / 2, A: 120},
	}
	for i := range g.triangles {
		tri := mesh.Triangle(i)
		t := globeTriangle{
			a:     vec3(transform.Apply(tri[0])),
			b:     vec3(transform.Apply(tri[1])),
			c:     vec3(transform.Apply(tri[2])),
			plain: base,
			heat:  base,
		}
		if field != nil {
			uv := mesh.UVCentroid(i)
			arrival, destination := field.Sample(uv.U, uv.V)
			t.heat = tint(base, arrival, destination)
		}
		g.triangles[i] = t
	}
	return g
}

// tint mixes the arrival density into red and destination into blue.
func tint(base rl.Color, arrival, destination float64) rl.Color {
	w := clamp01(max(arrival, destination))
	mix := func(c uint8, target float64) uint8 {
		return uint8(min(float64(c)*(1-w)+target*w, 255))
	}
	return rl.Color{
		R: mix(base.R, 255*clamp01(arrival)),
		G: mix(base.G, 40),
		B: mix(base.B, 255*clamp01(destination)),
		A: base.A,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Draw renders the globe. Call inside BeginMode3D.
func (g *GlobeRenderer) Draw(showDensity, wireframe bool) {
	for i := range g.triangles {
		t := &g.triangles[i]
		col := t.plain
		if showDensity {
			col = t.heat
		}
		rl.DrawTriangle3D(t.a, t.b, t.c, col)
		if wireframe {
			rl.DrawLine3D(t.a, t.b, g.wire)
			rl.DrawLine3D(t.b, t.c, g.wire)
		}
	}
}

// TriangleCount returns the number of baked triangles.
func (g *GlobeRenderer) TriangleCount() int {
	return len(g.triangles)
}
