package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// UVSphere generates a latitude/longitude sphere centered on the origin.
// UVs are equirectangular: U runs east with longitude, V runs from the north
// pole (0) to the south pole (1), matching image row order.
// The seam column is duplicated so U reaches 1; degenerate pole triangles are
// not emitted.
func UVSphere(radius float64, rings, slices int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if slices < 3 {
		slices = 3
	}

	cols := slices + 1
	m := &Mesh{
		Vertices:  make([]r3.Vec, 0, (rings+1)*cols),
		UVs:       make([]UV, 0, (rings+1)*cols),
		Triangles: make([]int, 0, 6*rings*slices),
	}

	for r := 0; r <= rings; r++ {
		v := float64(r) / float64(rings)
		theta := v * math.Pi
		y := math.Cos(theta)
		ringR := math.Sin(theta)
		for s := 0; s <= slices; s++ {
			u := float64(s) / float64(slices)
			phi := u * 2 * math.Pi
			m.Vertices = append(m.Vertices, r3.Vec{
				X: radius * ringR * math.Cos(phi),
				Y: radius * y,
				Z: -radius * ringR * math.Sin(phi),
			})
			m.UVs = append(m.UVs, UV{U: u, V: v})
		}
	}

	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			a := r*cols + s
			b := a + cols
			if r != 0 {
				m.Triangles = append(m.Triangles, a, b, a+1)
			}
			if r != rings-1 {
				m.Triangles = append(m.Triangles, a+1, b, b+1)
			}
		}
	}

	return m
}

// SphereUV returns the equirectangular UV of a point on a UVSphere centered
// on the origin. The origin itself maps to the north pole.
func SphereUV(p r3.Vec) UV {
	r := r3.Norm(p)
	if r == 0 {
		return UV{}
	}
	v := math.Acos(math.Max(-1, math.Min(1, p.Y/r))) / math.Pi
	u := math.Atan2(-p.Z, p.X) / (2 * math.Pi)
	if u < 0 {
		u++
	}
	return UV{U: u, V: v}
}
