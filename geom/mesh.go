// Package geom provides the triangle mesh and placement transform the links
// are sampled on.
package geom

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrMalformedMesh reports a mesh whose arrays do not line up.
var ErrMalformedMesh = errors.New("malformed mesh")

// UV is a texture coordinate.
type UV struct {
	U, V float64
}

// Mesh is an indexed triangle mesh with one UV per vertex.
// Triangles is a flat index list, three entries per triangle.
type Mesh struct {
	Vertices  []r3.Vec
	UVs       []UV
	Triangles []int
}

// TriangleCount returns the number of whole triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Validate checks that the index list and UV array are consistent with the vertices.
func (m *Mesh) Validate() error {
	if len(m.Triangles)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrMalformedMesh, len(m.Triangles))
	}
	if len(m.UVs) < len(m.Vertices) {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrMalformedMesh, len(m.UVs), len(m.Vertices))
	}
	for i, idx := range m.Triangles {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at position %d out of range [0,%d)", ErrMalformedMesh, idx, i, len(m.Vertices))
		}
	}
	return nil
}

// Triangle returns the local-space corners of triangle i.
func (m *Mesh) Triangle(i int) r3.Triangle {
	return r3.Triangle{
		m.Vertices[m.Triangles[i*3]],
		m.Vertices[m.Triangles[i*3+1]],
		m.Vertices[m.Triangles[i*3+2]],
	}
}

// TriangleArea returns the unsigned area of triangle i.
func (m *Mesh) TriangleArea(i int) float64 {
	tri := m.Triangle(i)
	cross := r3.Cross(r3.Sub(tri[0], tri[1]), r3.Sub(tri[0], tri[2]))
	return r3.Norm(cross) * 0.5
}

// UVCentroid returns the average of the three UVs of triangle i.
func (m *Mesh) UVCentroid(i int) UV {
	a := m.UVs[m.Triangles[i*3]]
	b := m.UVs[m.Triangles[i*3+1]]
	c := m.UVs[m.Triangles[i*3+2]]
	return UV{
		U: (a.U + b.U + c.U) / 3,
		V: (a.V + b.V + c.V) / 3,
	}
}

// IndexCount returns the length of the index list.
func (m *Mesh) IndexCount() int {
	return len(m.Triangles)
}
