package tube

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/geom"
	"github.com/pthm-cable/arcglobe/sampler"
)

// ErrInvalidLayout is returned by Build for unusable ring or side counts.
var ErrInvalidLayout = errors.New("invalid tube layout")

// Vertex is one tube surface vertex, written by the compute stage.
type Vertex struct {
	Pos    r3.Vec
	Normal r3.Vec
	UV     geom.UV
}

// Segment is the per-ring animation state of a tube, written by the compute stage.
type Segment struct {
	Index     int32
	InitPos   r3.Vec
	Pos       r3.Vec
	Direction r3.Vec
	Normal    r3.Vec
}

// Link holds the endpoints a tube is drawn between.
type Link struct {
	From r3.Vec
	To   r3.Vec
}

// DrawArgs is the indirect draw argument block for the node markers:
// index count per instance, instance count, then three zeroed fields
// (start index, base vertex, start instance).
type DrawArgs [5]uint32

// IndexCountPerInstance returns the marker mesh index count.
func (a DrawArgs) IndexCountPerInstance() uint32 { return a[0] }

// InstanceCount returns the number of markers drawn.
func (a DrawArgs) InstanceCount() uint32 { return a[1] }

// Layout fixes the shape of every tube in a field.
type Layout struct {
	Rings            int // Ring transitions per tube; a tube has Rings+1 rings
	Sides            int // Vertices per ring
	MarkerIndexCount int // Index count of the node marker mesh
}

// Field is the complete set of buffers handed to the compute and render stages.
type Field struct {
	Layout Layout

	Indices     []int32 // Shared per-tube template, offsets relative to the tube's vertex block
	Vertices    []Vertex
	Segments    []Segment
	Links       []Link
	Endpoints   []r3.Vec // Node marker positions, from and to interleaved
	InitTargets []r3.Vec // One per tube, the original To position
	Args        DrawArgs
}

// Build allocates the buffers for one tube per pair. Vertices and segments
// start zeroed; the compute stage fills them.
func Build(pairs []sampler.LinkPair, layout Layout) (*Field, error) {
	if layout.Rings < 1 {
		return nil, fmt.Errorf("%w: rings must be >= 1, got %d", ErrInvalidLayout, layout.Rings)
	}
	if layout.Sides < 3 {
		return nil, fmt.Errorf("%w: sides must be >= 3, got %d", ErrInvalidLayout, layout.Sides)
	}
	if layout.MarkerIndexCount < 0 {
		return nil, fmt.Errorf("%w: negative marker index count", ErrInvalidLayout)
	}

	n := len(pairs)
	f := &Field{
		Layout:      layout,
		Indices:     IndexTemplate(layout.Rings, layout.Sides),
		Vertices:    make([]Vertex, n*layout.Sides*(layout.Rings+1)),
		Segments:    make([]Segment, n*(layout.Rings+1)),
		Links:       make([]Link, n),
		Endpoints:   make([]r3.Vec, 2*n),
		InitTargets: make([]r3.Vec, n),
		Args:        DrawArgs{uint32(layout.MarkerIndexCount), uint32(2 * n), 0, 0, 0},
	}

	for i, p := range pairs {
		f.Links[i] = Link{From: p.From, To: p.To}
		f.InitTargets[i] = p.To
		f.Endpoints[i*2] = p.From
		f.Endpoints[i*2+1] = p.To
	}

	slog.Info("tube field built",
		"tubes", n,
		"vertices", len(f.Vertices),
		"segments", len(f.Segments),
		"indices", len(f.Indices),
	)
	return f, nil
}

// TubeCount returns the number of tubes.
func (f *Field) TubeCount() int {
	return len(f.Links)
}

// SegmentsPerTube returns the number of rings per tube.
func (f *Field) SegmentsPerTube() int {
	return f.Layout.Rings + 1
}

// VerticesPerTube returns the size of one tube's vertex block.
func (f *Field) VerticesPerTube() int {
	return f.Layout.Sides * (f.Layout.Rings + 1)
}

// IndexCount returns the template length, the index count of one tube.
func (f *Field) IndexCount() int {
	return len(f.Indices)
}

// SegmentIndex returns the position of a tube's ring in Segments.
func (f *Field) SegmentIndex(tube, ring int) int {
	return tube*f.SegmentsPerTube() + ring
}

// VertexIndex returns the position of a tube's ring vertex in Vertices.
func (f *Field) VertexIndex(tube, ring, side int) int {
	return tube*f.VerticesPerTube() + ring*f.Layout.Sides + side
}
