// Package sampler importance-samples points on a mesh surface using a
// two-channel density map.
//
// Each triangle is weighted by its area times the density at its UV centroid.
// Weights are normalized into a per-channel pdf/cdf table, and sampling picks
// a triangle by searching the cdf, then a uniform point inside it.
package sampler

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/density"
	"github.com/pthm-cable/arcglobe/geom"
)

var (
	// ErrNotPrepared is returned when sampling before Prepare.
	ErrNotPrepared = errors.New("sampler not prepared")
	// ErrZeroProbability is returned when a channel has no weight anywhere on the mesh.
	ErrZeroProbability = errors.New("total probability is zero")
	// ErrMalformedMesh is returned by Prepare for inconsistent mesh arrays.
	ErrMalformedMesh = geom.ErrMalformedMesh
)

// Channel selects one of the two density channels.
type Channel uint8

const (
	Arrival     Channel = iota // Red channel of the density map
	Destination                // Blue channel of the density map

	numChannels = 2
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case Arrival:
		return "arrival"
	case Destination:
		return "destination"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// Channels lists both channels in table order.
var Channels = [numChannels]Channel{Arrival, Destination}

// State is the lifecycle of a SurfaceSampler.
type State uint8

const (
	Uninitialized State = iota
	Prepared
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Prepared:
		return "prepared"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// TriangleWeight is one row of a channel's sampling table.
type TriangleWeight struct {
	Index int
	PDF   float64
	CDF   float64
}

// Rand is the random stream consumed by sampling. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// SurfaceSampler owns the weight tables derived from a mesh and density field.
type SurfaceSampler struct {
	mesh      *geom.Mesh
	transform geom.Transform
	field     density.Field

	state State
	err   error

	area    []float64
	total   [numChannels]float64
	weights [numChannels][]TriangleWeight
	cdf     [numChannels][]float64

	skipped [numChannels]int
}

// New creates a sampler for mesh placed by transform. field may be nil, in
// which case every triangle has zero density and density-driven sampling
// reports ErrZeroProbability.
func New(mesh *geom.Mesh, transform geom.Transform, field density.Field) *SurfaceSampler {
	return &SurfaceSampler{
		mesh:      mesh,
		transform: transform,
		field:     field,
	}
}

// State returns the current lifecycle state.
func (s *SurfaceSampler) State() State {
	return s.state
}

// Prepare validates the mesh and builds both channels' weight tables.
// It runs once; a failed Prepare leaves the sampler permanently failed.
func (s *SurfaceSampler) Prepare() error {
	switch s.state {
	case Prepared:
		return nil
	case Failed:
		return s.err
	}

	if s.mesh == nil {
		return s.fail(fmt.Errorf("%w: nil mesh", ErrMalformedMesh))
	}
	if err := s.mesh.Validate(); err != nil {
		return s.fail(err)
	}
	if s.field == nil {
		slog.Warn("no density field; all triangles get zero weight")
	}

	n := s.mesh.TriangleCount()
	s.area = make([]float64, n)

	// Pass 1: weighted areas and channel totals. pdf needs the global total,
	// so normalization waits for pass 2.
	var weighted [numChannels][]float64
	for _, ch := range Channels {
		weighted[ch] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		area := s.mesh.TriangleArea(i)
		s.area[i] = area

		arrival, destination := s.densityAt(i)
		weighted[Arrival][i] = arrival * area
		weighted[Destination][i] = destination * area
	}
	for _, ch := range Channels {
		s.total[ch] = floats.Sum(weighted[ch])
	}

	// Pass 2: normalized pdf and running cdf.
	for _, ch := range Channels {
		pdf := make([]float64, n)
		if s.total[ch] > 0 {
			floats.ScaleTo(pdf, 1/s.total[ch], weighted[ch])
		}
		cdf := make([]float64, n)
		floats.CumSum(cdf, pdf)

		table := make([]TriangleWeight, n)
		for i := range table {
			table[i] = TriangleWeight{Index: i, PDF: pdf[i], CDF: cdf[i]}
		}
		s.weights[ch] = table
		s.cdf[ch] = cdf
	}

	s.state = Prepared
	slog.Debug("sampler prepared",
		"triangles", n,
		"arrival_total", s.total[Arrival],
		"destination_total", s.total[Destination],
	)
	return nil
}

func (s *SurfaceSampler) fail(err error) error {
	s.state = Failed
	s.err = err
	return err
}

// densityAt samples the field at triangle i's UV centroid, clamped to [0,1].
func (s *SurfaceSampler) densityAt(i int) (float64, float64) {
	if s.field == nil {
		return 0, 0
	}
	uv := s.mesh.UVCentroid(i)
	a, d := s.field.Sample(uv.U, uv.V)
	return clamp01(a), clamp01(d)
}

// ready reports whether sampling is allowed.
func (s *SurfaceSampler) ready() error {
	switch s.state {
	case Prepared:
		return nil
	case Failed:
		return s.err
	default:
		return ErrNotPrepared
	}
}

// Weights returns the channel's weight table. Nil before Prepare.
func (s *SurfaceSampler) Weights(ch Channel) []TriangleWeight {
	return s.weights[ch]
}

// Total returns the unnormalized weighted area of a channel.
func (s *SurfaceSampler) Total(ch Channel) float64 {
	return s.total[ch]
}

// Areas returns the per-triangle areas computed by Prepare.
func (s *SurfaceSampler) Areas() []float64 {
	return s.area
}

// Skipped returns how many of the channel's sample slots were left at the
// zero vector because the cdf search found no triangle.
func (s *SurfaceSampler) Skipped(ch Channel) int {
	return s.skipped[ch]
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

// pointOn maps barycentric randoms to a world-space point on triangle idx.
func (s *SurfaceSampler) pointOn(idx int, r1, r2 float64) r3.Vec {
	a, b, c := Barycentric(r1, r2)
	tri := s.mesh.Triangle(idx)
	local := r3.Add(r3.Add(r3.Scale(a, tri[0]), r3.Scale(b, tri[1])), r3.Scale(c, tri[2]))
	return s.transform.Apply(local)
}
