package compute

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/tube"
)

const epsilon = 1e-9

// Per-axis offsets into the noise field so the three displacement
// components are uncorrelated.
var noiseOffsets = [3]r3.Vec{
	{},
	{X: 31.416, Y: 47.853, Z: 12.793},
	{X: 73.156, Y: 19.532, Z: 58.241},
}

// arch is the lift profile along a tube: zero at both ends, one in the middle.
func arch(j, rings int) float64 {
	if j <= 0 || j >= rings {
		return 0
	}
	return math.Sin(math.Pi * float64(j) / float64(rings))
}

// lerp returns a and b exactly at t=0 and t=1.
func lerp(a, b r3.Vec, t float64) r3.Vec {
	switch {
	case t <= 0:
		return a
	case t >= 1:
		return b
	}
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// outward returns the unit direction from center to p, falling back to
// the direction of fallback and then +Y when p sits on the center.
func outward(p, fallback, center r3.Vec) r3.Vec {
	d := r3.Sub(p, center)
	if r3.Norm(d) < epsilon {
		d = r3.Sub(fallback, center)
	}
	if r3.Norm(d) < epsilon {
		return r3.Vec{Y: 1}
	}
	return r3.Unit(d)
}

// perpendicular returns a unit vector orthogonal to dir, as close to hint as possible.
func perpendicular(dir, hint r3.Vec) r3.Vec {
	n := r3.Sub(hint, r3.Scale(r3.Dot(hint, dir), dir))
	if r3.Norm(n) < epsilon {
		axis := r3.Vec{X: 1}
		if math.Abs(dir.X) > 0.9 {
			axis = r3.Vec{Y: 1}
		}
		n = r3.Cross(dir, axis)
	}
	return r3.Unit(n)
}

// initSegments lays tubes [t0, t1) on their resting arcs.
func initSegments(f *tube.Field, t0, t1 int, p Params) {
	rings := f.Layout.Rings
	for t := t0; t < t1; t++ {
		from, to := f.Links[t].From, f.Links[t].To
		lift := p.Height + p.Length*r3.Norm(r3.Sub(to, from))

		for j := 0; j <= rings; j++ {
			s := float64(j) / float64(rings)
			pos := lerp(from, to, s)
			if a := arch(j, rings); a != 0 {
				pos = r3.Add(pos, r3.Scale(lift*a, outward(pos, from, p.Center)))
			}

			seg := &f.Segments[f.SegmentIndex(t, j)]
			seg.Index = int32(j)
			seg.InitPos = pos
			seg.Pos = pos
		}
	}
}

// applyNoise displaces the interior segments of tubes [t0, t1).
func applyNoise(f *tube.Field, noise opensimplex.Noise, t0, t1 int, p Params) {
	rings := f.Layout.Rings
	w := p.Time * p.NoiseSpeed
	for t := t0; t < t1; t++ {
		for j := 0; j <= rings; j++ {
			seg := &f.Segments[f.SegmentIndex(t, j)]
			weight := arch(j, rings) * p.NoiseAmplitude
			if weight == 0 {
				seg.Pos = seg.InitPos
				continue
			}

			q := r3.Scale(p.NoiseFrequency, seg.InitPos)
			var d [3]float64
			for axis, off := range noiseOffsets {
				d[axis] = noise.Eval4(q.X+off.X, q.Y+off.Y, q.Z+off.Z, w)
			}
			seg.Pos = r3.Add(seg.InitPos, r3.Scale(weight, r3.Vec{X: d[0], Y: d[1], Z: d[2]}))
		}
	}
}

// updateVertices rebuilds the rings of tubes [t0, t1) around their segments.
func updateVertices(f *tube.Field, t0, t1 int, p Params) {
	rings, sides := f.Layout.Rings, f.Layout.Sides
	for t := t0; t < t1; t++ {
		for j := 0; j <= rings; j++ {
			seg := &f.Segments[f.SegmentIndex(t, j)]
			prev := f.Segments[f.SegmentIndex(t, max(j-1, 0))].Pos
			next := f.Segments[f.SegmentIndex(t, min(j+1, rings))].Pos

			dir := r3.Sub(next, prev)
			if r3.Norm(dir) < epsilon {
				dir = r3.Vec{X: 1}
			}
			dir = r3.Unit(dir)
			normal := perpendicular(dir, outward(seg.Pos, seg.InitPos, p.Center))
			binormal := r3.Cross(dir, normal)

			seg.Direction = dir
			seg.Normal = normal

			for k := 0; k < sides; k++ {
				theta := 2 * math.Pi * float64(k) / float64(sides)
				off := r3.Add(r3.Scale(math.Cos(theta), normal), r3.Scale(math.Sin(theta), binormal))

				v := &f.Vertices[f.VertexIndex(t, j, k)]
				v.Pos = r3.Add(seg.Pos, r3.Scale(p.Radius, off))
				v.Normal = off
				v.UV.U = float64(k) / float64(sides)
				v.UV.V = float64(j) / float64(rings)
			}
		}
	}
}

// updateTargets moves the node markers of tubes [t0, t1) onto the tube ends.
func updateTargets(f *tube.Field, t0, t1 int) {
	last := f.Layout.Rings
	for t := t0; t < t1; t++ {
		f.Endpoints[2*t] = f.Segments[f.SegmentIndex(t, 0)].Pos
		f.Endpoints[2*t+1] = f.Segments[f.SegmentIndex(t, last)].Pos
	}
}
