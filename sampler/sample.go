package sampler

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// LinkPair is one arrival point joined to one destination point.
type LinkPair struct {
	From r3.Vec
	To   r3.Vec
}

// Sample draws count points distributed by the channel's density.
// The result always has count entries. A slot whose cdf search fails keeps
// the zero vector and is counted in Skipped.
func (s *SurfaceSampler) Sample(ch Channel, count int, rng Rand) ([]r3.Vec, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if int(ch) >= numChannels {
		return nil, fmt.Errorf("unknown channel %d", ch)
	}
	if s.total[ch] <= 0 {
		return nil, fmt.Errorf("%w: %s channel", ErrZeroProbability, ch)
	}

	points, skipped := s.draw(s.cdf[ch], count, rng)
	s.skipped[ch] += skipped
	if skipped > 0 {
		slog.Warn("cdf search found no triangle", "channel", ch.String(), "skipped", skipped)
	}
	return points, nil
}

// draw fills count slots by cdf lookup.
func (s *SurfaceSampler) draw(cdf []float64, count int, rng Rand) ([]r3.Vec, int) {
	points := make([]r3.Vec, count)
	skipped := 0
	for i := range points {
		idx, ok := Bisect(cdf, rng.Float64())
		if !ok {
			skipped++
			continue
		}
		r1 := rng.Float64()
		r2 := rng.Float64()
		points[i] = s.pointOn(idx, r1, r2)
	}
	return points, skipped
}

// SampleUniform draws count points on triangles chosen uniformly by index,
// ignoring density and triangle area.
func (s *SurfaceSampler) SampleUniform(count int, rng Rand) ([]r3.Vec, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	n := s.mesh.TriangleCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrMalformedMesh)
	}

	points := make([]r3.Vec, count)
	for i := range points {
		idx := rng.Intn(n)
		r1 := rng.Float64()
		r2 := rng.Float64()
		points[i] = s.pointOn(idx, r1, r2)
	}
	return points, nil
}

// Pairs draws count arrival and count destination points and joins them by
// index. With uniform set, triangles are picked without density.
func (s *SurfaceSampler) Pairs(count int, rng Rand, uniform bool) ([]LinkPair, error) {
	var from, to []r3.Vec
	var err error
	if uniform {
		if from, err = s.SampleUniform(count, rng); err != nil {
			return nil, err
		}
		if to, err = s.SampleUniform(count, rng); err != nil {
			return nil, err
		}
	} else {
		if from, err = s.Sample(Arrival, count, rng); err != nil {
			return nil, err
		}
		if to, err = s.Sample(Destination, count, rng); err != nil {
			return nil, err
		}
	}

	pairs := make([]LinkPair, count)
	for i := range pairs {
		pairs[i] = LinkPair{From: from[i], To: to[i]}
	}
	return pairs, nil
}

// Bisect finds the triangle whose cdf bracket holds target.
//
// Once the range is down to two neighbours, right is returned without a
// final comparison. An exact cdf match returns that index. An empty table
// returns ok=false.
func Bisect(cdf []float64, target float64) (int, bool) {
	if len(cdf) == 0 {
		return 0, false
	}

	left, right := 0, len(cdf)-1
	for left <= right {
		if float64(right-left)/2 <= 0.5 {
			return right, true
		}

		mid := left + (right-left)/2
		switch {
		case cdf[mid] > target:
			right = mid
		case cdf[mid] < target:
			left = mid
		default:
			return mid, true
		}
	}
	return 0, false
}

// Barycentric maps two uniforms in [0,1) to area-uniform barycentric
// weights. a+b+c is 1 and each weight lies in [0,1].
func Barycentric(r1, r2 float64) (a, b, c float64) {
	sq := math.Sqrt(r1)
	a = 1 - sq
	b = r2 * sq
	c = 1 - a - b
	if c < 0 {
		// rounding when r1 is tiny and r2 is close to 1
		c = 0
	}
	return a, b, c
}
