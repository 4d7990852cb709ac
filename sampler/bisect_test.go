package sampler

import (
	"math"
	"math/rand"
	"testing"
)

func TestBisect(t *testing.T) {
	cdf := []float64{0.1, 0.3, 0.6, 1.0}

	tests := []struct {
		name   string
		cdf    []float64
		target float64
		want   int
		wantOK bool
	}{
		{"empty", nil, 0.5, 0, false},
		{"single", []float64{1}, 0.5, 0, true},
		{"middle bracket", cdf, 0.35, 2, true},
		{"upper bracket", cdf, 0.7, 3, true},
		{"near one", cdf, 0.99, 3, true},
		{"exact match", cdf, 0.3, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Bisect(tt.cdf, tt.target)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Bisect(%v, %v) = (%d, %v), want (%d, %v)", tt.cdf, tt.target, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestBisectCollapseGuard pins the early return once the range is down to
// two neighbours: right wins without comparing against the left cdf.
// Targets below the first cdf therefore land on index 1, not 0.
func TestBisectCollapseGuard(t *testing.T) {
	tests := []struct {
		name   string
		cdf    []float64
		target float64
		want   int
	}{
		{"pair below first", []float64{0.5, 1.0}, 0.2, 1},
		{"pair above first", []float64{0.5, 1.0}, 0.7, 1},
		{"four below first", []float64{0.25, 0.5, 0.75, 1.0}, 0.1, 1},
		{"zero target", []float64{0.25, 0.5, 0.75, 1.0}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Bisect(tt.cdf, tt.target)
			if !ok || got != tt.want {
				t.Errorf("Bisect(%v, %v) = (%d, %v), want (%d, true)", tt.cdf, tt.target, got, ok, tt.want)
			}
		})
	}
}

func TestBisectPlateauTerminates(t *testing.T) {
	// Flat runs must not stall the search
	cdf := []float64{0, 0, 0, 0.5, 0.5, 0.5, 0.5, 1, 1, 1}
	for _, target := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		idx, ok := Bisect(cdf, target)
		if !ok || idx < 0 || idx >= len(cdf) {
			t.Errorf("Bisect(plateau, %v) = (%d, %v)", target, idx, ok)
		}
	}
}

func TestBisectMatchesLinearScanAwayFromStart(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	cdf := make([]float64, 200)
	var sum float64
	for i := range cdf {
		sum += rng.Float64() + 0.01
		cdf[i] = sum
	}
	for i := range cdf {
		cdf[i] /= sum
	}

	for n := 0; n < 1000; n++ {
		target := cdf[0] + rng.Float64()*(1-cdf[0])
		got, ok := Bisect(cdf, target)
		if !ok {
			t.Fatalf("no match for %v", target)
		}
		// first index whose cdf exceeds target
		want := 0
		for want < len(cdf) && cdf[want] <= target {
			want++
		}
		if cdf[got] == target {
			continue
		}
		if got != want {
			t.Fatalf("Bisect(%v) = %d, linear scan = %d", target, got, want)
		}
	}
}

func TestBarycentricWeightsInUnitSimplex(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	edges := [][2]float64{{0, 0}, {0, 0.999999}, {0.999999, 0}, {0.999999, 0.999999}, {1e-300, 0.9999999999}}

	check := func(r1, r2 float64) {
		a, b, c := Barycentric(r1, r2)
		if math.Abs(a+b+c-1) > 1e-12 {
			t.Fatalf("Barycentric(%v, %v) sums to %v", r1, r2, a+b+c)
		}
		for _, w := range []float64{a, b, c} {
			if w < 0 || w > 1 {
				t.Fatalf("Barycentric(%v, %v) = (%v, %v, %v) has weight outside [0,1]", r1, r2, a, b, c)
			}
		}
	}

	for _, e := range edges {
		check(e[0], e[1])
	}
	for i := 0; i < 10000; i++ {
		check(rng.Float64(), rng.Float64())
	}
}
