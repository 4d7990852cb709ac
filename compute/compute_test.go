package compute

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/sampler"
	"github.com/pthm-cable/arcglobe/tube"
)

const globeRadius = 50.0

func randomOnSphere(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		if n := r3.Norm(v); n > 0.1 && n <= 1 {
			return r3.Scale(globeRadius/n, v)
		}
	}
}

func globeField(t *testing.T, tubes, rings, sides int) *tube.Field {
	t.Helper()
	rng := rand.New(rand.NewSource(3))
	pairs := make([]sampler.LinkPair, tubes)
	for i := range pairs {
		pairs[i] = sampler.LinkPair{From: randomOnSphere(rng), To: randomOnSphere(rng)}
	}
	f, err := tube.Build(pairs, tube.Layout{Rings: rings, Sides: sides})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func testParams() Params {
	return Params{
		Time:           1.7,
		Radius:         0.25,
		Height:         1.0,
		Length:         0.35,
		NoiseFrequency: 0.05,
		NoiseAmplitude: 1.5,
		NoiseSpeed:     0.4,
	}
}

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func boundBackend(t *testing.T, f *tube.Field, workers int) *CPUBackend {
	t.Helper()
	b := NewCPUBackend(workers, 11)
	if err := b.Bind(f); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestDispatchNotBound(t *testing.T) {
	b := NewCPUBackend(2, 1)
	if err := b.Dispatch(InitSegment, testParams()); !errors.Is(err, ErrNotBound) {
		t.Errorf("err = %v, want ErrNotBound", err)
	}
	if err := b.Bind(nil); !errors.Is(err, ErrNotBound) {
		t.Errorf("Bind(nil) err = %v, want ErrNotBound", err)
	}

	f := globeField(t, 2, 4, 4)
	if err := b.Bind(f); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	if err := b.Dispatch(ApplyNoise, testParams()); !errors.Is(err, ErrNotBound) {
		t.Errorf("after Close err = %v, want ErrNotBound", err)
	}
}

func TestDispatchUnknownKernel(t *testing.T) {
	b := boundBackend(t, globeField(t, 1, 2, 3), 1)
	if err := b.Dispatch(Kernel(99), testParams()); err == nil {
		t.Error("expected error for unknown kernel")
	}
	if Kernel(99).String() != "unknown" {
		t.Errorf("String = %q", Kernel(99).String())
	}
}

func TestInitSegment(t *testing.T) {
	const rings = 12
	f := globeField(t, 5, rings, 6)
	b := boundBackend(t, f, 1)
	if err := b.Dispatch(InitSegment, testParams()); err != nil {
		t.Fatal(err)
	}

	for i, link := range f.Links {
		first := f.Segments[f.SegmentIndex(i, 0)]
		last := f.Segments[f.SegmentIndex(i, rings)]
		if first.Pos != link.From {
			t.Errorf("tube %d: first segment %v, want %v", i, first.Pos, link.From)
		}
		if !vecNear(last.Pos, link.To, 1e-9) {
			t.Errorf("tube %d: last segment %v, want %v", i, last.Pos, link.To)
		}

		for j := 0; j <= rings; j++ {
			seg := f.Segments[f.SegmentIndex(i, j)]
			if seg.Index != int32(j) {
				t.Errorf("tube %d ring %d: Index = %d", i, j, seg.Index)
			}
			if seg.Pos != seg.InitPos {
				t.Errorf("tube %d ring %d: Pos and InitPos differ after init", i, j)
			}
		}

		// The middle of the arc is lifted off the chord by the full amount
		mid := f.Segments[f.SegmentIndex(i, rings/2)].Pos
		chordMid := lerp(link.From, link.To, 0.5)
		lift := 1.0 + 0.35*r3.Norm(r3.Sub(link.To, link.From))
		if got := r3.Norm(r3.Sub(mid, chordMid)); math.Abs(got-lift) > 1e-9 {
			t.Errorf("tube %d: mid lift = %v, want %v", i, got, lift)
		}
		if r3.Norm(mid) <= r3.Norm(chordMid) {
			t.Errorf("tube %d: arc bends inward", i)
		}
	}
}

func TestApplyNoiseKeepsEndpointsPinned(t *testing.T) {
	const rings = 10
	f := globeField(t, 8, rings, 4)
	b := boundBackend(t, f, 1)
	p := testParams()
	for _, k := range []Kernel{InitSegment, ApplyNoise} {
		if err := b.Dispatch(k, p); err != nil {
			t.Fatal(err)
		}
	}

	moved := 0
	// Each axis of the noise stays within about [-1, 1]; allow slack
	limit := 2 * p.NoiseAmplitude * math.Sqrt(3)
	for i := range f.Links {
		for j := 0; j <= rings; j++ {
			seg := f.Segments[f.SegmentIndex(i, j)]
			d := r3.Norm(r3.Sub(seg.Pos, seg.InitPos))
			if j == 0 || j == rings {
				if d != 0 {
					t.Errorf("tube %d ring %d: endpoint moved by %v", i, j, d)
				}
				continue
			}
			if d > limit {
				t.Errorf("tube %d ring %d: displacement %v exceeds %v", i, j, d, limit)
			}
			if d > 0 {
				moved++
			}
		}
	}
	if moved == 0 {
		t.Error("noise displaced no segments")
	}
}

func TestApplyNoiseZeroAmplitude(t *testing.T) {
	f := globeField(t, 3, 6, 4)
	b := boundBackend(t, f, 1)
	p := testParams()
	p.NoiseAmplitude = 0
	b.Dispatch(InitSegment, p)
	b.Dispatch(ApplyNoise, p)
	for i, seg := range f.Segments {
		if seg.Pos != seg.InitPos {
			t.Fatalf("segment %d moved with zero amplitude", i)
		}
	}
}

func TestUpdateVertexRings(t *testing.T) {
	const rings, sides = 8, 6
	f := globeField(t, 4, rings, sides)
	b := boundBackend(t, f, 1)
	p := testParams()
	for _, k := range FrameKernels {
		if err := b.Dispatch(k, p); err != nil {
			t.Fatal(err)
		}
	}

	for i := range f.Links {
		for j := 0; j <= rings; j++ {
			seg := f.Segments[f.SegmentIndex(i, j)]
			if math.Abs(r3.Norm(seg.Direction)-1) > 1e-9 {
				t.Errorf("tube %d ring %d: direction not unit", i, j)
			}
			if math.Abs(r3.Dot(seg.Direction, seg.Normal)) > 1e-9 {
				t.Errorf("tube %d ring %d: normal not perpendicular to direction", i, j)
			}

			for k := 0; k < sides; k++ {
				v := f.Vertices[f.VertexIndex(i, j, k)]
				if got := r3.Norm(r3.Sub(v.Pos, seg.Pos)); math.Abs(got-p.Radius) > 1e-9 {
					t.Errorf("vertex (%d,%d,%d) at distance %v, want %v", i, j, k, got, p.Radius)
				}
				if math.Abs(r3.Norm(v.Normal)-1) > 1e-9 {
					t.Errorf("vertex (%d,%d,%d) normal not unit", i, j, k)
				}
				if math.Abs(r3.Dot(v.Normal, seg.Direction)) > 1e-9 {
					t.Errorf("vertex (%d,%d,%d) normal not in ring plane", i, j, k)
				}
				wantU := float64(k) / sides
				wantV := float64(j) / rings
				if v.UV.U != wantU || v.UV.V != wantV {
					t.Errorf("vertex (%d,%d,%d) UV = %+v, want (%v,%v)", i, j, k, v.UV, wantU, wantV)
				}
			}
		}
	}
}

func TestUpdateTargetPosition(t *testing.T) {
	const rings = 5
	f := globeField(t, 6, rings, 3)
	b := boundBackend(t, f, 1)
	for _, k := range FrameKernels {
		if err := b.Dispatch(k, testParams()); err != nil {
			t.Fatal(err)
		}
	}
	for i := range f.Links {
		if f.Endpoints[2*i] != f.Segments[f.SegmentIndex(i, 0)].Pos {
			t.Errorf("tube %d: from marker not on first segment", i)
		}
		if f.Endpoints[2*i+1] != f.Segments[f.SegmentIndex(i, rings)].Pos {
			t.Errorf("tube %d: to marker not on last segment", i)
		}
	}
}

func TestMarkersSitExactlyOnSampledPoints(t *testing.T) {
	pairs := []sampler.LinkPair{{
		From: r3.Vec{X: -31.2, Y: 12.5, Z: 36.9},
		To:   r3.Vec{X: 7.154858728468141, Y: 48.556092958311694, Z: 8.2159253321231},
	}}
	f, err := tube.Build(pairs, tube.Layout{Rings: 8, Sides: 4})
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipeline(boundBackend(t, f, 1))
	if err := p.Reseed(testParams()); err != nil {
		t.Fatal(err)
	}
	if err := p.Frame(testParams()); err != nil {
		t.Fatal(err)
	}

	if f.Endpoints[0] != pairs[0].From {
		t.Errorf("from marker = %v, want %v", f.Endpoints[0], pairs[0].From)
	}
	if f.Endpoints[1] != f.InitTargets[0] {
		t.Errorf("to marker = %v, want %v", f.Endpoints[1], f.InitTargets[0])
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	serial := globeField(t, 200, 16, 8)
	parallel := globeField(t, 200, 16, 8)

	bs := boundBackend(t, serial, 1)
	bp := boundBackend(t, parallel, 4)

	for frame := 0; frame < 3; frame++ {
		p := testParams()
		p.Time = float64(frame) * 0.016
		ps, pp := NewPipeline(bs), NewPipeline(bp)
		if err := ps.Frame(p); err != nil {
			t.Fatal(err)
		}
		if err := pp.Frame(p); err != nil {
			t.Fatal(err)
		}
	}

	for i := range serial.Vertices {
		if serial.Vertices[i] != parallel.Vertices[i] {
			t.Fatalf("vertex %d differs: %+v vs %+v", i, serial.Vertices[i], parallel.Vertices[i])
		}
	}
	for i := range serial.Endpoints {
		if serial.Endpoints[i] != parallel.Endpoints[i] {
			t.Fatalf("endpoint %d differs", i)
		}
	}
}

func TestEmptyField(t *testing.T) {
	f := globeField(t, 0, 4, 4)
	b := boundBackend(t, f, 4)
	if err := NewPipeline(b).Frame(testParams()); err != nil {
		t.Errorf("empty field frame failed: %v", err)
	}
}

// recordingBackend logs every dispatch and can fail on a chosen kernel.
type recordingBackend struct {
	calls  []Kernel
	failOn Kernel
	fail   bool
	closed bool
}

func (r *recordingBackend) Bind(*tube.Field) error { return nil }

func (r *recordingBackend) Dispatch(k Kernel, _ Params) error {
	r.calls = append(r.calls, k)
	if r.fail && k == r.failOn {
		return ErrNotBound
	}
	return nil
}

func (r *recordingBackend) Close() error {
	r.closed = true
	return nil
}

type phaseLog []string

func (l *phaseLog) StartPhase(phase string) { *l = append(*l, phase) }

func TestPipelineOrder(t *testing.T) {
	rec := &recordingBackend{}
	var phases phaseLog
	p := NewPipeline(rec)
	p.SetPhaseTimer(&phases)

	if err := p.Reseed(Params{}); err != nil {
		t.Fatal(err)
	}
	if err := p.Frame(Params{}); err != nil {
		t.Fatal(err)
	}

	want := []Kernel{InitSegment, InitSegment, ApplyNoise, UpdateVertex, UpdateTargetPosition}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, rec.calls[i], want[i])
		}
	}

	wantPhases := []string{"init_segment", "init_segment", "apply_noise", "update_vertex", "update_target_position"}
	for i := range wantPhases {
		if phases[i] != wantPhases[i] {
			t.Errorf("phase %d = %q, want %q", i, phases[i], wantPhases[i])
		}
	}
	if p.Frames() != 1 {
		t.Errorf("frames = %d, want 1", p.Frames())
	}

	if err := p.Close(); err != nil || !rec.closed {
		t.Error("Close did not reach the backend")
	}
}

func TestPipelineStopsOnError(t *testing.T) {
	rec := &recordingBackend{fail: true, failOn: ApplyNoise}
	p := NewPipeline(rec)

	err := p.Frame(Params{})
	if !errors.Is(err, ErrNotBound) {
		t.Fatalf("err = %v, want wrapped ErrNotBound", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("calls after failure = %v, want stop at apply_noise", rec.calls)
	}
	if p.Frames() != 0 {
		t.Errorf("failed frame counted")
	}
}
