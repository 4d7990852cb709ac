package density

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func quadrantImage() *image.NRGBA {
	// Left half red (arrival), right half blue (destination)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{A: 255}
			if x < 2 {
				c.R = 255
			} else {
				c.B = 255
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestImageSample(t *testing.T) {
	field := NewImage(quadrantImage())

	tests := []struct {
		name     string
		u, v     float64
		wantA    float64
		wantDest float64
	}{
		{"left", 0.1, 0.5, 1, 0},
		{"right", 0.9, 0.5, 0, 1},
		{"boundary pixel", 0.5, 0.0, 0, 1},
		{"clamped high", 1.5, 2.0, 0, 1},
		{"clamped low", -1, -1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, d := field.Sample(tt.u, tt.v)
			if math.Abs(a-tt.wantA) > 1e-9 || math.Abs(d-tt.wantDest) > 1e-9 {
				t.Errorf("Sample(%v, %v) = (%v, %v), want (%v, %v)", tt.u, tt.v, a, d, tt.wantA, tt.wantDest)
			}
		})
	}
}

func TestImageSampleIgnoresAlpha(t *testing.T) {
	tests := []struct {
		name  string
		alpha uint8
	}{
		{"opaque", 255},
		{"half", 128},
		{"faint", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
			img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 10, B: 100, A: tt.alpha})

			a, d := NewImage(img).Sample(0.5, 0.5)
			if a != 200.0/255 || d != 100.0/255 {
				t.Errorf("Sample = (%v, %v), want (%v, %v)", a, d, 200.0/255, 100.0/255)
			}
		})
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "density.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, quadrantImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	field, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if w, h := field.Size(); w != 4 || h != 2 {
		t.Errorf("size = %dx%d, want 4x2", w, h)
	}
	if a, _ := field.Sample(0, 0); a != 1 {
		t.Errorf("arrival at origin = %v, want 1", a)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestUniform(t *testing.T) {
	a, d := Uniform(0.25, 0.75).Sample(0.3, 0.9)
	if a != 0.25 || d != 0.75 {
		t.Errorf("Uniform sample = (%v, %v)", a, d)
	}
}

func TestProcedural(t *testing.T) {
	p := NoiseParams{Seed: 3, Frequency: 2, Octaves: 3, Width: 64, Height: 32}
	field := Procedural(p)

	if w, h := field.Size(); w != 64 || h != 32 {
		t.Fatalf("size = %dx%d", w, h)
	}

	var sumA, sumD float64
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			a, d := field.Sample((float64(x)+0.5)/64, (float64(y)+0.5)/32)
			if a < 0 || a > 1 || d < 0 || d > 1 {
				t.Fatalf("sample out of range: (%v, %v)", a, d)
			}
			sumA += a
			sumD += d
		}
	}
	if sumA == 0 || sumD == 0 {
		t.Error("procedural map has an empty channel")
	}

	// Same seed, same map
	again := Procedural(p)
	a1, d1 := field.Sample(0.37, 0.61)
	a2, d2 := again.Sample(0.37, 0.61)
	if a1 != a2 || d1 != d2 {
		t.Error("procedural map is not deterministic for a fixed seed")
	}
}
