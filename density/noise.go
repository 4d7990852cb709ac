package density

import (
	"image"
	"image/color"
	"math"

	"github.com/ojrac/opensimplex-go"
)

// NoiseParams controls the procedural density map.
type NoiseParams struct {
	Seed      int64
	Frequency float64
	Octaves   int
	Width     int
	Height    int
}

// Procedural bakes an equirectangular fBm density map. Noise is evaluated on
// the unit sphere so the map has no seam at U=0/1 and no pinching at the poles.
// Arrival and destination use independent noise streams.
func Procedural(p NoiseParams) *Image {
	if p.Width < 1 {
		p.Width = 256
	}
	if p.Height < 1 {
		p.Height = 128
	}
	if p.Octaves < 1 {
		p.Octaves = 1
	}

	arrival := opensimplex.NewNormalized(p.Seed)
	destination := opensimplex.NewNormalized(p.Seed + 1)

	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for y := 0; y < p.Height; y++ {
		v := (float64(y) + 0.5) / float64(p.Height)
		theta := v * math.Pi
		for x := 0; x < p.Width; x++ {
			u := (float64(x) + 0.5) / float64(p.Width)
			phi := u * 2 * math.Pi
			sx := math.Sin(theta) * math.Cos(phi)
			sy := math.Cos(theta)
			sz := math.Sin(theta) * math.Sin(phi)

			a := fbm(arrival, sx, sy, sz, p.Frequency, p.Octaves)
			d := fbm(destination, sx, sy, sz, p.Frequency, p.Octaves)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(a * 255),
				B: uint8(d * 255),
				A: 255,
			})
		}
	}
	return NewImage(img)
}

// fbm sums octaves of normalized noise and rescales the result to [0, 1].
func fbm(n opensimplex.Noise, x, y, z, freq float64, octaves int) float64 {
	var sum, norm float64
	amp := 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * n.Eval3(x*freq, y*freq, z*freq)
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	v := sum / norm
	return math.Max(0, math.Min(1, v))
}
