// Package density provides the two-channel density maps used to weight
// surface sampling.
package density

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Field is a 2D density map sampled at a UV coordinate.
// Both channels are in [0, 1].
type Field interface {
	Sample(u, v float64) (arrival, destination float64)
}

// Func adapts a plain function to the Field interface.
type Func func(u, v float64) (arrival, destination float64)

// Sample calls f.
func (f Func) Sample(u, v float64) (float64, float64) {
	return f(u, v)
}

// Uniform returns a field with the same density everywhere.
func Uniform(arrival, destination float64) Field {
	return Func(func(u, v float64) (float64, float64) {
		return arrival, destination
	})
}

// Image reads densities from an image: red is the arrival channel, blue is
// the destination channel. Lookups are nearest-pixel without filtering.
type Image struct {
	img    image.Image
	bounds image.Rectangle
}

// NewImage wraps an image as a density field.
func NewImage(img image.Image) *Image {
	return &Image{img: img, bounds: img.Bounds()}
}

// Load decodes a PNG, JPEG, BMP or WebP file into a density field.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening density texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding density texture %s: %w", path, err)
	}
	return NewImage(img), nil
}

// Size returns the image dimensions in pixels.
func (im *Image) Size() (int, int) {
	return im.bounds.Dx(), im.bounds.Dy()
}

// Image returns the wrapped image.
func (im *Image) Image() image.Image {
	return im.img
}

// Sample returns the straight-alpha red and blue channels of the pixel
// under (u, v), so alpha never scales the density. Coordinates outside
// [0,1) clamp to the border pixel.
func (im *Image) Sample(u, v float64) (float64, float64) {
	w, h := im.Size()
	if w == 0 || h == 0 {
		return 0, 0
	}
	x := clampInt(int(u*float64(w)), 0, w-1)
	y := clampInt(int(v*float64(h)), 0, h-1)

	c := color.NRGBAModel.Convert(im.img.At(im.bounds.Min.X+x, im.bounds.Min.Y+y)).(color.NRGBA)
	return float64(c.R) / 0xff, float64(c.B) / 0xff
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
