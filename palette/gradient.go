// Package palette bakes color gradients into fixed stop arrays and blends
// between them over time.
package palette

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// StopCount is the number of discrete colors a gradient is baked into.
const StopCount = 100

var (
	// ErrNoGradients is returned when a cycle is built from nothing.
	ErrNoGradients = errors.New("no gradients")
	// ErrBadColor is returned for unparseable color strings.
	ErrBadColor = errors.New("bad color")
)

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Lerp blends a toward b by t.
func Lerp(a, b Color, t float32) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// RGBA8 returns the color quantized to 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

func to8(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * 255))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseHex parses "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b, a uint8
	a = 255
	switch len(hex) {
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return Color{}, fmt.Errorf("%w %q: %v", ErrBadColor, s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return Color{}, fmt.Errorf("%w %q: %v", ErrBadColor, s, err)
		}
	default:
		return Color{}, fmt.Errorf("%w %q: want #rrggbb or #rrggbbaa", ErrBadColor, s)
	}
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, nil
}

// Key is a gradient color at a normalized position.
type Key struct {
	At    float64
	Color Color
}

// Gradient interpolates linearly between keys sorted by position.
// Positions outside the first and last key take the end colors.
type Gradient struct {
	Name string
	Keys []Key
}

// NewGradient returns a gradient with keys sorted by position.
func NewGradient(name string, keys ...Key) Gradient {
	sorted := append([]Key(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return Gradient{Name: name, Keys: sorted}
}

// Evaluate returns the color at t.
func (g Gradient) Evaluate(t float64) Color {
	switch len(g.Keys) {
	case 0:
		return Color{}
	case 1:
		return g.Keys[0].Color
	}
	if t <= g.Keys[0].At {
		return g.Keys[0].Color
	}
	last := g.Keys[len(g.Keys)-1]
	if t >= last.At {
		return last.Color
	}

	for i := 1; i < len(g.Keys); i++ {
		k1 := g.Keys[i]
		if t > k1.At {
			continue
		}
		k0 := g.Keys[i-1]
		span := k1.At - k0.At
		if span <= 0 {
			return k1.Color
		}
		return Lerp(k0.Color, k1.Color, float32((t-k0.At)/span))
	}
	return last.Color
}

// Discretize samples g at j/n for j in [0, n).
func Discretize(g Gradient, n int) []Color {
	colors := make([]Color, n)
	for j := range colors {
		colors[j] = g.Evaluate(float64(j) / float64(n))
	}
	return colors
}
