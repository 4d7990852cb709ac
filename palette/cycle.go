package palette

import (
	"fmt"
	"math"

	"github.com/pthm-cable/arcglobe/config"
)

// Cycle holds one baked stop array per gradient and blends between
// neighbouring palettes.
type Cycle struct {
	palettes [][]Color
	names    []string
}

// NewCycle bakes every gradient into StopCount stops.
func NewCycle(gradients []Gradient) (*Cycle, error) {
	if len(gradients) == 0 {
		return nil, ErrNoGradients
	}
	c := &Cycle{
		palettes: make([][]Color, len(gradients)),
		names:    make([]string, len(gradients)),
	}
	for i, g := range gradients {
		c.palettes[i] = Discretize(g, StopCount)
		c.names[i] = g.Name
	}
	return c, nil
}

// FromConfig parses the configured gradients into a cycle.
func FromConfig(gradients []config.GradientConfig) (*Cycle, error) {
	if len(gradients) == 0 {
		return nil, ErrNoGradients
	}
	parsed := make([]Gradient, len(gradients))
	for i, gc := range gradients {
		keys := make([]Key, len(gc.Keys))
		for j, kc := range gc.Keys {
			col, err := ParseHex(kc.Color)
			if err != nil {
				return nil, fmt.Errorf("gradient %q key %d: %w", gc.Name, j, err)
			}
			keys[j] = Key{At: kc.At, Color: col}
		}
		parsed[i] = NewGradient(gc.Name, keys...)
	}
	return NewCycle(parsed)
}

// Len returns the number of palettes.
func (c *Cycle) Len() int {
	return len(c.palettes)
}

// Palette returns the baked stops of palette i.
func (c *Cycle) Palette(i int) []Color {
	return c.palettes[i]
}

// Name returns the name of palette i.
func (c *Cycle) Name(i int) string {
	return c.names[i]
}

// ChangeColor blends palette ⌊t⌋ toward the next palette, wrapping to the
// first after the last, by t-⌊t⌋. Indices outside [0, Len()) wrap in both
// directions, so t=-0.25 sits three quarters of the way from the last
// palette to the first.
func (c *Cycle) ChangeColor(t float64) []Color {
	n := len(c.palettes)
	base := math.Floor(t)
	from := int(math.Mod(base, float64(n)))
	if from < 0 {
		from += n
	}
	to := (from + 1) % n
	frac := float32(t - base)

	src, dst := c.palettes[from], c.palettes[to]
	out := make([]Color, len(src))
	for i := range src {
		out[i] = Lerp(src[i], dst[i], frac)
	}
	return out
}

// Repeat folds t into [0, length), like a sawtooth.
func Repeat(t, length float64) float64 {
	if length <= 0 {
		return 0
	}
	v := t - math.Floor(t/length)*length
	if v >= length {
		v = 0
	}
	return v
}

// StopFor maps ring j of a tube with rings transitions to a palette stop.
func StopFor(ring, rings int) int {
	if rings <= 0 {
		return 0
	}
	return ring * (StopCount - 1) / rings
}
