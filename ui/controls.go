package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/scene"
)

// ControlsPanel renders the raygui sliders and toggles.
type ControlsPanel struct {
	renderer  *Renderer
	overlays  *OverlayRegistry
	x, y      int32
	width     int32
	maxRadius float32
}

// NewControlsPanel creates a new controls panel. maxRadius bounds the tube
// and marker radius sliders.
func NewControlsPanel(x, y, width int32, overlays *OverlayRegistry, maxRadius float32) *ControlsPanel {
	return &ControlsPanel{
		renderer:  NewRenderer(),
		overlays:  overlays,
		x:         x,
		y:         y,
		width:     width,
		maxRadius: maxRadius,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and applies user edits to state.
// Returns true if the resample button was pressed.
func (c *ControlsPanel) Draw(state *scene.Settings) bool {
	r := c.renderer
	padding := r.Theme.Padding
	rowHeight := int32(38)
	panelHeight := rowHeight*5 + int32(len(c.overlays.All()))*r.Theme.LineHeight + padding*4 + 90

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := c.y + padding
	sliderWidth := float32(c.width - padding*2 - 60)
	resample := false

	slider := func(label, format string, value *float64, lo, hi float32) {
		rl.DrawText(label, int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		cur := float32(*value)
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y + 14), Width: sliderWidth, Height: 16},
			"", "",
			cur, lo, hi,
		)
		rl.DrawText(fmt.Sprintf(format, *value), int32(x+sliderWidth+8), y+16, r.Theme.FontSize, r.Theme.ValueColor)
		if next != cur {
			*value = float64(next)
		}
		y += rowHeight
	}

	y = r.DrawSectionHeader(int32(x), y, "Arcs")
	slider("Tube radius", "%.3f", &state.TubeRadius, 0.005, c.maxRadius)
	slider("Color change speed", "%.2f", &state.ColorChangeSpeed, 0, 2)
	slider("Noise amplitude", "%.2f", &state.NoiseAmplitude, 0, 10)
	slider("Noise speed", "%.2f", &state.NoiseSpeed, 0, 4)
	slider("Node point radius", "%.2f", &state.NodePointRadius, 0.05, c.maxRadius*4)

	show := gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Show node points", state.ShowNodePoints)
	if show != state.ShowNodePoints {
		state.ShowNodePoints = show
		c.overlays.SetEnabled(OverlayNodePoints, show)
	}
	y += 24

	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: 110, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + 120, Y: float32(y), Width: 110, Height: 24}, "Resample") {
		resample = true
	}
	y += 34

	y = r.DrawSectionHeader(int32(x), y, "Overlays")
	for _, desc := range c.overlays.All() {
		c.drawToggle(int32(x), y, desc, c.overlays.IsEnabled(desc.ID), c.width-padding*2)
		y += r.Theme.LineHeight
	}

	return resample
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
