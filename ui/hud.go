package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/palette"
	"github.com/pthm-cable/arcglobe/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Tubes       int
	Triangles   int // Globe triangles
	Frame       int
	FPS         int32
	Palette     string
	Colors      []palette.Color
	Paused      bool
	DensityMode string // "texture", "procedural", "disabled" or "uniform"
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tubes: %d | Globe triangles: %d | Density: %s", data.Tubes, data.Triangles, data.DensityMode),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | FPS: %d | Palette: %s", data.Frame, data.FPS, data.Palette),
		10, 55, 16, rl.LightGray,
	)
	h.renderer.DrawPaletteStrip(10, 77, 200, 8, data.Colors)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 92, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	height := lineHeight*int32(len(telemetry.Phases)+2) + padding*2 + 4

	r.DrawPanel(p.x, p.y, p.width, height)
	x := p.x + padding
	y := r.DrawSectionHeader(x, p.y+padding, "Frame Timing")

	y = r.DrawLabelValue(x, y, "avg update", stats.AvgUpdate.Round(time.Microsecond).String())
	for _, phase := range telemetry.Phases {
		y = r.DrawBar(x, y, phase, stats.PhasePct[phase], p.width-padding*2)
	}
}
