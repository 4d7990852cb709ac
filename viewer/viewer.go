// Package viewer runs a scene in a raylib window: orbit camera input,
// the 3D pass and the HUD and control panels.
package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/camera"
	"github.com/pthm-cable/arcglobe/config"
	"github.com/pthm-cable/arcglobe/renderer"
	"github.com/pthm-cable/arcglobe/scene"
	"github.com/pthm-cable/arcglobe/ui"
)

// Viewer draws a scene and feeds user input back into it.
type Viewer struct {
	scene  *scene.Scene
	camera *camera.Camera

	screenWidth  int32
	screenHeight int32

	background *renderer.BackgroundRenderer
	globe      *renderer.GlobeRenderer
	tubes      *renderer.TubeRenderer
	markers    *renderer.MarkerRenderer
	densityTex *renderer.DensityTexture // nil without an image-backed density map
	generation int                      // Scene generation the tube renderers were built for

	overlays *ui.OverlayRegistry
	hud      *ui.HUD
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel

	markerRings, markerSlices int
}

// New creates the renderers for s. Must be called after the window is created.
func New(s *scene.Scene) *Viewer {
	cfg := config.Cfg()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	mesh, transform := s.Mesh()
	field, img := s.Density()
	distance := cfg.Globe.Radius * transform.Scale * 3

	v := &Viewer{
		scene:        s,
		camera:       camera.New(transform.Position, distance),
		screenWidth:  w,
		screenHeight: h,
		background: renderer.NewBackgroundRenderer(w, h,
			rl.Color{R: 6, G: 10, B: 24, A: 255},
			rl.Color{R: 22, G: 26, B: 44, A: 255},
		),
		globe:        renderer.NewGlobeRenderer(mesh, transform, field, rl.Color{R: 34, G: 52, B: 78, A: 255}),
		overlays:     ui.NewOverlayRegistry(),
		hud:          ui.NewHUD(),
		perf:         ui.NewPerfPanel(w-330, 10, 320),
		markerRings:  cfg.Links.MarkerRings,
		markerSlices: cfg.Links.MarkerSlices,
	}
	v.camera.AutoRotate = 0.05
	v.controls = ui.NewControlsPanel(10, 110, 300, v.overlays, float32(cfg.Links.Radius*8))
	if img != nil {
		v.densityTex = renderer.NewDensityTexture(img)
	}

	v.overlays.SetEnabled(ui.OverlayTubes, true)
	v.overlays.SetEnabled(ui.OverlayNodePoints, s.Settings.ShowNodePoints)
	v.overlays.SetEnabled(ui.OverlayControls, true)

	v.syncTubes()
	return v
}

// syncTubes rebuilds the tube renderers after the scene resamples.
func (v *Viewer) syncTubes() {
	if v.tubes != nil && v.generation == v.scene.Generation() {
		return
	}
	f := v.scene.Tubes()
	v.tubes = renderer.NewTubeRenderer(f)
	v.markers = renderer.NewMarkerRenderer(f, v.scene.Settings.NodePointRadius, v.markerRings, v.markerSlices)
	v.generation = v.scene.Generation()
	slog.Debug("tube renderers rebuilt", "generation", v.generation)
}

// Update handles input and advances the scene by one frame.
func (v *Viewer) Update() error {
	v.handleInput()

	dt := float64(rl.GetFrameTime())
	v.camera.Advance(dt)
	if err := v.scene.Step(dt); err != nil {
		return err
	}
	v.syncTubes()
	return nil
}

// Unload frees GPU resources.
func (v *Viewer) Unload() {
	if v.densityTex != nil {
		v.densityTex.Unload()
	}
}
