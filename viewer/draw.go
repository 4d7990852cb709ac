package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/renderer"
	"github.com/pthm-cable/arcglobe/ui"
)

const controlsLegend = "[Drag] Orbit  [Wheel] Zoom  [Home] Reset  [A] Auto-rotate  [R] Resample  [S] Snapshot  [Space] Pause  [Tab] Panel"

// Draw renders the frame and closes the scene's frame timing.
func (v *Viewer) Draw() {
	s := v.scene
	s.StartDraw()
	defer s.EndFrame()
	s.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	v.background.Draw()

	rl.BeginMode3D(renderer.Camera3D(v.camera))
	v.globe.Draw(v.overlays.IsEnabled(ui.OverlayDensity), v.overlays.IsEnabled(ui.OverlayWireframe))
	if v.overlays.IsEnabled(ui.OverlayTubes) {
		v.tubes.SetColors(s.Colors())
		v.tubes.Draw()
	}
	if s.Settings.ShowNodePoints {
		v.markers.SetRadius(s.Settings.NodePointRadius)
		v.markers.Draw()
	}
	rl.EndMode3D()

	v.drawUI()
	rl.EndDrawing()
}

// drawUI renders the HUD and any enabled panels.
func (v *Viewer) drawUI() {
	s := v.scene
	v.hud.Draw(ui.HUDData{
		Title:       "Arc Globe",
		Tubes:       s.Tubes().TubeCount(),
		Triangles:   v.globe.TriangleCount(),
		Frame:       s.Frame(),
		FPS:         rl.GetFPS(),
		Palette:     s.PaletteName(),
		Colors:      s.Colors(),
		Paused:      s.Settings.Paused,
		DensityMode: s.DensityMode(),
	})
	v.hud.DrawControls(v.screenHeight, controlsLegend)

	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.Draw(s.PerfStats())
	}
	if v.overlays.IsEnabled(ui.OverlayDensity) && v.densityTex != nil {
		w := float32(256)
		dst := rl.Rectangle{X: float32(v.screenWidth) - w - 10, Y: float32(v.screenHeight) - w/2 - 40, Width: w, Height: w / 2}
		v.densityTex.Draw(dst)
		rl.DrawRectangleLinesEx(dst, 1, rl.Gray)
	}
	if v.overlays.IsEnabled(ui.OverlayControls) {
		if v.controls.Draw(&s.Settings) {
			v.resample()
		}
	}
}
