package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/ui"
)

// Radians per pixel of mouse drag
const dragSpeed = 0.005

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.scene.Settings.Paused = !v.scene.Settings.Paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.resample()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		if _, err := v.scene.SaveSnapshot(); err != nil {
			slog.Error("snapshot failed", "error", err)
		}
	}

	if key := rl.GetKeyPressed(); key != 0 {
		if id, enabled, ok := v.overlays.HandleKeyPress(key); ok && id == ui.OverlayNodePoints {
			v.scene.Settings.ShowNodePoints = enabled
		}
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.background.Resize(w, h)
	v.perf.SetPosition(w-330, 10)
}

// handleCameraInput processes orbit and zoom controls.
func (v *Viewer) handleCameraInput() {
	// Dragging over the control panel moves its sliders, not the camera
	overPanel := v.overlays.IsEnabled(ui.OverlayControls) && rl.GetMousePosition().X < 320

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) && !overPanel {
		d := rl.GetMouseDelta()
		v.camera.Rotate(-float64(d.X)*dragSpeed, float64(d.Y)*dragSpeed)
	}

	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Rotate(-0.02, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Rotate(0.02, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Rotate(0, 0.02)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Rotate(0, -0.02)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		if v.camera.AutoRotate == 0 {
			v.camera.AutoRotate = 0.05
		} else {
			v.camera.AutoRotate = 0
		}
	}
}

func (v *Viewer) resample() {
	if err := v.scene.Resample(); err != nil {
		slog.Error("resample failed", "error", err)
	}
}
