package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcglobe/density"
)

// DensityTexture uploads a density map for flat previews.
type DensityTexture struct {
	Texture       rl.Texture2D
	Width, Height int32
}

// NewDensityTexture uploads img. Must be called after the window is created.
func NewDensityTexture(img *density.Image) *DensityTexture {
	w, h := img.Size()
	rimg := rl.NewImageFromImage(img.Image())
	defer rl.UnloadImage(rimg)
	return &DensityTexture{
		Texture: rl.LoadTextureFromImage(rimg),
		Width:   int32(w),
		Height:  int32(h),
	}
}

// Draw renders the map stretched into dst.
func (d *DensityTexture) Draw(dst rl.Rectangle) {
	rl.DrawTexturePro(
		d.Texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(d.Width), Height: float32(d.Height)},
		dst,
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
}

// Unload frees the GPU texture.
func (d *DensityTexture) Unload() {
	rl.UnloadTexture(d.Texture)
}
