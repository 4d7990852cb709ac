// Density map preview tool - shows a density map with sampled link
// endpoints plotted over it.
//
// Usage: go run ./cmd/densitypreview [-texture map.png]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/arcglobe/density"
	"github.com/pthm-cable/arcglobe/geom"
	"github.com/pthm-cable/arcglobe/renderer"
	"github.com/pthm-cable/arcglobe/sampler"
	"github.com/pthm-cable/arcglobe/telemetry"
)

const (
	windowWidth  = 1100
	windowHeight = 640
	previewW     = 720
	previewH     = previewW / 2
	panelWidth   = windowWidth - previewW - 30
)

// PreviewParams holds the procedural map and sampling parameters.
type PreviewParams struct {
	Seed      int64
	Frequency float32
	Octaves   int
	Count     int
	Uniform   bool
}

func defaultParams() PreviewParams {
	return PreviewParams{
		Seed:      7,
		Frequency: 3,
		Octaves:   4,
		Count:     300,
	}
}

// preview is one regenerated map with its samples.
type preview struct {
	texture *renderer.DensityTexture
	pairs   []sampler.LinkPair
	reports []telemetry.SamplingReport
	err     error
}

func main() {
	texturePath := flag.String("texture", "", "Density image to preview instead of the procedural map")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var fixed *density.Image
	if *texturePath != "" {
		img, err := density.Load(*texturePath)
		if err != nil {
			slog.Error("failed to load texture", "error", err)
			os.Exit(1)
		}
		fixed = img
	}

	rl.InitWindow(windowWidth, windowHeight, "Density Map Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	mesh := geom.UVSphere(1, 48, 96)
	params := defaultParams()
	var cur *preview
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			if cur != nil {
				cur.texture.Unload()
			}
			cur = generate(mesh, params, fixed)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Map with sampled endpoints
		dst := rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH}
		cur.texture.Draw(dst)
		rl.DrawRectangleLinesEx(dst, 1, rl.DarkGray)
		for _, p := range cur.pairs {
			plot(dst, p.From, rl.Color{R: 255, G: 230, B: 90, A: 255})
			plot(dst, p.To, rl.Color{R: 90, G: 255, B: 200, A: 255})
		}

		// Stats
		statsY := int32(previewH + 25)
		if cur.err != nil {
			rl.DrawText(cur.err.Error(), 15, statsY, 16, rl.Red)
		}
		for _, r := range cur.reports {
			statsY += 20
			rl.DrawText(fmt.Sprintf("%-11s weighted %d/%d  effective %.0f  p90 %.2e  max %.2e",
				r.Channel, r.Weighted, r.Triangles, r.EffectiveTriangles, r.PDFP90, r.PDFMax), 15, statsY, 16, rl.DarkGray)
		}
		rl.DrawText("yellow = arrival, green = destination", 15, statsY+25, 14, rl.Gray)

		// Control panel
		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Density Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label, left, right, shown string, value, lo, hi float32) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				left, right,
				value, lo, hi,
			)
			rl.DrawText(shown, int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
			return next
		}

		if fixed == nil {
			newFreq := slider("Frequency (base noise frequency)", "0.5", "10", fmt.Sprintf("%.1f", params.Frequency), params.Frequency, 0.5, 10)
			if newFreq != params.Frequency {
				params.Frequency = newFreq
				needsRegen = true
			}

			newOctaves := slider("Octaves (fBm detail level)", "1", "8", fmt.Sprintf("%d", params.Octaves), float32(params.Octaves), 1, 8)
			if int(newOctaves) != params.Octaves {
				params.Octaves = int(newOctaves)
				needsRegen = true
			}
		}

		newCount := slider("Links", "10", "2000", fmt.Sprintf("%d", params.Count), float32(params.Count), 10, 2000)
		if int(newCount) != params.Count {
			params.Count = int(newCount)
			needsRegen = true
		}

		newSeed := slider("Seed", "0", "99999", fmt.Sprintf("%d", params.Seed), float32(params.Seed), 0, 99999)
		if int64(newSeed) != params.Seed {
			params.Seed = int64(newSeed)
			needsRegen = true
		}

		uniform := gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 16, Height: 16}, "Ignore density (random triangles)", params.Uniform)
		if uniform != params.Uniform {
			params.Uniform = uniform
			needsRegen = true
		}
		panelY += 30

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsRegen = true
		}
		panelY += 55

		// Output YAML
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range yamlLines(params) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range yamlLines(params) {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}

	if cur != nil {
		cur.texture.Unload()
	}
}

// generate bakes the map, uploads it and samples params.Count links.
func generate(mesh *geom.Mesh, params PreviewParams, fixed *density.Image) *preview {
	img := fixed
	if img == nil {
		img = density.Procedural(density.NoiseParams{
			Seed:      params.Seed,
			Frequency: float64(params.Frequency),
			Octaves:   params.Octaves,
			Width:     512,
			Height:    256,
		})
	}

	p := &preview{texture: renderer.NewDensityTexture(img)}

	s := sampler.New(mesh, geom.Identity(), img)
	if p.err = s.Prepare(); p.err != nil {
		return p
	}
	p.reports = telemetry.ReportSampler(s)

	rng := rand.New(rand.NewSource(params.Seed))
	p.pairs, p.err = s.Pairs(params.Count, rng, params.Uniform)
	return p
}

// plot marks a sphere point at its equirectangular position within dst.
func plot(dst rl.Rectangle, p r3.Vec, col rl.Color) {
	uv := geom.SphereUV(p)
	x := dst.X + float32(uv.U)*dst.Width
	y := dst.Y + float32(uv.V)*dst.Height
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 2.5, col)
}

func yamlLines(params PreviewParams) []string {
	return []string{
		"globe:",
		"  density:",
		fmt.Sprintf("    seed: %d", params.Seed),
		fmt.Sprintf("    frequency: %.1f", params.Frequency),
		fmt.Sprintf("    octaves: %d", params.Octaves),
		"links:",
		fmt.Sprintf("  count: %d", params.Count),
		fmt.Sprintf("  draw_on_random_points: %t", params.Uniform),
	}
}
