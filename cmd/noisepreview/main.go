// Noise field preview tool - interactive slice visualization with sliders.
//
// Usage: go run ./cmd/noisepreview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drop3d/noise"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 256
)

// PreviewParams holds the field and slice parameters.
type PreviewParams struct {
	Kind      noise.Kind
	Dimension int
	Octaves   int
	Unbias    bool
	Scale     float32 // lattice cells across the preview
	Slice     float32 // z coordinate of the slice
	Speed     float32 // time units per second while animating
	Seed      int64
}

func defaultParams() PreviewParams {
	return PreviewParams{
		Kind:      noise.KindPerlin,
		Dimension: 4,
		Octaves:   1,
		Unbias:    true,
		Scale:     4,
		Slice:     0.5,
		Speed:     0.25,
		Seed:      1,
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rl.InitWindow(windowWidth, windowHeight, "Noise Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	// Create texture for rendering
	grid := make([]float32, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	// Time for animation
	var time float32
	animating := false

	field, err := buildField(params)
	if err != nil {
		slog.Error("failed to build noise field", "error", err)
		os.Exit(1)
	}

	needsRegen := true
	for !rl.WindowShouldClose() {
		if animating {
			time += rl.GetFrameTime() * params.Speed
			needsRegen = true
		}

		if needsRegen {
			sampleSlice(grid, gridSize, field, params, time)
			updateTexture(texture, grid)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{X: 0, Y: 0},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		st := summarize(grid)
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f  Avg: %.3f", st.min, st.max, st.mean), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.2f  Field: %s", time, params.Kind), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Noise Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		next := params
		slider := func(label, lo, hi, format string, val, vmin, vmax float32) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				lo, hi,
				val, vmin, vmax,
			)
			rl.DrawText(fmt.Sprintf(format, v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
			return v
		}

		next.Scale = slider("Scale (lattice cells across)", "0.5", "16", "%.1f", params.Scale, 0.5, 16)
		next.Slice = slider("Z slice", "0", "8", "%.2f", params.Slice, 0, 8)
		next.Octaves = int(slider("Octaves", "1", "8", "%.0f", float32(params.Octaves), 1, 8))
		next.Dimension = int(slider("Dimension (Perlin only)", "2", "4", "%.0f", float32(params.Dimension), 2, 4))
		next.Speed = slider("Animation speed", "0", "2", "%.2f", params.Speed, 0, 2)
		next.Seed = int64(slider("Seed", "0", "99999", "%.0f", float32(params.Seed), 0, 99999))

		// Separator
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			time = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(params.Unbias, "Unbias: on", "Unbias: off")) {
			next.Unbias = !params.Unbias
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, next.Kind.String()) {
			next.Kind = otherKind(params.Kind)
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			next.Seed = int64(rl.GetRandomValue(0, 99999))
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			next = defaultParams()
			time = 0
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
			rl.SetClipboardText(yamlText(params))
		}

		rl.EndDrawing()

		if fieldChanged(params, next) {
			f, err := buildField(next)
			if err != nil {
				slog.Warn("rejected noise parameters", "error", err)
				continue
			}
			field = f
			needsRegen = true
		}
		if next != params {
			params = next
			needsRegen = true
		}
	}
}
