package main

import (
	"fmt"
	"image/color"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/drop3d/noise"
)

// buildField creates the field described by p.
func buildField(p PreviewParams) (noise.Field, error) {
	return noise.New(p.Kind, p.Seed, noise.Options{
		Dimension: p.Dimension,
		Octaves:   p.Octaves,
		Unbias:    p.Unbias,
	})
}

// fieldChanged reports whether moving from a to b needs a new field.
func fieldChanged(a, b PreviewParams) bool {
	return a.Kind != b.Kind || a.Dimension != b.Dimension || a.Octaves != b.Octaves ||
		a.Unbias != b.Unbias || a.Seed != b.Seed
}

// sampleSlice fills grid with field values on the plane z = p.Slice at time
// t, remapped from [-1, 1] to [0, 1].
func sampleSlice(grid []float32, size int, f noise.Field, p PreviewParams, t float32) {
	step := float64(p.Scale) / float64(size)
	for y := 0; y < size; y++ {
		fy := (float64(y) + 0.5) * step
		for x := 0; x < size; x++ {
			fx := (float64(x) + 0.5) * step
			v := f.Sample(fx, fy, float64(p.Slice), float64(t))
			grid[y*size+x] = float32((v + 1) / 2)
		}
	}
}

type gridStats struct {
	min, max, mean float32
}

func summarize(grid []float32) gridStats {
	if len(grid) == 0 {
		return gridStats{}
	}
	vals := make([]float64, len(grid))
	for i, v := range grid {
		vals[i] = float64(v)
	}
	return gridStats{
		min:  float32(floats.Min(vals)),
		max:  float32(floats.Max(vals)),
		mean: float32(floats.Sum(vals) / float64(len(vals))),
	}
}

func otherKind(k noise.Kind) noise.Kind {
	if k == noise.KindPerlin {
		return noise.KindOpenSimplex
	}
	return noise.KindPerlin
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// yamlLines renders p as the noise section of a drop3d config.
func yamlLines(p PreviewParams) []string {
	return []string{
		"noise:",
		fmt.Sprintf("  kind: %s", p.Kind),
		fmt.Sprintf("  seed: %d", p.Seed),
		fmt.Sprintf("  dimension: %d", p.Dimension),
		fmt.Sprintf("  octaves: %d", p.Octaves),
		fmt.Sprintf("  unbias: %t", p.Unbias),
	}
}

func yamlText(p PreviewParams) string {
	return strings.Join(yamlLines(p), "\n")
}

// shade maps v in [0, 1] onto a dark blue, cyan, yellow, white gradient.
func shade(v float32) color.RGBA {
	var r, g, b uint8
	if v < 0.25 {
		// Dark blue to blue
		t := v / 0.25
		r = uint8(10 + t*30)
		g = uint8(20 + t*60)
		b = uint8(60 + t*100)
	} else if v < 0.5 {
		// Blue to cyan
		t := (v - 0.25) / 0.25
		r = uint8(40 + t*20)
		g = uint8(80 + t*120)
		b = uint8(160 + t*40)
	} else if v < 0.75 {
		// Cyan to yellow-green
		t := (v - 0.5) / 0.25
		r = uint8(60 + t*140)
		g = uint8(200 - t*40)
		b = uint8(200 - t*150)
	} else {
		// Yellow-green to white
		t := min((v-0.75)/0.25, 1)
		r = uint8(200 + t*55)
		g = uint8(160 + t*95)
		b = uint8(50 + t*205)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// updateTexture updates the GPU texture from the grid values
func updateTexture(texture rl.Texture2D, grid []float32) {
	pixels := make([]color.RGBA, len(grid))
	for i, v := range grid {
		pixels[i] = shade(v)
	}
	rl.UpdateTexture(texture, pixels)
}
