// Package viewer shows the drops of a session in a raylib window with a
// raygui control panel.
package viewer

import (
	"fmt"
	"log/slog"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drop3d/camera"
	"github.com/pthm-cable/drop3d/config"
	"github.com/pthm-cable/drop3d/drop"
	"github.com/pthm-cable/drop3d/perf"
	"github.com/pthm-cable/drop3d/session"
	"github.com/pthm-cable/drop3d/vector"
)

const (
	panelWidth  = 300
	orbitSpeed  = 0.005 // radians per pixel of mouse drag
	zoomStep    = 0.9   // distance factor per wheel notch
	sliderWidth = panelWidth - 90

	perfWindow   = 120 // frames per timing window
	perfLogEvery = 600 // frames between perf log lines
)

// Viewer renders a session and edits it through the control panel.
type Viewer struct {
	s      *session.Session
	cfg    *config.Config
	logger *slog.Logger

	cam  *camera.Orbit
	ctrl controls
	perf *perf.Collector

	// points caches the cloud of every drop in raylib coordinates
	points [][]rl.Vector3
	colors []rl.Color

	// stats of the most recent drop, for the panel
	last    drop.Stats
	lastT   float64
	hasLast bool
}

// New creates a viewer for s. The window must already be open.
func New(s *session.Session, cfg *config.Config, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Viewer{
		s:      s,
		cfg:    cfg,
		logger: logger,
		cam:    camera.New(vector.Vec(0, 0, 0), 5),
		ctrl:   newControls(s, cfg),
		perf:   perf.NewCollector(perfWindow),
	}
	v.refresh()
	v.frame()
	return v
}

// Run opens a window and shows s until the window is closed.
func Run(s *session.Session, cfg *config.Config, logger *slog.Logger) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Viewer.Width), int32(cfg.Viewer.Height), "drop3d")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	v := New(s, cfg, logger)
	for !rl.WindowShouldClose() {
		v.perf.StartTick()
		v.Update(rl.GetFrameTime())
		v.Draw()
		v.perf.EndTick()

		if v.perf.Ticks()%perfLogEvery == 0 {
			v.logger.Debug("frame perf", "perf", v.perf.Stats())
		}
	}
	return nil
}

// Update handles input and animation for one frame.
func (v *Viewer) Update(dt float32) {
	mouse := rl.GetMousePosition()
	overPanel := mouse.X > float32(rl.GetScreenWidth()-panelWidth)

	if !overPanel {
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			d := rl.GetMouseDelta()
			v.cam.Rotate(-float64(d.X)*orbitSpeed, float64(d.Y)*orbitSpeed)
		}
		if rl.IsMouseButtonDown(rl.MouseButtonRight) {
			d := rl.GetMouseDelta()
			h := float64(rl.GetScreenHeight())
			v.cam.Pan(-float64(d.X)/h, float64(d.Y)/h)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			for i := float32(0); i < abs32(wheel); i++ {
				if wheel > 0 {
					v.cam.Zoom(zoomStep)
				} else {
					v.cam.Zoom(1 / zoomStep)
				}
			}
		}
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.ctrl.Animate = !v.ctrl.Animate
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.frame()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.cam.Reset()
	}

	if v.ctrl.Animate && dt > 0 {
		v.perf.StartPhase(perf.PhaseAdvance)
		if err := v.s.Advance(float64(dt * v.ctrl.TimeSpeed)); err != nil {
			v.logger.Warn("advance failed", "error", err)
			v.ctrl.Animate = false
		}
		v.perf.StartPhase(perf.PhaseRefresh)
		v.refresh()
	}
}

// Draw renders the scene and the control panel, then applies panel edits.
func (v *Viewer) Draw() {
	v.perf.StartPhase(perf.PhaseDraw)
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(18, 20, 26, 255))

	rl.BeginMode3D(v.camera3D())
	rl.DrawGrid(20, 0.5)
	for i, pts := range v.points {
		c := v.colors[i]
		for _, p := range pts {
			rl.DrawPoint3D(p, c)
		}
	}
	rl.EndMode3D()

	prev := v.ctrl
	v.drawPanel()
	rl.DrawFPS(10, 10)
	rl.EndDrawing()

	v.perf.StartPhase(perf.PhaseRebuild)
	rebuilt, err := v.ctrl.apply(prev, v.s)
	if err != nil {
		v.logger.Warn("rebuild failed", "error", err)
	}
	if rebuilt {
		v.perf.StartPhase(perf.PhaseRefresh)
		v.refresh()
	}
}

func (v *Viewer) drawPanel() {
	x := float32(rl.GetScreenWidth() - panelWidth + 10)
	y := float32(10)
	rl.DrawRectangle(int32(x)-10, 0, panelWidth, int32(rl.GetScreenHeight()), rl.NewColor(235, 235, 235, 240))

	rl.DrawText("Drops", int32(x), int32(y), 20, rl.DarkGray)
	y += 30

	slider := func(label, format string, val *float32, lo, hi float32) {
		rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
		y += 18
		*val = gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderWidth, Height: 20},
			"", "",
			*val, lo, hi,
		)
		rl.DrawText(fmt.Sprintf(format, *val), int32(x+sliderWidth+10), int32(y+2), 16, rl.DarkGray)
		y += 35
	}

	slider("Precision (points per axis)", "%.0f", &v.ctrl.Precision, minPrecision, maxPrecision)
	slider("Squish (higher = rounder)", "%.1f", &v.ctrl.Squish, minSquish, maxSquish)
	slider("Min radius", "%.2f", &v.ctrl.MinRadius, 0, maxRadius)
	slider("Max radius", "%.2f", &v.ctrl.MaxRadius, 0, maxRadius)
	slider("Time speed", "%.2f", &v.ctrl.TimeSpeed, 0, 2)

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 30}, toggleText(v.ctrl.Animate, "Stop", "Animate")) {
		v.ctrl.Animate = !v.ctrl.Animate
	}
	if gui.Button(rl.Rectangle{X: x + 130, Y: y, Width: 120, Height: 30}, "Frame") {
		v.frame()
	}
	y += 45

	total := 0
	for _, pts := range v.points {
		total += len(pts)
	}
	rl.DrawText(fmt.Sprintf("Drops: %d  Points: %d", len(v.points), total), int32(x), int32(y), 14, rl.DarkGray)
	y += 20
	if v.hasLast {
		rl.DrawText(fmt.Sprintf("Last: mean r %.3f  std %.3f", v.last.MeanRadius, v.last.StdRadius), int32(x), int32(y), 14, rl.DarkGray)
		y += 18
		rl.DrawText(fmt.Sprintf("Time offset: %.2f", v.lastT), int32(x), int32(y), 14, rl.DarkGray)
		y += 18
	}
	if st := v.perf.Stats(); st.Samples > 0 {
		rl.DrawText(fmt.Sprintf("Frame: %.2f ms  p95 %.2f ms", ms(st.Avg), ms(st.P95)), int32(x), int32(y), 14, rl.DarkGray)
	}

	rl.DrawText("Drag: orbit  Right drag: pan  Wheel: zoom", int32(x), int32(rl.GetScreenHeight()-40), 12, rl.Gray)
	rl.DrawText("Space: animate  F: frame  R: reset view", int32(x), int32(rl.GetScreenHeight()-24), 12, rl.Gray)
}

// refresh copies every drop's points into the render cache and updates the
// panel statistics.
func (v *Viewer) refresh() {
	v.points = v.points[:0]
	v.colors = v.colors[:0]
	base := v.cfg.Viewer.PointColor
	i := 0
	for _, d := range v.s.Each() {
		pts := d.Points()
		out := make([]rl.Vector3, len(pts))
		for j, p := range pts {
			out[j] = toVector3(p)
		}
		v.points = append(v.points, out)
		v.colors = append(v.colors, tint(base, i))
		i++
	}

	d, err := v.lastDrop()
	v.hasLast = err == nil
	if v.hasLast {
		v.last = d.Stats()
		v.lastT = d.TimeOffset()
	}
}

// frame points the camera at everything generated so far.
func (v *Viewer) frame() {
	if b, ok := v.s.Bounds(); ok {
		v.cam.Frame(b.Min, b.Max, v.cfg.Viewer.FOV)
	}
}

func (v *Viewer) lastDrop() (*drop.Drop, error) {
	id, err := v.s.Last()
	if err != nil {
		return nil, err
	}
	return v.s.Drop(id)
}

func (v *Viewer) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   toVector3(v.cam.Position()),
		Target:     toVector3(v.cam.Target),
		Up:         rl.NewVector3(0, 1, 0),
		Fovy:       float32(v.cfg.Viewer.FOV),
		Projection: rl.CameraPerspective,
	}
}

func toVector3(p vector.Vector) rl.Vector3 {
	return rl.NewVector3(float32(p.X), float32(p.Y), float32(p.Z))
}

// tint shifts the base color per drop so neighbouring drops stay distinguishable.
func tint(base [4]uint8, i int) rl.Color {
	shift := (i * 47) % 96
	r := min(int(base[0])+shift, 255)
	g := max(int(base[1])-shift/2, 0)
	return rl.NewColor(uint8(r), uint8(g), base[2], base[3])
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
