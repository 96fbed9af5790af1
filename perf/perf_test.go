package perf

import (
	"log/slog"
	"math"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) step(d time.Duration) { c.t = c.t.Add(d) }

func newFake(window int) (*Collector, *fakeClock) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewCollector(window)
	c.now = clk.now
	return c, clk
}

func TestCollectorPhases(t *testing.T) {
	c, clk := newFake(10)
	for i := 0; i < 4; i++ {
		c.StartTick()
		c.StartPhase(PhaseAdvance)
		clk.step(100 * time.Microsecond)
		c.StartPhase(PhaseDraw)
		clk.step(300 * time.Microsecond)
		c.EndTick()
	}

	s := c.Stats()
	if s.Samples != 4 || c.Ticks() != 4 {
		t.Fatalf("samples = %d, ticks = %d", s.Samples, c.Ticks())
	}
	if s.Avg != 400*time.Microsecond {
		t.Errorf("avg = %v", s.Avg)
	}
	if s.PhaseAvg[PhaseAdvance] != 100*time.Microsecond || s.PhaseAvg[PhaseDraw] != 300*time.Microsecond {
		t.Errorf("phase avg = %v", s.PhaseAvg)
	}
	if math.Abs(s.PhasePct[PhaseAdvance]-25) > 1e-9 || math.Abs(s.PhasePct[PhaseDraw]-75) > 1e-9 {
		t.Errorf("phase pct = %v", s.PhasePct)
	}
	if math.Abs(s.TicksPerSecond-2500) > 1e-6 {
		t.Errorf("ticks/s = %v", s.TicksPerSecond)
	}
}

func TestCollectorRollingWindow(t *testing.T) {
	c, clk := newFake(3)
	// Older slow ticks fall out of the window.
	for _, d := range []time.Duration{10, 10, 10, 1, 2, 3} {
		c.StartTick()
		c.StartPhase(PhaseBuild)
		clk.step(d * time.Millisecond)
		c.EndTick()
	}

	s := c.Stats()
	if s.Samples != 3 || c.Ticks() != 6 {
		t.Fatalf("samples = %d, ticks = %d", s.Samples, c.Ticks())
	}
	if s.Min != time.Millisecond || s.Max != 3*time.Millisecond || s.Avg != 2*time.Millisecond {
		t.Errorf("min/avg/max = %v/%v/%v", s.Min, s.Avg, s.Max)
	}
	if s.P50 != 2*time.Millisecond {
		t.Errorf("p50 = %v", s.P50)
	}
	if s.P95 != 3*time.Millisecond {
		t.Errorf("p95 = %v", s.P95)
	}
}

func TestCollectorEmpty(t *testing.T) {
	c := NewCollector(0)
	s := c.Stats()
	if s.Samples != 0 || s.Avg != 0 || s.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v", s)
	}
	if len(c.samples) != 60 {
		t.Errorf("default window = %d", len(c.samples))
	}
}

func TestTickWithoutPhase(t *testing.T) {
	c, clk := newFake(5)
	c.StartTick()
	clk.step(time.Millisecond)
	c.EndTick()

	s := c.Stats()
	if s.Avg != time.Millisecond || len(s.PhaseAvg) != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRecord(t *testing.T) {
	c, clk := newFake(5)
	c.StartTick()
	c.StartPhase(PhaseBuild)
	clk.step(2 * time.Millisecond)
	c.EndTick()

	r := c.Stats().Record("headless", c.Ticks())
	if r.Label != "headless" || r.Ticks != 1 || r.Samples != 1 {
		t.Errorf("record = %+v", r)
	}
	if r.AvgUS != 2000 || r.P95US != 2000 || r.MinUS != 2000 || r.MaxUS != 2000 {
		t.Errorf("timings = %+v", r)
	}
	if math.Abs(r.BuildPct-100) > 1e-9 || r.DrawPct != 0 {
		t.Errorf("pct = %+v", r)
	}
}

func TestLogValue(t *testing.T) {
	c, clk := newFake(5)
	c.StartTick()
	c.StartPhase(PhaseRefresh)
	clk.step(time.Millisecond)
	c.EndTick()

	v := c.Stats().LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("kind = %v", v.Kind())
	}
	keys := map[string]bool{}
	for _, a := range v.Group() {
		keys[a.Key] = true
	}
	for _, k := range []string{"samples", "avg_us", "p95_us", "refresh_pct"} {
		if !keys[k] {
			t.Errorf("missing %q in %v", k, keys)
		}
	}
	if keys["draw_pct"] {
		t.Error("unused phase logged")
	}
}
