// Package perf collects timing samples over a rolling window.
package perf

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase names used by the CLI and the viewer.
const (
	PhaseBuild   = "build"   // drop creation
	PhaseAdvance = "advance" // time offset step of every drop
	PhaseRebuild = "rebuild" // panel edits applied to drops
	PhaseRefresh = "refresh" // render cache update
	PhaseDraw    = "draw"
)

// Phases lists the known phases in report order.
var Phases = []string{PhaseBuild, PhaseAdvance, PhaseRebuild, PhaseRefresh, PhaseDraw}

// Sample holds timing data for a single tick.
type Sample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// Collector tracks tick durations over a rolling window. A tick is one drop
// build in batch mode or one frame in the viewer.
type Collector struct {
	windowSize    int
	samples       []Sample
	writeIndex    int
	sampleCount   int
	totalTicks    int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// now is replaceable in tests
	now func() time.Time
}

// NewCollector creates a collector averaging over windowSize ticks.
func NewCollector(windowSize int) *Collector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &Collector{
		windowSize:    windowSize,
		samples:       make([]Sample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartTick begins timing a new tick.
func (c *Collector) StartTick() {
	c.tickStart = c.now()
	c.currentPhases = make(map[string]time.Duration)
	c.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (c *Collector) StartPhase(phase string) {
	now := c.now()
	if c.lastPhase != "" {
		c.currentPhases[c.lastPhase] += now.Sub(c.phaseStart)
	}
	c.phaseStart = now
	c.lastPhase = phase
}

// EndTick finishes the current tick and records the sample.
func (c *Collector) EndTick() {
	now := c.now()
	if c.lastPhase != "" {
		c.currentPhases[c.lastPhase] += now.Sub(c.phaseStart)
		c.lastPhase = ""
	}

	c.samples[c.writeIndex] = Sample{
		Duration: now.Sub(c.tickStart),
		Phases:   c.currentPhases,
	}
	c.writeIndex = (c.writeIndex + 1) % c.windowSize
	if c.sampleCount < c.windowSize {
		c.sampleCount++
	}
	c.totalTicks++
}

// Ticks returns the number of ticks recorded since creation.
func (c *Collector) Ticks() int {
	return c.totalTicks
}

// Stats holds aggregated timing over the window.
type Stats struct {
	Samples int

	Avg time.Duration
	Min time.Duration
	P50 time.Duration
	P95 time.Duration
	Max time.Duration

	// Average duration and share of the tick per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (c *Collector) Stats() Stats {
	s := Stats{
		Samples:  c.sampleCount,
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if c.sampleCount == 0 {
		return s
	}

	durs := make([]float64, c.sampleCount)
	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < c.sampleCount; i++ {
		smp := c.samples[i]
		durs[i] = float64(smp.Duration)
		total += smp.Duration
		for phase, d := range smp.Phases {
			phaseSum[phase] += d
		}
	}

	sort.Float64s(durs)
	s.Avg = total / time.Duration(c.sampleCount)
	s.Min = time.Duration(durs[0])
	s.Max = time.Duration(durs[len(durs)-1])
	s.P50 = time.Duration(stat.Quantile(0.5, stat.Empirical, durs, nil))
	s.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, durs, nil))

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(c.sampleCount)
		s.PhaseAvg[phase] = avg
		if s.Avg > 0 {
			s.PhasePct[phase] = float64(avg) / float64(s.Avg) * 100
		}
	}
	if s.Avg > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.Avg)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("samples", s.Samples),
		slog.Int64("avg_us", s.Avg.Microseconds()),
		slog.Int64("p50_us", s.P50.Microseconds()),
		slog.Int64("p95_us", s.P95.Microseconds()),
		slog.Int64("max_us", s.Max.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// Record is a flat row of perf.csv.
type Record struct {
	Label       string  `csv:"label"`
	Ticks       int     `csv:"ticks"`
	Samples     int     `csv:"samples"`
	AvgUS       int64   `csv:"avg_us"`
	MinUS       int64   `csv:"min_us"`
	P50US       int64   `csv:"p50_us"`
	P95US       int64   `csv:"p95_us"`
	MaxUS       int64   `csv:"max_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
	BuildPct    float64 `csv:"build_pct"`
	AdvancePct  float64 `csv:"advance_pct"`
	RebuildPct  float64 `csv:"rebuild_pct"`
	RefreshPct  float64 `csv:"refresh_pct"`
	DrawPct     float64 `csv:"draw_pct"`
}

// Record converts the stats to a CSV row.
func (s Stats) Record(label string, ticks int) Record {
	return Record{
		Label:       label,
		Ticks:       ticks,
		Samples:     s.Samples,
		AvgUS:       s.Avg.Microseconds(),
		MinUS:       s.Min.Microseconds(),
		P50US:       s.P50.Microseconds(),
		P95US:       s.P95.Microseconds(),
		MaxUS:       s.Max.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		BuildPct:    s.PhasePct[PhaseBuild],
		AdvancePct:  s.PhasePct[PhaseAdvance],
		RebuildPct:  s.PhasePct[PhaseRebuild],
		RefreshPct:  s.PhasePct[PhaseRefresh],
		DrawPct:     s.PhasePct[PhaseDraw],
	}
}
