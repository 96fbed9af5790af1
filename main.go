package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/drop3d/config"
	"github.com/pthm-cable/drop3d/export"
	"github.com/pthm-cable/drop3d/perf"
	"github.com/pthm-cable/drop3d/session"
	"github.com/pthm-cable/drop3d/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Generate drops and exit without opening a window")
	outputDir := flag.String("output-dir", "", "Output directory for CSV files and config snapshot")
	seed := flag.Int64("seed", 0, "Noise seed (0 = config value, or time-based)")
	drops := flag.Int("drops", -1, "Number of drops to create (-1 = use config)")
	mesh := flag.String("mesh", "", "Mesh mode: uniform or random (empty = use config)")
	genMode := flag.String("gen-mode", "", "Generation mode: fixed or random (empty = use config)")
	precision := flag.Int("precision", -1, "Points per axis (-1 = use config)")
	squish := flag.Float64("squish", 0, "Squish constant (0 = use config)")
	verbose := flag.Bool("v", false, "Log drop builds at debug level")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Command-line overrides
	if *seed != 0 {
		cfg.Noise.Seed = *seed
	}
	if *drops >= 0 {
		cfg.Session.Drops = *drops
	}
	if *mesh != "" {
		cfg.Drop.Mesh = *mesh
	}
	if *genMode != "" {
		cfg.Session.GenMode = *genMode
	}
	if *precision >= 0 {
		cfg.Drop.Precision = *precision
	}
	if *squish != 0 {
		cfg.Drop.Squish = *squish
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	s, err := session.New(cfg.SessionSettings(), session.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	pc := perf.NewCollector(max(cfg.Session.Drops, 1))
	for i := 0; i < cfg.Session.Drops; i++ {
		pc.StartTick()
		pc.StartPhase(perf.PhaseBuild)
		if _, err := s.CreateDrop(cfg.DropRequest()); err != nil {
			slog.Error("failed to create drop", "index", i, "error", err)
			os.Exit(1)
		}
		pc.EndTick()
	}
	buildStats := pc.Stats()
	slog.Info("drops generated",
		"drops", s.Len(),
		"seed", cfg.Derived.Seed,
		"mesh", cfg.Derived.Mesh.String(),
		"gen_mode", cfg.Derived.GenMode.String(),
		"precision", cfg.Drop.Precision,
		"squish", cfg.Drop.Squish,
		"duration", time.Since(start),
	)
	if pc.Ticks() > 0 {
		slog.Debug("build perf", "perf", buildStats)
	}

	if err := writeOutput(s, cfg, buildStats.Record("build", pc.Ticks())); err != nil {
		slog.Error("failed to write output", "dir", cfg.Output.Dir, "error", err)
		os.Exit(1)
	}

	if *headless {
		for id, d := range s.Each() {
			st := d.Stats()
			slog.Info("drop",
				"id", int(id),
				"center", d.Center().String(),
				"points", st.Count,
				"mean_radius", st.MeanRadius,
				"std_radius", st.StdRadius,
				"min_radius", st.MinRadius,
				"max_radius", st.MaxRadius,
			)
		}
		return
	}

	// Graphical mode
	if err := viewer.Run(s, cfg, logger); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

// writeOutput writes the config snapshot, CSV files and build timing when an
// output directory is configured.
func writeOutput(s *session.Session, cfg *config.Config, timing perf.Record) error {
	w, err := export.NewWriter(cfg.Output.Dir)
	if err != nil {
		return err
	}
	if w == nil {
		return nil
	}
	defer w.Close()

	if err := w.WriteConfig(cfg); err != nil {
		return err
	}
	if err := w.WriteSession(s, cfg.Output.Points, cfg.Output.Summary); err != nil {
		return err
	}
	if timing.Ticks > 0 {
		if err := w.WritePerf(timing); err != nil {
			return err
		}
	}
	slog.Info("output written", "dir", w.Dir())
	return w.Close()
}
