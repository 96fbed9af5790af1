// Package config provides configuration loading for drop generation and the viewer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drop3d/drop"
	"github.com/pthm-cable/drop3d/noise"
	"github.com/pthm-cable/drop3d/session"
	"github.com/pthm-cable/drop3d/vector"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration parameters.
type Config struct {
	Drop     DropConfig     `yaml:"drop"`
	Noise    NoiseConfig    `yaml:"noise"`
	Session  SessionConfig  `yaml:"session"`
	Scene    SceneConfig    `yaml:"scene"`
	Parallel ParallelConfig `yaml:"parallel"`
	Output   OutputConfig   `yaml:"output"`
	Viewer   ViewerConfig   `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// DropConfig holds the parameters of generated drops.
type DropConfig struct {
	Precision int     `yaml:"precision"`
	Squish    float64 `yaml:"squish"`
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
	Mesh      string  `yaml:"mesh"` // uniform | random
}

// NoiseConfig selects and tunes the noise field.
type NoiseConfig struct {
	Kind      string `yaml:"kind"` // perlin | opensimplex
	Seed      int64  `yaml:"seed"` // 0 = time based
	Dimension int    `yaml:"dimension"`
	Octaves   int    `yaml:"octaves"`
	Unbias    bool   `yaml:"unbias"`
	Tile      [4]int `yaml:"tile,flow"`
}

// SessionConfig holds drop placement parameters.
type SessionConfig struct {
	GenMode string     `yaml:"gen_mode"` // fixed | random
	Drops   int        `yaml:"drops"`
	Center  [3]float64 `yaml:"center,flow"`
}

// SceneConfig bounds randomly placed drops.
type SceneConfig struct {
	XMin float64 `yaml:"x_min"`
	XMax float64 `yaml:"x_max"`
	YMin float64 `yaml:"y_min"`
	YMax float64 `yaml:"y_max"`
	ZMin float64 `yaml:"z_min"`
	ZMax float64 `yaml:"z_max"`
}

// ParallelConfig controls build parallelism.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Min point count for parallel builds
}

// OutputConfig holds CSV output settings.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Points  bool   `yaml:"points"`
	Summary bool   `yaml:"summary"`
}

// ViewerConfig holds display settings.
type ViewerConfig struct {
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	TargetFPS  int      `yaml:"target_fps"`
	FOV        float64  `yaml:"fov"`
	Animate    bool     `yaml:"animate"`
	TimeSpeed  float64  `yaml:"time_speed"`
	PointColor [4]uint8 `yaml:"point_color,flow"`
}

// DerivedConfig holds values parsed or computed from the loaded config.
type DerivedConfig struct {
	Mesh      drop.Mesh
	GenMode   session.GenMode
	NoiseKind noise.Kind
	Seed      int64 // resolved noise.seed
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values. Call it
// again after changing fields, e.g. from command-line flags.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Validate checks ranges that the YAML types cannot express.
func (c *Config) Validate() error {
	switch {
	case c.Drop.Precision < 0:
		return fmt.Errorf("drop.precision %d must be >= 0: %w", c.Drop.Precision, ErrInvalid)
	case c.Drop.Squish == 0:
		return fmt.Errorf("drop.squish must be non-zero: %w", ErrInvalid)
	case c.Session.Drops < 0:
		return fmt.Errorf("session.drops %d must be >= 0: %w", c.Session.Drops, ErrInvalid)
	case c.Parallel.Workers < 0:
		return fmt.Errorf("parallel.workers %d must be >= 0: %w", c.Parallel.Workers, ErrInvalid)
	case c.Parallel.Threshold < 0:
		return fmt.Errorf("parallel.threshold %d must be >= 0: %w", c.Parallel.Threshold, ErrInvalid)
	case c.Viewer.Width <= 0 || c.Viewer.Height <= 0:
		return fmt.Errorf("viewer size %dx%d: %w", c.Viewer.Width, c.Viewer.Height, ErrInvalid)
	}
	return nil
}

// computeDerived parses enum strings, checks the noise options and resolves
// the seed.
func (c *Config) computeDerived() error {
	mesh, err := drop.ParseMesh(c.Drop.Mesh)
	if err != nil {
		return fmt.Errorf("drop.mesh: %w: %w", err, ErrInvalid)
	}
	mode, err := session.ParseGenMode(c.Session.GenMode)
	if err != nil {
		return fmt.Errorf("session.gen_mode: %w: %w", err, ErrInvalid)
	}
	kind, err := noise.ParseKind(c.Noise.Kind)
	if err != nil {
		return fmt.Errorf("noise.kind: %w: %w", err, ErrInvalid)
	}
	if kind == noise.KindPerlin {
		if _, err := noise.NewPerlin(c.Noise.Seed, c.noiseOptions()); err != nil {
			return fmt.Errorf("noise: %w: %w", err, ErrInvalid)
		}
	}

	c.Derived.Mesh = mesh
	c.Derived.GenMode = mode
	c.Derived.NoiseKind = kind
	// Resolve in place so a written snapshot reproduces the run.
	if c.Noise.Seed == 0 {
		c.Noise.Seed = time.Now().UnixNano()
	}
	c.Derived.Seed = c.Noise.Seed
	return nil
}

func (c *Config) noiseOptions() noise.Options {
	return noise.Options{
		Dimension: c.Noise.Dimension,
		Octaves:   c.Noise.Octaves,
		Tile:      c.Noise.Tile,
		Unbias:    c.Noise.Unbias,
	}
}

// SessionSettings converts the config into session settings.
func (c *Config) SessionSettings() session.Settings {
	return session.Settings{
		GenMode:   c.Derived.GenMode,
		MeshMode:  c.Derived.Mesh,
		Precision: c.Drop.Precision,
		Squish:    c.Drop.Squish,
		Scene: session.Box{
			Min: vector.Vec(c.Scene.XMin, c.Scene.YMin, c.Scene.ZMin),
			Max: vector.Vec(c.Scene.XMax, c.Scene.YMax, c.Scene.ZMax),
		},
		Seed: c.Derived.Seed,
		Noise: session.NoiseSettings{
			Kind:    c.Derived.NoiseKind,
			Options: c.noiseOptions(),
		},
		Workers:   c.Parallel.Workers,
		Threshold: c.Parallel.Threshold,
	}
}

// DropRequest returns the CreateDrop request for CLI drops.
func (c *Config) DropRequest() session.Request {
	if c.Derived.GenMode == session.GenRandom {
		return session.Radii(c.Drop.MinRadius, c.Drop.MaxRadius)
	}
	ctr := c.Session.Center
	return session.Fixed(ctr[0], ctr[1], ctr[2], c.Drop.MinRadius, c.Drop.MaxRadius)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
