// Package drop generates drop surfaces: point clouds around a center whose
// radius is modulated by a coherent noise field.
package drop

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"strings"
	"time"

	"github.com/pthm-cable/drop3d/noise"
	"github.com/pthm-cable/drop3d/vector"
)

var (
	// ErrInvalidArgument is returned for malformed parameters such as a negative resolution.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfig is returned when parameters would produce non-finite points, e.g. squish = 0.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DefaultSeed seeds the noise field and the direction sampler when no seed is given.
const DefaultSeed int64 = 1

// parallelThreshold is the minimum point count to use parallel generation.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 4096

// Mesh selects how base directions are chosen.
type Mesh uint8

const (
	MeshUniform Mesh = iota // latitude/longitude style scan
	MeshRandom              // random scatter
)

func (m Mesh) String() string {
	switch m {
	case MeshUniform:
		return "uniform"
	case MeshRandom:
		return "random"
	}
	return fmt.Sprintf("Mesh(%d)", uint8(m))
}

// ParseMesh parses "uniform" or "random" (any case).
func ParseMesh(s string) (Mesh, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform":
		return MeshUniform, nil
	case "random":
		return MeshRandom, nil
	}
	return 0, fmt.Errorf("unknown mesh %q: %w", s, ErrInvalidArgument)
}

// Params describes a drop.
type Params struct {
	Center     vector.Vector
	MinRadius  float64
	MaxRadius  float64
	N          int     // points per axis (uniform) or sqrt of the point count (random)
	Squish     float64 // divisor applied to directions before sampling noise
	Mesh       Mesh
	TimeOffset float64 // fourth noise coordinate
}

// Validate checks that p can be built.
func (p Params) Validate() error {
	if p.N < 0 {
		return fmt.Errorf("resolution %d: %w", p.N, ErrInvalidArgument)
	}
	if p.Mesh != MeshUniform && p.Mesh != MeshRandom {
		return fmt.Errorf("mesh %v: %w", p.Mesh, ErrInvalidArgument)
	}
	if p.Squish == 0 || !finite(p.Squish) {
		return fmt.Errorf("squish %v: %w", p.Squish, ErrInvalidConfig)
	}
	if !finite(p.MinRadius) || !finite(p.MaxRadius) {
		return fmt.Errorf("radius range [%v, %v]: %w", p.MinRadius, p.MaxRadius, ErrInvalidConfig)
	}
	if !finite(p.TimeOffset) {
		return fmt.Errorf("time offset %v: %w", p.TimeOffset, ErrInvalidConfig)
	}
	if !finiteVec(p.Center) {
		return fmt.Errorf("center %v: %w", p.Center, ErrInvalidConfig)
	}
	return nil
}

// Drop is a generated drop surface. It is not safe for concurrent use.
type Drop struct {
	params Params
	field  noise.Field
	rng    *rand.Rand
	seed   int64

	workers   int
	threshold int
	logger    *slog.Logger

	dirs   []vector.Vector
	points []vector.Vector
}

// Option configures a Drop.
type Option func(*Drop)

// WithField sets the noise field. It must be safe for concurrent Sample
// calls when more than one worker is used.
func WithField(f noise.Field) Option {
	return func(d *Drop) {
		d.field = f
	}
}

// WithSeed seeds the default noise field and direction sampler.
func WithSeed(seed int64) Option {
	return func(d *Drop) {
		d.seed = seed
	}
}

// WithRand sets the source used for random mesh directions.
func WithRand(r *rand.Rand) Option {
	return func(d *Drop) {
		d.rng = r
	}
}

// WithWorkers sets the number of goroutines used for large builds.
func WithWorkers(n int) Option {
	return func(d *Drop) {
		d.workers = n
	}
}

// WithParallelThreshold sets the point count from which builds run in parallel.
func WithParallelThreshold(n int) Option {
	return func(d *Drop) {
		d.threshold = n
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Drop) {
		d.logger = l
	}
}

// New validates p and builds the drop. Without WithField the drop samples a
// 4D unbiased Perlin field.
func New(p Params, opts ...Option) (*Drop, error) {
	d := &Drop{
		seed:      DefaultSeed,
		workers:   runtime.GOMAXPROCS(0),
		threshold: parallelThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(d.seed))
	}
	if d.field == nil {
		f, err := noise.NewPerlin(d.seed, noise.Options{Dimension: 4, Unbias: true})
		if err != nil {
			return nil, fmt.Errorf("creating noise field: %w", err)
		}
		d.field = f
	}

	if err := d.SetParams(p); err != nil {
		return nil, err
	}
	return d, nil
}

// SetParams replaces the parameters and rebuilds. Directions are redrawn
// only when the resolution or mesh changes. On error the drop is unchanged.
func (d *Drop) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	dirs := d.dirs
	if d.points == nil || p.N != d.params.N || p.Mesh != d.params.Mesh {
		dirs = directions(p.Mesh, p.N, d.rng)
	}

	start := time.Now()
	points, err := d.build(p, dirs)
	if err != nil {
		return err
	}

	d.params = p
	d.dirs = dirs
	d.points = points

	d.logger.Debug("drop built",
		"points", len(points),
		"mesh", p.Mesh.String(),
		"n", p.N,
		"squish", p.Squish,
		"time_offset", p.TimeOffset,
		"duration", time.Since(start),
	)
	return nil
}

// Regenerate rebuilds the points from the current parameters and directions.
func (d *Drop) Regenerate() error {
	return d.SetParams(d.params)
}

// SetTimeOffset moves the drop to time t in the noise field and rebuilds.
func (d *Drop) SetTimeOffset(t float64) error {
	p := d.params
	p.TimeOffset = t
	return d.SetParams(p)
}

// Advance adds dt to the time offset and rebuilds.
func (d *Drop) Advance(dt float64) error {
	return d.SetTimeOffset(d.params.TimeOffset + dt)
}

// Params returns the parameters of the current build.
func (d *Drop) Params() Params {
	return d.params
}

// Center returns the drop center.
func (d *Drop) Center() vector.Vector {
	return d.params.Center
}

// TimeOffset returns the current time offset.
func (d *Drop) TimeOffset() float64 {
	return d.params.TimeOffset
}

// Len returns the number of generated points.
func (d *Drop) Len() int {
	return len(d.points)
}

// Points returns a copy of the generated points in generation order.
func (d *Drop) Points() []vector.Vector {
	out := make([]vector.Vector, len(d.points))
	copy(out, d.points)
	return out
}

// AsSurface returns the point coordinates as three parallel slices in
// generation order.
func (d *Drop) AsSurface() (xs, ys, zs []float64) {
	xs = make([]float64, len(d.points))
	ys = make([]float64, len(d.points))
	zs = make([]float64, len(d.points))
	for i, p := range d.points {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	return xs, ys, zs
}

// Remap linearly maps x from [x0, x1] to [y0, y1].
func Remap(x, x0, x1, y0, y1 float64) float64 {
	return (y0*(x1-x) + y1*(x-x0)) / (x1 - x0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v vector.Vector) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}
