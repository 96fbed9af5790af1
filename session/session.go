// Package session keeps the generation settings and the drops created with
// them. It replaces process-wide state with an explicit object owned by the
// caller.
package session

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drop3d/drop"
	"github.com/pthm-cable/drop3d/noise"
	"github.com/pthm-cable/drop3d/vector"
)

var (
	// ErrMissingParam is returned when a required drop parameter is not given.
	ErrMissingParam = errors.New("missing required parameter")
	// ErrUnknownDrop is returned for IDs that were never created or were removed.
	ErrUnknownDrop = errors.New("unknown drop")
	// ErrInvalidMode is returned for unknown generation or mesh modes.
	ErrInvalidMode = errors.New("invalid mode")
)

// GenMode controls where new drops are centered.
type GenMode uint8

const (
	GenFixed  GenMode = iota // center given by the caller
	GenRandom                // center drawn uniformly inside the scene
)

func (m GenMode) String() string {
	switch m {
	case GenFixed:
		return "fixed"
	case GenRandom:
		return "random"
	}
	return fmt.Sprintf("GenMode(%d)", uint8(m))
}

// ParseGenMode parses "fixed" or "random" (any case).
func ParseGenMode(s string) (GenMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return GenFixed, nil
	case "random":
		return GenRandom, nil
	}
	return 0, fmt.Errorf("generation mode %q: %w", s, ErrInvalidMode)
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max vector.Vector
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Min: vector.Vec(min(b.Min.X, o.Min.X), min(b.Min.Y, o.Min.Y), min(b.Min.Z, o.Min.Z)),
		Max: vector.Vec(max(b.Max.X, o.Max.X), max(b.Max.Y, o.Max.Y), max(b.Max.Z, o.Max.Z)),
	}
}

// Center returns the midpoint of the box.
func (b Box) Center() vector.Vector {
	return b.Min.Lerp(b.Max, 0.5)
}

// NoiseSettings selects the noise field given to each drop.
type NoiseSettings struct {
	Kind    noise.Kind
	Options noise.Options
}

// Settings holds the parameters applied to newly created drops.
type Settings struct {
	GenMode   GenMode
	MeshMode  drop.Mesh
	Precision int     // resolution n of each drop
	Squish    float64 // noise-space divisor
	Scene     Box     // bounds for randomly centered drops
	Seed      int64   // base seed; drop i uses Seed + i
	Noise     NoiseSettings
	Workers   int // build goroutines per drop (0 = GOMAXPROCS)
	Threshold int // point count from which builds run in parallel (0 = drop default)
}

// DefaultSettings returns fixed placement, a uniform mesh of precision 360,
// squish 10 and the scene [-1, 1]³.
func DefaultSettings() Settings {
	return Settings{
		GenMode:   GenFixed,
		MeshMode:  drop.MeshUniform,
		Precision: 360,
		Squish:    10,
		Scene:     Box{Min: vector.Vec(-1, -1, -1), Max: vector.Vec(1, 1, 1)},
		Seed:      drop.DefaultSeed,
		Noise: NoiseSettings{
			Kind:    noise.KindPerlin,
			Options: noise.Options{Dimension: 4, Unbias: true},
		},
	}
}

// ID identifies a drop within a session. IDs follow creation order and are
// never reused.
type ID int

// Components stored per drop entity.
type (
	// Serial is the creation index of a drop.
	Serial struct {
		ID ID
	}
	// Placement is the center of a drop.
	Placement struct {
		Center vector.Vector
	}
	// RadiusRange is the radius interval noise is mapped into.
	RadiusRange struct {
		Min, Max float64
	}
	// Surface holds the generated drop.
	Surface struct {
		Drop *drop.Drop
	}
)

// Session owns its settings and drops. It is not safe for concurrent use.
type Session struct {
	settings Settings
	rng      *rand.Rand
	logger   *slog.Logger

	world      *ecs.World
	dropMapper *ecs.Map4[Serial, Placement, RadiusRange, Surface]
	surfaceMap *ecs.Map1[Surface]
	rangeMap   *ecs.Map1[RadiusRange]
	dropFilter *ecs.Filter2[Placement, Surface]

	// entities[id] is the entity of drop id; removed drops are not alive.
	entities []ecs.Entity
	removed  []bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used by the session and its drops.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithRand sets the source used to place randomly centered drops.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// New creates an empty session.
func New(settings Settings, opts ...Option) (*Session, error) {
	if settings.GenMode != GenFixed && settings.GenMode != GenRandom {
		return nil, fmt.Errorf("generation mode %v: %w", settings.GenMode, ErrInvalidMode)
	}
	if settings.MeshMode != drop.MeshUniform && settings.MeshMode != drop.MeshRandom {
		return nil, fmt.Errorf("mesh mode %v: %w", settings.MeshMode, ErrInvalidMode)
	}

	world := ecs.NewWorld()
	s := &Session{
		settings:   settings,
		world:      world,
		dropMapper: ecs.NewMap4[Serial, Placement, RadiusRange, Surface](world),
		surfaceMap: ecs.NewMap1[Surface](world),
		rangeMap:   ecs.NewMap1[RadiusRange](world),
		dropFilter: ecs.NewFilter2[Placement, Surface](world),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(settings.Seed))
	}
	return s, nil
}

// Settings returns a copy of the current settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// GenMode returns the generation mode.
func (s *Session) GenMode() GenMode {
	return s.settings.GenMode
}

// SetGenMode sets the generation mode for subsequent drops.
func (s *Session) SetGenMode(m GenMode) error {
	if m != GenFixed && m != GenRandom {
		return fmt.Errorf("generation mode %v: %w", m, ErrInvalidMode)
	}
	s.settings.GenMode = m
	return nil
}

// MeshMode returns the mesh mode.
func (s *Session) MeshMode() drop.Mesh {
	return s.settings.MeshMode
}

// SetMeshMode sets the mesh mode for subsequent drops.
func (s *Session) SetMeshMode(m drop.Mesh) error {
	if m != drop.MeshUniform && m != drop.MeshRandom {
		return fmt.Errorf("mesh mode %v: %w", m, ErrInvalidMode)
	}
	s.settings.MeshMode = m
	return nil
}

// Precision returns the resolution given to new drops.
func (s *Session) Precision() int {
	return s.settings.Precision
}

// SetPrecision sets the resolution for subsequent drops.
func (s *Session) SetPrecision(n int) {
	s.settings.Precision = n
}

// Squish returns the squish constant given to new drops.
func (s *Session) Squish() float64 {
	return s.settings.Squish
}

// SetSquish sets the squish constant for subsequent drops. Higher values
// give rounder drops.
func (s *Session) SetSquish(v float64) {
	s.settings.Squish = v
}

// Scene returns the placement bounds for randomly centered drops.
func (s *Session) Scene() Box {
	return s.settings.Scene
}

// SceneUpdate changes the non-nil scene bounds.
type SceneUpdate struct {
	XMin, XMax *float64
	YMin, YMax *float64
	ZMin, ZMax *float64
}

// SetScene applies u to the scene bounds.
func (s *Session) SetScene(u SceneUpdate) {
	b := &s.settings.Scene
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&b.Min.X, u.XMin)
	set(&b.Max.X, u.XMax)
	set(&b.Min.Y, u.YMin)
	set(&b.Max.Y, u.YMax)
	set(&b.Min.Z, u.ZMin)
	set(&b.Max.Z, u.ZMax)
}

// Len returns the number of live drops.
func (s *Session) Len() int {
	n := 0
	for _, gone := range s.removed {
		if !gone {
			n++
		}
	}
	return n
}

// Each iterates over live drops in creation order.
func (s *Session) Each() iter.Seq2[ID, *drop.Drop] {
	return func(yield func(ID, *drop.Drop) bool) {
		for i, e := range s.entities {
			if s.removed[i] {
				continue
			}
			if !yield(ID(i), s.surfaceMap.Get(e).Drop) {
				return
			}
		}
	}
}

// Drop returns the drop with the given ID.
func (s *Session) Drop(id ID) (*drop.Drop, error) {
	e, err := s.entity(id)
	if err != nil {
		return nil, err
	}
	return s.surfaceMap.Get(e).Drop, nil
}

// AsSurface returns the coordinates of drop id.
func (s *Session) AsSurface(id ID) (xs, ys, zs []float64, err error) {
	d, err := s.Drop(id)
	if err != nil {
		return nil, nil, nil, err
	}
	xs, ys, zs = d.AsSurface()
	return xs, ys, zs, nil
}

// Last returns the ID of the most recently created live drop.
func (s *Session) Last() (ID, error) {
	for i := len(s.entities) - 1; i >= 0; i-- {
		if !s.removed[i] {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("session has no drops: %w", ErrUnknownDrop)
}

// LastSurface returns the coordinates of the most recently created drop.
func (s *Session) LastSurface() (xs, ys, zs []float64, err error) {
	id, err := s.Last()
	if err != nil {
		return nil, nil, nil, err
	}
	return s.AsSurface(id)
}

// Remove deletes drop id. Its ID is not reused.
func (s *Session) Remove(id ID) error {
	e, err := s.entity(id)
	if err != nil {
		return err
	}
	s.world.RemoveEntity(e)
	s.removed[id] = true
	return nil
}

// Bounds returns the box enclosing every generated point. ok is false when
// no drop has points.
func (s *Session) Bounds() (b Box, ok bool) {
	query := s.dropFilter.Query()
	for query.Next() {
		_, surf := query.Get()
		if surf.Drop.Len() == 0 {
			continue
		}
		st := surf.Drop.Stats()
		db := Box{Min: st.Min, Max: st.Max}
		if !ok {
			b, ok = db, true
			continue
		}
		b = b.Union(db)
	}
	return b, ok
}

func (s *Session) entity(id ID) (ecs.Entity, error) {
	if id < 0 || int(id) >= len(s.entities) || s.removed[id] {
		return ecs.Entity{}, fmt.Errorf("drop %d: %w", id, ErrUnknownDrop)
	}
	return s.entities[id], nil
}
