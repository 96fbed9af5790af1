package session

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/drop3d/drop"
	"github.com/pthm-cable/drop3d/noise"
	"github.com/pthm-cable/drop3d/vector"
)

// Request holds the arguments of CreateDrop. In fixed mode every field is
// required; in random mode only the radii are, and X, Y and Z are ignored.
type Request struct {
	X, Y, Z              *float64
	MinRadius, MaxRadius *float64
}

// Fixed returns a request with every field set.
func Fixed(x, y, z, minR, maxR float64) Request {
	return Request{X: &x, Y: &y, Z: &z, MinRadius: &minR, MaxRadius: &maxR}
}

// Radii returns a request with only the radius range set, for random mode.
func Radii(minR, maxR float64) Request {
	return Request{MinRadius: &minR, MaxRadius: &maxR}
}

// missing lists the names of required fields that are nil.
func (r Request) missing(mode GenMode) []string {
	var names []string
	check := func(name string, v *float64) {
		if v == nil {
			names = append(names, name)
		}
	}
	if mode == GenFixed {
		check("x", r.X)
		check("y", r.Y)
		check("z", r.Z)
	}
	check("min_r", r.MinRadius)
	check("max_r", r.MaxRadius)
	return names
}

// CreateDrop builds a drop from req and the current settings and returns
// its ID. Nothing is stored on error.
func (s *Session) CreateDrop(req Request) (ID, error) {
	if names := req.missing(s.settings.GenMode); len(names) > 0 {
		return 0, fmt.Errorf("%s mode requires %v: %w", s.settings.GenMode, names, ErrMissingParam)
	}

	var center vector.Vector
	switch s.settings.GenMode {
	case GenFixed:
		center = vector.Vec(*req.X, *req.Y, *req.Z)
	case GenRandom:
		center = s.randomCenter()
	default:
		return 0, fmt.Errorf("generation mode %v: %w", s.settings.GenMode, ErrInvalidMode)
	}

	id := ID(len(s.entities))
	d, err := s.newDrop(id, drop.Params{
		Center:    center,
		MinRadius: *req.MinRadius,
		MaxRadius: *req.MaxRadius,
		N:         s.settings.Precision,
		Squish:    s.settings.Squish,
		Mesh:      s.settings.MeshMode,
	})
	if err != nil {
		return 0, fmt.Errorf("creating drop %d: %w", id, err)
	}

	e := s.dropMapper.NewEntity(
		&Serial{ID: id},
		&Placement{Center: center},
		&RadiusRange{Min: *req.MinRadius, Max: *req.MaxRadius},
		&Surface{Drop: d},
	)
	s.entities = append(s.entities, e)
	s.removed = append(s.removed, false)

	s.logger.Info("drop created",
		"id", int(id),
		"center", center.String(),
		"min_r", *req.MinRadius,
		"max_r", *req.MaxRadius,
		"points", d.Len(),
	)
	return id, nil
}

// randomCenter draws a point uniformly inside the scene box.
func (s *Session) randomCenter() vector.Vector {
	b := s.settings.Scene
	uniform := func(a, b float64) float64 {
		return a + (b-a)*s.rng.Float64()
	}
	return vector.Vec(
		uniform(b.Min.X, b.Max.X),
		uniform(b.Min.Y, b.Max.Y),
		uniform(b.Min.Z, b.Max.Z),
	)
}

// newDrop builds drop id with its own noise field and direction source, both
// seeded from the session seed and the ID.
func (s *Session) newDrop(id ID, p drop.Params) (*drop.Drop, error) {
	seed := s.settings.Seed + int64(id)
	field, err := noise.New(s.settings.Noise.Kind, seed, s.settings.Noise.Options)
	if err != nil {
		return nil, err
	}
	opts := []drop.Option{
		drop.WithField(field),
		drop.WithRand(rand.New(rand.NewSource(seed))),
		drop.WithLogger(s.logger.With("drop", int(id))),
	}
	if s.settings.Workers > 0 {
		opts = append(opts, drop.WithWorkers(s.settings.Workers))
	}
	if s.settings.Threshold > 0 {
		opts = append(opts, drop.WithParallelThreshold(s.settings.Threshold))
	}
	return drop.New(p, opts...)
}

// Rebuild applies the current precision, squish and mesh mode to every live
// drop, keeping centers, radius ranges and time offsets. Drops that fail
// keep their previous points; the errors are joined.
func (s *Session) Rebuild() error {
	var errs []error
	query := s.dropFilter.Query()
	for query.Next() {
		place, surf := query.Get()
		rr := s.rangeMap.Get(query.Entity())
		p := surf.Drop.Params()
		p.Center = place.Center
		p.MinRadius, p.MaxRadius = rr.Min, rr.Max
		p.N = s.settings.Precision
		p.Squish = s.settings.Squish
		p.Mesh = s.settings.MeshMode
		if err := surf.Drop.SetParams(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Advance moves every live drop forward by dt in the time dimension.
func (s *Session) Advance(dt float64) error {
	var errs []error
	query := s.dropFilter.Query()
	for query.Next() {
		_, surf := query.Get()
		if err := surf.Drop.Advance(dt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetRadii changes the radius range of drop id and rebuilds it. On error the
// drop and its stored range are unchanged.
func (s *Session) SetRadii(id ID, minR, maxR float64) error {
	e, err := s.entity(id)
	if err != nil {
		return err
	}
	d := s.surfaceMap.Get(e).Drop
	p := d.Params()
	p.MinRadius, p.MaxRadius = minR, maxR
	if err := d.SetParams(p); err != nil {
		return fmt.Errorf("drop %d: %w", id, err)
	}
	*s.rangeMap.Get(e) = RadiusRange{Min: minR, Max: maxR}
	return nil
}
