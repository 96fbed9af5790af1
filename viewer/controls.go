package viewer

import (
	"errors"
	"math"

	"github.com/pthm-cable/drop3d/config"
	"github.com/pthm-cable/drop3d/session"
)

// Slider ranges.
const (
	minPrecision = 4
	maxPrecision = 360
	minSquish    = 0.5
	maxSquish    = 30
	maxRadius    = 5
)

// controls holds the values edited through the side panel.
type controls struct {
	Precision float32
	Squish    float32
	MinRadius float32
	MaxRadius float32
	TimeSpeed float32
	Animate   bool
}

func newControls(s *session.Session, cfg *config.Config) controls {
	return controls{
		Precision: float32(s.Precision()),
		Squish:    float32(s.Squish()),
		MinRadius: float32(cfg.Drop.MinRadius),
		MaxRadius: float32(cfg.Drop.MaxRadius),
		TimeSpeed: float32(cfg.Viewer.TimeSpeed),
		Animate:   cfg.Viewer.Animate,
	}
}

// apply pushes the differences between c and prev into s and reports
// whether any drop may have changed. Failed drops keep their old points.
func (c controls) apply(prev controls, s *session.Session) (bool, error) {
	rebuilt := false

	n := int(math.Round(float64(c.Precision)))
	if n != int(math.Round(float64(prev.Precision))) || c.Squish != prev.Squish {
		s.SetPrecision(n)
		s.SetSquish(float64(c.Squish))
		rebuilt = true
		if err := s.Rebuild(); err != nil {
			return rebuilt, err
		}
	}

	if c.MinRadius != prev.MinRadius || c.MaxRadius != prev.MaxRadius {
		var errs []error
		for id := range s.Each() {
			if err := s.SetRadii(id, float64(c.MinRadius), float64(c.MaxRadius)); err != nil {
				errs = append(errs, err)
			}
		}
		rebuilt = true
		if err := errors.Join(errs...); err != nil {
			return rebuilt, err
		}
	}
	return rebuilt, nil
}
