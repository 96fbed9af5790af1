package drop

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/drop3d/vector"
)

// Stats summarises the radii and extent of a drop.
type Stats struct {
	Count        int
	MeanRadius   float64
	StdRadius    float64
	MinRadius    float64
	MedianRadius float64
	MaxRadius    float64
	Min, Max     vector.Vector // bounding box corners
}

// Stats computes radius statistics relative to the drop center. A drop
// without points returns the zero Stats with Min and Max at the center.
func (d *Drop) Stats() Stats {
	c := d.params.Center
	s := Stats{Count: len(d.points), Min: c, Max: c}
	if len(d.points) == 0 {
		return s
	}

	radii := make([]float64, len(d.points))
	for i, p := range d.points {
		radii[i] = p.Distance(c)
	}
	s.MeanRadius, s.StdRadius = stat.MeanStdDev(radii, nil)
	if len(radii) == 1 {
		s.StdRadius = 0
	}
	s.MinRadius = floats.Min(radii)
	s.MaxRadius = floats.Max(radii)
	sort.Float64s(radii)
	s.MedianRadius = stat.Quantile(0.5, stat.Empirical, radii, nil)

	xs, ys, zs := d.AsSurface()
	s.Min = vector.Vec(floats.Min(xs), floats.Min(ys), floats.Min(zs))
	s.Max = vector.Vec(floats.Max(xs), floats.Max(ys), floats.Max(zs))
	return s
}
