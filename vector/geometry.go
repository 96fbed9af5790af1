package vector

import (
	"fmt"
	"math"
	"strings"
)

// Axis returns the canonical unit axis named "x", "y" or "z" (any case).
func Axis(name string) (Vector, error) {
	switch strings.ToLower(name) {
	case "x":
		return UnitX, nil
	case "y":
		return UnitY, nil
	case "z":
		return UnitZ, nil
	}
	return Vector{}, fmt.Errorf("axis %q: %w", name, ErrInvalidArgument)
}

// NextAxis returns the canonical axis that cyclically follows axis
// (x -> y -> z -> x). ok is false for any non-canonical axis.
func NextAxis(axis Vector) (next Vector, ok bool) {
	switch {
	case axis.Equal(UnitX):
		return UnitY, true
	case axis.Equal(UnitY):
		return UnitZ, true
	case axis.Equal(UnitZ):
		return UnitX, true
	}
	return Vector{}, false
}

func checkAxis(axis Vector) error {
	if axis.MagnitudeSq() == 0 {
		return fmt.Errorf("zero axis: %w", ErrDomain)
	}
	return nil
}

// Project removes the component of v along axis, leaving v perpendicular
// to it. axis is expected to be of unit length.
func (v *Vector) Project(axis Vector) error {
	p, err := v.Projected(axis)
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Projected returns v - (v·axis)axis.
func (v Vector) Projected(axis Vector) (Vector, error) {
	if err := checkAxis(axis); err != nil {
		return v, err
	}
	return v.Sub(axis.Scale(v.Dot(axis))), nil
}

// Rotate turns v by angle radians around axis using Rodrigues' formula.
// axis is expected to be of unit length.
func (v *Vector) Rotate(angle float64, axis Vector) error {
	r, err := v.Rotated(angle, axis)
	if err != nil {
		return err
	}
	*v = r
	return nil
}

// Rotated returns v turned by angle radians around axis:
// cos θ·v + sin θ·(axis × v) + (1 − cos θ)·axis·(axis·v).
func (v Vector) Rotated(angle float64, axis Vector) (Vector, error) {
	if err := checkAxis(axis); err != nil {
		return v, err
	}
	sin, cos := math.Sincos(angle)
	return v.Scale(cos).
		Add(axis.Cross(v).Scale(sin)).
		Add(axis.Scale((1 - cos) * axis.Dot(v))), nil
}

// Angle returns the angle, in [0, π], between the projection of v onto the
// plane perpendicular to axis and the canonical axis following it. Only the
// canonical axes are accepted.
func (v Vector) Angle(axis Vector) (float64, error) {
	base, ok := NextAxis(axis)
	if !ok {
		return 0, fmt.Errorf("angle about non-canonical axis %v: %w", axis, ErrDomain)
	}
	p, err := v.Projected(axis)
	if err != nil {
		return 0, err
	}
	m := p.Magnitude()
	if m == 0 {
		return 0, fmt.Errorf("angle of %v about %v: projection is zero: %w", v, axis, ErrDomain)
	}
	return math.Acos(clampUnit(p.Dot(base) / m)), nil
}

// SetAngle rotates v around axis so that Angle(axis) becomes angle.
func (v *Vector) SetAngle(angle float64, axis Vector) error {
	cur, err := v.Angle(axis)
	if err != nil {
		return err
	}
	return v.Rotate(angle-cur, axis)
}

// AngleBetween returns the angle in radians between v and o.
func (v Vector) AngleBetween(o Vector) (float64, error) {
	m := v.Magnitude() * o.Magnitude()
	if m == 0 {
		return 0, fmt.Errorf("angle between %v and %v: %w", v, o, ErrDomain)
	}
	return math.Acos(clampUnit(v.Dot(o) / m)), nil
}

func clampUnit(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}
