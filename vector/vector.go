// Package vector provides a 3D Euclidean vector and the algebra used to build drop surfaces.
package vector

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the per-component tolerance used by Equal.
const Epsilon = 1e-8

var (
	// ErrInvalidArgument is returned for malformed inputs such as too many components.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDomain is returned when an operation is undefined for its input, e.g. normalizing a zero vector.
	ErrDomain = errors.New("domain error")
)

// Canonical unit axes.
var (
	UnitX = Vector{X: 1}
	UnitY = Vector{Y: 1}
	UnitZ = Vector{Z: 1}
)

// Vector is a 3D vector. 2D vectors are represented with Z = 0.
type Vector struct {
	X, Y, Z float64
}

// New builds a vector from up to three components. Missing components are 0.
func New(components ...float64) (Vector, error) {
	if len(components) > 3 {
		return Vector{}, fmt.Errorf("vector with %d components: %w", len(components), ErrInvalidArgument)
	}
	var c [3]float64
	copy(c[:], components)
	return Vector{c[0], c[1], c[2]}, nil
}

// Vec returns the vector (x, y, z).
func Vec(x, y, z float64) Vector {
	return Vector{x, y, z}
}

// Vec2 returns the vector (x, y, 0).
func Vec2(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// FromAngle returns the unit vector in the XY plane at angle radians from +X.
func FromAngle(angle float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{X: cos, Y: sin}
}

// FromR3 converts a gonum r3 vector.
func FromR3(v r3.Vec) Vector {
	return Vector{v.X, v.Y, v.Z}
}

// R3 converts v to a gonum r3 vector.
func (v Vector) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Components returns the components as an array.
func (v Vector) Components() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Coords returns the components named in get, in order. Characters other
// than x, y and z (any case) are ignored.
func (v Vector) Coords(get string) []float64 {
	out := make([]float64, 0, len(get))
	for _, c := range strings.ToLower(get) {
		switch c {
		case 'x':
			out = append(out, v.X)
		case 'y':
			out = append(out, v.Y)
		case 'z':
			out = append(out, v.Z)
		}
	}
	return out
}

// SetCoord overwrites the non-nil components.
func (v *Vector) SetCoord(x, y, z *float64) {
	if x != nil {
		v.X = *x
	}
	if y != nil {
		v.Y = *y
	}
	if z != nil {
		v.Z = *z
	}
}

// Equal reports whether every component of v and o differs by at most Epsilon.
func (v Vector) Equal(o Vector) bool {
	return math.Abs(v.X-o.X) <= Epsilon &&
		math.Abs(v.Y-o.Y) <= Epsilon &&
		math.Abs(v.Z-o.Z) <= Epsilon
}

func (v Vector) String() string {
	return fmt.Sprintf("Vector(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Neg returns -v.
func (v Vector) Neg() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

// Mul returns the component-wise product.
func (v Vector) Mul(o Vector) Vector {
	return Vector{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Div returns v / s. Division by zero follows IEEE 754.
func (v Vector) Div(s float64) Vector {
	return Vector{v.X / s, v.Y / s, v.Z / s}
}

// DivVec returns the component-wise quotient.
func (v Vector) DivVec(o Vector) Vector {
	return Vector{v.X / o.X, v.Y / o.Y, v.Z / o.Z}
}

// FloorDiv returns floor(v / s) per component.
func (v Vector) FloorDiv(s float64) Vector {
	return Vector{math.Floor(v.X / s), math.Floor(v.Y / s), math.Floor(v.Z / s)}
}

// FloorDivVec returns floor(v / o) per component.
func (v Vector) FloorDivVec(o Vector) Vector {
	return Vector{math.Floor(v.X / o.X), math.Floor(v.Y / o.Y), math.Floor(v.Z / o.Z)}
}

// Lerp linearly interpolates from v towards o by amount.
func (v Vector) Lerp(o Vector, amount float64) Vector {
	return v.Add(o.Sub(v).Scale(amount))
}

// Dot returns the Euclidean dot product.
func (v Vector) Dot(o Vector) float64 {
	return r3.Dot(v.R3(), o.R3())
}

// Cross returns the right-handed cross product v × o.
func (v Vector) Cross(o Vector) Vector {
	return FromR3(r3.Cross(v.R3(), o.R3()))
}

// Magnitude returns the Euclidean norm.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.Dot(v))
}

// MagnitudeSq returns the squared norm.
func (v Vector) MagnitudeSq() float64 {
	return v.Dot(v)
}

// SetMagnitude rescales v to length |m|. A zero vector is left unchanged.
func (v *Vector) SetMagnitude(m float64) {
	cur := v.Magnitude()
	if cur == 0 {
		return
	}
	*v = v.Scale(math.Abs(m) / cur)
}

// SetMagnitudeSq rescales v so that its squared length is m.
func (v *Vector) SetMagnitudeSq(m float64) {
	v.SetMagnitude(math.Sqrt(m))
}

// Normalize scales v to unit length.
func (v *Vector) Normalize() error {
	if v.Magnitude() == 0 {
		return fmt.Errorf("zero vector cannot be normalized: %w", ErrDomain)
	}
	v.SetMagnitude(1)
	return nil
}

// Normalized returns a unit-length copy of v.
func (v Vector) Normalized() (Vector, error) {
	err := v.Normalize()
	return v, err
}

// Limit clamps the magnitude of v into [lower, upper]. Pass math.Inf(1)
// and 0 to leave the upper or lower side unclamped.
func (v *Vector) Limit(upper, lower float64) {
	m := v.Magnitude()
	if m < lower {
		v.SetMagnitude(lower)
	} else if m > upper {
		v.SetMagnitude(upper)
	}
}

// Limited returns a copy of v with its magnitude clamped into [lower, upper].
func (v Vector) Limited(upper, lower float64) Vector {
	v.Limit(upper, lower)
	return v
}

// Distance returns the distance between the points v and o.
func (v Vector) Distance(o Vector) float64 {
	return v.Sub(o).Magnitude()
}

// DistanceSq returns the squared distance between the points v and o.
func (v Vector) DistanceSq(o Vector) float64 {
	return v.Sub(o).MagnitudeSq()
}

// Round rounds each component to ndigits decimal places, halves to even.
// ndigits may be negative.
func (v *Vector) Round(ndigits int) {
	p := math.Pow(10, float64(ndigits))
	round := func(x float64) float64 {
		r := math.RoundToEven(x*p) / p
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return x
		}
		return r
	}
	v.X, v.Y, v.Z = round(v.X), round(v.Y), round(v.Z)
}

// Rounded returns a copy of v rounded to ndigits decimal places.
func (v Vector) Rounded(ndigits int) Vector {
	v.Round(ndigits)
	return v
}

// Invert replaces each component by its reciprocal. Components within
// Epsilon of zero are left as they are.
func (v *Vector) Invert() {
	inv := func(x float64) float64 {
		if math.Abs(x) < Epsilon {
			return x
		}
		return 1 / x
	}
	v.X, v.Y, v.Z = inv(v.X), inv(v.Y), inv(v.Z)
}

// Inverted returns the component-wise reciprocal. Zero components become
// ±Inf; see CatchInf.
func (v Vector) Inverted() Vector {
	return Vector{1 / v.X, 1 / v.Y, 1 / v.Z}
}

// CatchInf replaces +Inf and NaN components with 0.
func (v *Vector) CatchInf() {
	catch := func(x float64) float64 {
		if math.IsInf(x, 1) || math.IsNaN(x) {
			return 0
		}
		return x
	}
	v.X, v.Y, v.Z = catch(v.X), catch(v.Y), catch(v.Z)
}
