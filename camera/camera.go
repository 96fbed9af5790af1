// Package camera provides an orbit camera for viewing point clouds.
package camera

import (
	"math"

	"github.com/pthm-cable/drop3d/vector"
)

// maxPitch keeps the eye off the poles, where the up vector degenerates.
const maxPitch = math.Pi/2 - 0.01

// Orbit circles a target point. The world is Y-up.
type Orbit struct {
	// Target is the point the camera looks at
	Target vector.Vector

	// Yaw around +Y in radians, 0 looking down -Z from +Z
	Yaw float64
	// Pitch above the XZ plane in radians
	Pitch float64

	// Distance from the target
	Distance float64

	// Distance constraints
	MinDistance, MaxDistance float64
}

// New creates a camera looking at target from distance along +Z.
func New(target vector.Vector, distance float64) *Orbit {
	o := &Orbit{
		Target:      target,
		MinDistance: 0.1,
		MaxDistance: 1000,
	}
	o.SetDistance(distance)
	return o
}

// Position returns the eye position.
func (o *Orbit) Position() vector.Vector {
	sinY, cosY := math.Sincos(o.Yaw)
	sinP, cosP := math.Sincos(o.Pitch)
	offset := vector.Vec(cosP*sinY, sinP, cosP*cosY)
	return o.Target.Add(offset.Scale(o.Distance))
}

// Forward returns the unit direction from the eye to the target.
func (o *Orbit) Forward() vector.Vector {
	sinY, cosY := math.Sincos(o.Yaw)
	sinP, cosP := math.Sincos(o.Pitch)
	return vector.Vec(-cosP*sinY, -sinP, -cosP*cosY)
}

// Right returns the unit screen-right direction, always horizontal.
func (o *Orbit) Right() vector.Vector {
	sinY, cosY := math.Sincos(o.Yaw)
	return vector.Vec(cosY, 0, -sinY)
}

// Up returns the unit screen-up direction.
func (o *Orbit) Up() vector.Vector {
	return o.Right().Cross(o.Forward())
}

// Rotate changes yaw and pitch. Yaw wraps to [0, 2π); pitch is clamped
// short of straight up or down.
func (o *Orbit) Rotate(dYaw, dPitch float64) {
	o.Yaw = mod(o.Yaw+dYaw, 2*math.Pi)
	o.Pitch = clamp(o.Pitch+dPitch, -maxPitch, maxPitch)
}

// SetDistance sets the distance, clamped to min/max.
func (o *Orbit) SetDistance(d float64) {
	o.Distance = clamp(d, o.MinDistance, o.MaxDistance)
}

// Zoom multiplies the current distance by the given factor.
func (o *Orbit) Zoom(factor float64) {
	o.SetDistance(o.Distance * factor)
}

// Pan moves the target in the view plane. dx and dy are fractions of the
// current distance.
func (o *Orbit) Pan(dx, dy float64) {
	move := o.Right().Scale(dx * o.Distance).Add(o.Up().Scale(dy * o.Distance))
	o.Target = o.Target.Add(move)
}

// Frame centers the camera on the box [lo, hi] and backs off until a
// sphere around the box fits a vertical field of view of fovDeg degrees.
// The distance range is widened if the box needs it.
func (o *Orbit) Frame(lo, hi vector.Vector, fovDeg float64) {
	o.Target = lo.Lerp(hi, 0.5)
	radius := lo.Distance(hi) / 2
	if radius == 0 {
		radius = 1
	}
	half := fovDeg * math.Pi / 360
	d := radius / math.Sin(half)
	if d > o.MaxDistance {
		o.MaxDistance = d * 2
	}
	if radius/10 < o.MinDistance {
		o.MinDistance = radius / 10
	}
	o.SetDistance(d)
}

// Reset returns to yaw and pitch zero without moving the target.
func (o *Orbit) Reset() {
	o.Yaw = 0
	o.Pitch = 0
}

// mod computes the positive modulo (math.Mod can return negative).
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
