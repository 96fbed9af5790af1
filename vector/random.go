package vector

import (
	"fmt"
)

// Rand is the source of randomness used by the random constructors.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Kind selects the distribution of Random components.
type Kind uint8

const (
	Float Kind = iota // uniform real in [v1, v2]
	Int               // uniform integer in [v1, v2]
)

// Random draws size (0-3, sign ignored) independent components between v1
// and v2 inclusive. The remaining components are 0.
func Random(r Rand, v1, v2 float64, size int, kind Kind) (Vector, error) {
	if size < 0 {
		size = -size
	}
	if size > 3 {
		return Vector{}, fmt.Errorf("random vector of size %d: %w", size, ErrInvalidArgument)
	}

	draw := func() float64 {
		return v1 + (v2-v1)*r.Float64()
	}
	if kind == Int {
		lo, hi := int(v1), int(v2)
		if lo > hi {
			lo, hi = hi, lo
		}
		draw = func() float64 {
			return float64(lo + r.Intn(hi-lo+1))
		}
	}

	var c [3]float64
	for i := 0; i < size; i++ {
		c[i] = draw()
	}
	return Vector{c[0], c[1], c[2]}, nil
}

// Random2D returns a vector in the XY plane with components drawn from
// [-1, 1) and rescaled to magnitude mag. The direction is not uniformly
// distributed on the circle.
func Random2D(r Rand, mag float64) Vector {
	v := Vector{X: 2 * (r.Float64() - 0.5), Y: 2 * (r.Float64() - 0.5)}
	v.SetMagnitude(mag)
	return v
}

// Random3D returns a vector with components drawn from [-1, 1) and rescaled
// to magnitude mag. The direction is not uniformly distributed on the sphere.
func Random3D(r Rand, mag float64) Vector {
	v := Vector{
		X: 2 * (r.Float64() - 0.5),
		Y: 2 * (r.Float64() - 0.5),
		Z: 2 * (r.Float64() - 0.5),
	}
	v.SetMagnitude(mag)
	return v
}
