package noise

import (
	"github.com/ojrac/opensimplex-go"
)

// OpenSimplex is a 4D OpenSimplex field.
type OpenSimplex struct {
	noise opensimplex.Noise
}

// NewOpenSimplex creates an OpenSimplex field seeded with seed.
func NewOpenSimplex(seed int64) *OpenSimplex {
	return &OpenSimplex{noise: opensimplex.New(seed)}
}

// Sample returns the 4D OpenSimplex value at (x, y, z, t), clamped to [-1, 1].
func (o *OpenSimplex) Sample(x, y, z, t float64) float64 {
	return clamp(o.noise.Eval4(x, y, z, t))
}
