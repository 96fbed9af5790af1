package noise

import (
	"fmt"
	"math"
	"math/rand"
)

// MaxDimension is the largest number of inputs a Perlin field can use.
const MaxDimension = 4

// Options configures a Perlin field. The zero value is a 4D single-octave
// field without unbiasing.
type Options struct {
	Dimension int               // number of inputs used, 1-4 (0 = 4)
	Octaves   int               // summed octaves (0 = 1)
	Tile      [MaxDimension]int // lattice period per axis at octave 0 (0 = no tiling)
	Unbias    bool              // push the output away from 0, see Perlin.Sample
}

// Perlin generates gradient noise in up to four dimensions.
type Perlin struct {
	dim     int
	octaves int
	tile    [MaxDimension]int
	unbias  bool
	scale   float64

	perm  [512]int
	grads [256][MaxDimension]float64
}

// NewPerlin creates a Perlin field whose permutation and gradient tables
// are derived from seed.
func NewPerlin(seed int64, opts Options) (*Perlin, error) {
	if opts.Dimension == 0 {
		opts.Dimension = MaxDimension
	}
	if opts.Octaves == 0 {
		opts.Octaves = 1
	}
	if opts.Dimension < 1 || opts.Dimension > MaxDimension {
		return nil, fmt.Errorf("dimension %d outside [1, %d]: %w", opts.Dimension, MaxDimension, ErrInvalidOptions)
	}
	if opts.Octaves < 1 || opts.Octaves > 30 {
		return nil, fmt.Errorf("octaves %d outside [1, 30]: %w", opts.Octaves, ErrInvalidOptions)
	}
	for i, period := range opts.Tile {
		if period < 0 {
			return nil, fmt.Errorf("tile period %d on axis %d: %w", period, i, ErrInvalidOptions)
		}
	}

	// The range of plain n-D gradient noise is ±sqrt(n)/2.
	p := &Perlin{
		dim:     opts.Dimension,
		octaves: opts.Octaves,
		tile:    opts.Tile,
		unbias:  opts.Unbias,
		scale:   2 / math.Sqrt(float64(opts.Dimension)),
	}
	rng := rand.New(rand.NewSource(seed))

	// Initialize permutation table
	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Shuffle
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	// Gradients are random unit vectors. In 1D the only unit vectors are ±1,
	// so a slope in [-1, 1] is used instead.
	for i := range p.grads {
		g := &p.grads[i]
		if p.dim == 1 {
			g[0] = 2*rng.Float64() - 1
			continue
		}
		for {
			var sq float64
			for d := 0; d < p.dim; d++ {
				g[d] = rng.NormFloat64()
				sq += g[d] * g[d]
			}
			if sq == 0 {
				continue
			}
			inv := 1 / math.Sqrt(sq)
			for d := 0; d < p.dim; d++ {
				g[d] *= inv
			}
			break
		}
	}

	return p, nil
}

// Dimension returns the number of inputs the field uses.
func (p *Perlin) Dimension() int {
	return p.dim
}

// Sample returns the noise value at (x, y, z, t), using only the first
// Dimension inputs. Octave o is sampled at frequency 2^o with weight 1/2^o
// and the sum is renormalised to ±1. With Unbias the result is remapped
// through smoothstep, once per two octaves (rounded), to counter the
// clustering of Perlin output around 0. The value is clamped to [-1, 1].
func (p *Perlin) Sample(x, y, z, t float64) float64 {
	in := [MaxDimension]float64{x, y, z, t}

	var sum float64
	for o := 0; o < p.octaves; o++ {
		freq := float64(int64(1) << o)
		var pt [MaxDimension]float64
		var period [MaxDimension]int
		for d := 0; d < p.dim; d++ {
			pt[d] = in[d] * freq
			period[d] = p.tile[d] << o
		}
		sum += p.plain(&pt, &period) / freq
	}
	// 1 octave: ±1, 2 octaves: ±1.5, 3 octaves: ±1.75, ...
	sum /= 2 - math.Pow(2, float64(1-p.octaves))

	if p.unbias {
		r := (sum + 1) / 2
		for i := 0; i < int(float64(p.octaves)/2+0.5); i++ {
			r = smoothstep(r)
		}
		sum = r*2 - 1
	}

	return clamp(sum)
}

// plain evaluates a single octave at pt, wrapping lattice coordinates on
// axes with a positive period.
func (p *Perlin) plain(pt *[MaxDimension]float64, period *[MaxDimension]int) float64 {
	var cell [MaxDimension]int
	var frac, s [MaxDimension]float64
	for d := 0; d < p.dim; d++ {
		f := math.Floor(pt[d])
		cell[d] = int(f)
		frac[d] = pt[d] - f
		s[d] = smoothstep(frac[d])
	}

	// Corner k has bit (dim-1-d) set when it lies on the upper side of
	// axis d, so the last axis alternates fastest.
	corners := 1 << p.dim
	var dots [1 << MaxDimension]float64
	for k := 0; k < corners; k++ {
		h := 0
		var off [MaxDimension]float64
		for d := 0; d < p.dim; d++ {
			bit := (k >> (p.dim - 1 - d)) & 1
			c := cell[d] + bit
			if period[d] > 0 {
				c = mod(c, period[d])
			}
			h = p.perm[h+(c&255)]
			off[d] = frac[d] - float64(bit)
		}
		g := &p.grads[h]
		var dot float64
		for d := 0; d < p.dim; d++ {
			dot += g[d] * off[d]
		}
		dots[k] = dot
	}

	// Collapse one axis at a time, last axis first.
	n := corners
	for d := p.dim - 1; d >= 0; d-- {
		for m := 0; m < n/2; m++ {
			dots[m] = lerp(s[d], dots[2*m], dots[2*m+1])
		}
		n /= 2
	}

	return dots[0] * p.scale
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
