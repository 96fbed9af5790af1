package drop

import (
	"fmt"
	"math"
	"sync"

	"github.com/pthm-cable/drop3d/vector"
)

// directions returns the n² base directions for mesh.
func directions(mesh Mesh, n int, r vector.Rand) []vector.Vector {
	if mesh == MeshRandom {
		return RandomDirections(r, n)
	}
	return UniformDirections(n)
}

// UniformDirections scans θ = i·2π/n and φ = j·π/n for i, j in [0, n) and
// returns (sinθ·cosφ, sinθ·sinφ, cosθ), θ-major. The scan is not an
// equal-area sampling of the sphere.
func UniformDirections(n int) []vector.Vector {
	if n <= 0 {
		return []vector.Vector{}
	}
	dirs := make([]vector.Vector, 0, n*n)
	for i := 0; i < n; i++ {
		theta := float64(i) * 2 * math.Pi / float64(n)
		sinT, cosT := math.Sincos(theta)
		for j := 0; j < n; j++ {
			phi := float64(j) * math.Pi / float64(n)
			sinP, cosP := math.Sincos(phi)
			dirs = append(dirs, vector.Vec(sinT*cosP, sinT*sinP, cosT))
		}
	}
	return dirs
}

// RandomDirections draws n² unit directions with vector.Random3D.
func RandomDirections(r vector.Rand, n int) []vector.Vector {
	if n <= 0 {
		return []vector.Vector{}
	}
	dirs := make([]vector.Vector, n*n)
	for i := range dirs {
		dirs[i] = vector.Random3D(r, 1)
	}
	return dirs
}

// build displaces every direction by the noise field. Large builds are split
// into contiguous chunks, one per worker; each chunk writes only its own
// index range so the output order matches a sequential build.
func (d *Drop) build(p Params, dirs []vector.Vector) ([]vector.Vector, error) {
	n := len(dirs)
	points := make([]vector.Vector, n)
	if n == 0 {
		return points, nil
	}

	// Single-threaded for small drops
	if n < d.threshold || d.workers <= 1 {
		if err := d.computeChunk(p, dirs, points, 0, n); err != nil {
			return nil, err
		}
		return points, nil
	}

	numWorkers := d.workers
	chunkSize := (n + numWorkers - 1) / numWorkers
	errs := make([]error, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			errs[w] = d.computeChunk(p, dirs, points, start, end)
		}(w, start, end)
	}
	wg.Wait()

	// Report the failure with the lowest index, as a sequential build would.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

// computeChunk fills points[i0:i1].
func (d *Drop) computeChunk(p Params, dirs, points []vector.Vector, i0, i1 int) error {
	s := p.Squish
	for i := i0; i < i1; i++ {
		dir := dirs[i]
		v := d.field.Sample(dir.X/s, dir.Y/s, dir.Z/s, p.TimeOffset)
		r := Remap(v, -1, 1, p.MinRadius, p.MaxRadius)
		pt := dir.Scale(r).Add(p.Center)
		if !finiteVec(pt) {
			return fmt.Errorf("point %d is %v (noise %v, radius %v): %w", i, pt, v, r, ErrInvalidConfig)
		}
		points[i] = pt
	}
	return nil
}
