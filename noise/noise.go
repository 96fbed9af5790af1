// Package noise provides coherent noise fields sampled in three spatial
// dimensions plus time.
package noise

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOptions is returned when a field cannot be built from its options.
var ErrInvalidOptions = errors.New("invalid noise options")

// Field is a deterministic, continuous noise function with values in [-1, 1].
type Field interface {
	Sample(x, y, z, t float64) float64
}

// FieldFunc adapts an ordinary function to the Field interface.
type FieldFunc func(x, y, z, t float64) float64

// Sample calls f(x, y, z, t).
func (f FieldFunc) Sample(x, y, z, t float64) float64 {
	return f(x, y, z, t)
}

// Kind selects a noise implementation.
type Kind uint8

const (
	KindPerlin Kind = iota
	KindOpenSimplex
)

func (k Kind) String() string {
	switch k {
	case KindPerlin:
		return "perlin"
	case KindOpenSimplex:
		return "opensimplex"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind parses "perlin" or "opensimplex" (any case).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "perlin", "":
		return KindPerlin, nil
	case "opensimplex", "simplex":
		return KindOpenSimplex, nil
	}
	return 0, fmt.Errorf("unknown noise kind %q: %w", s, ErrInvalidOptions)
}

// New builds a field of the given kind. opts only applies to Perlin fields.
func New(kind Kind, seed int64, opts Options) (Field, error) {
	switch kind {
	case KindPerlin:
		p, err := NewPerlin(seed, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	case KindOpenSimplex:
		return NewOpenSimplex(seed), nil
	}
	return nil, fmt.Errorf("noise kind %v: %w", kind, ErrInvalidOptions)
}
