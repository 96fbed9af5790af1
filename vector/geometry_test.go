package vector

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestAxis(t *testing.T) {
	for name, want := range map[string]Vector{"x": UnitX, "Y": UnitY, "z": UnitZ} {
		got, err := Axis(name)
		if err != nil {
			t.Fatalf("Axis(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("Axis(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := Axis("w"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Axis(\"w\"): expected ErrInvalidArgument, got %v", err)
	}
}

func TestProjected(t *testing.T) {
	v := Vec(1, 2, 3)
	p, err := v.Projected(UnitZ)
	if err != nil {
		t.Fatal(err)
	}
	if p != Vec(1, 2, 0) {
		t.Errorf("Projected(z) = %v", p)
	}

	axis, _ := Vec(1, 1, 1).Normalized()
	p, err = v.Projected(axis)
	if err != nil {
		t.Fatal(err)
	}
	if d := p.Dot(axis); !approx(d, 0) {
		t.Errorf("projection still has component %v along axis", d)
	}

	if err := v.Project(UnitX); err != nil {
		t.Fatal(err)
	}
	if v != Vec(0, 2, 3) {
		t.Errorf("Project(x) = %v", v)
	}
}

func TestProjectZeroAxis(t *testing.T) {
	v := Vec(1, 2, 3)
	if err := v.Project(Vector{}); !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
	if v != Vec(1, 2, 3) {
		t.Errorf("failed Project mutated vector: %v", v)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		axis Vector
		want Vector
	}{
		{"x about z", UnitX, UnitZ, UnitY},
		{"y about x", UnitY, UnitX, UnitZ},
		{"z about y", UnitZ, UnitY, UnitX},
		{"on axis", UnitZ, UnitZ, UnitZ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Rotated(math.Pi/2, tt.axis)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Rotated = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := Random3D(rng, 1+rng.Float64()*10)
		axis := Random3D(rng, 1)
		theta := (rng.Float64() - 0.5) * 4 * math.Pi

		orig := v
		if err := v.Rotate(theta, axis); err != nil {
			t.Fatal(err)
		}
		if err := v.Rotate(-theta, axis); err != nil {
			t.Fatal(err)
		}
		if !v.Equal(orig) {
			t.Fatalf("rotate(%v) then rotate(%v) about %v: %v != %v", theta, -theta, axis, v, orig)
		}
	}
}

func TestRotatedMatchesR3(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		v := Random3D(rng, 3)
		axis := Random3D(rng, 1)
		theta := rng.Float64() * 2 * math.Pi

		got, err := v.Rotated(theta, axis)
		if err != nil {
			t.Fatal(err)
		}
		want := FromR3(r3.Rotate(v.R3(), theta, axis.R3()))
		if !got.Equal(want) {
			t.Fatalf("Rotated(%v, %v) = %v, r3 gives %v", theta, axis, got, want)
		}
	}
}

func TestRotatePreservesMagnitude(t *testing.T) {
	v := Vec(2, 3, 6)
	if err := v.Rotate(1.234, UnitY); err != nil {
		t.Fatal(err)
	}
	if !approx(v.Magnitude(), 7) {
		t.Errorf("magnitude after rotation = %v", v.Magnitude())
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		axis Vector
		want float64
	}{
		{"x about z", UnitX.Add(UnitZ), UnitZ, 0},
		{"y about z", UnitY, UnitZ, math.Pi / 2},
		{"-x about z", Vec(-1, 0, 5), UnitZ, math.Pi},
		{"z about y", UnitZ, UnitY, 0},
		{"y about x", Vec(3, 1, 1), UnitX, math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Angle(tt.axis)
			if err != nil {
				t.Fatal(err)
			}
			if !approx(got, tt.want) {
				t.Errorf("Angle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleErrors(t *testing.T) {
	if _, err := Vec(1, 2, 3).Angle(Vec(0, 0.6, 0.8)); !errors.Is(err, ErrDomain) {
		t.Errorf("non-canonical axis: expected ErrDomain, got %v", err)
	}
	if _, err := Vec(0, 0, 3).Angle(UnitZ); !errors.Is(err, ErrDomain) {
		t.Errorf("vector along axis: expected ErrDomain, got %v", err)
	}
}

func TestSetAngle(t *testing.T) {
	v := Vec(1, 0, 2)
	if err := v.SetAngle(math.Pi/3, UnitZ); err != nil {
		t.Fatal(err)
	}
	got, err := v.Angle(UnitZ)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, math.Pi/3) {
		t.Errorf("angle after SetAngle = %v, want %v", got, math.Pi/3)
	}
	if !approx(v.Z, 2) {
		t.Errorf("rotation about z changed z to %v", v.Z)
	}
}

func TestAngleBetween(t *testing.T) {
	got, err := Vec2(0, 1).AngleBetween(Vec2(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, math.Pi/2) {
		t.Errorf("AngleBetween = %v, want π/2", got)
	}

	got, err = Vec(1, 1, 1).AngleBetween(Vec(2, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got) > 1e-7 {
		t.Errorf("parallel AngleBetween = %v, want 0", got)
	}

	if _, err := (Vector{}).AngleBetween(UnitX); !errors.Is(err, ErrDomain) {
		t.Errorf("zero vector: expected ErrDomain, got %v", err)
	}
}
