package viewer

import (
	"math"
	"testing"

	"github.com/pthm-cable/drop3d/config"
	"github.com/pthm-cable/drop3d/session"
	"github.com/pthm-cable/drop3d/vector"
)

func testSession(t *testing.T) (*session.Session, *config.Config) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Drop.Precision = 6
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	s, err := session.New(cfg.SessionSettings())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.CreateDrop(cfg.DropRequest()); err != nil {
			t.Fatal(err)
		}
	}
	return s, cfg
}

func TestNewControls(t *testing.T) {
	s, cfg := testSession(t)
	c := newControls(s, cfg)
	if c.Precision != 6 || c.Squish != 10 {
		t.Errorf("controls = %+v", c)
	}
	if c.MinRadius != float32(cfg.Drop.MinRadius) || c.Animate != cfg.Viewer.Animate {
		t.Errorf("controls = %+v", c)
	}
}

func TestApplyUnchanged(t *testing.T) {
	s, cfg := testSession(t)
	c := newControls(s, cfg)
	rebuilt, err := c.apply(c, s)
	if err != nil || rebuilt {
		t.Errorf("apply(same) = %v, %v", rebuilt, err)
	}
}

func TestApplyPrecisionAndSquish(t *testing.T) {
	s, cfg := testSession(t)
	prev := newControls(s, cfg)
	next := prev
	next.Precision = 9.4 // rounds to 9
	next.Squish = 2

	rebuilt, err := next.apply(prev, s)
	if err != nil || !rebuilt {
		t.Fatalf("apply = %v, %v", rebuilt, err)
	}
	if s.Precision() != 9 || s.Squish() != 2 {
		t.Errorf("session precision %d squish %v", s.Precision(), s.Squish())
	}
	for id, d := range s.Each() {
		if d.Len() != 81 {
			t.Errorf("drop %d has %d points, want 81", id, d.Len())
		}
	}
}

func TestApplyRadii(t *testing.T) {
	s, cfg := testSession(t)
	prev := newControls(s, cfg)
	next := prev
	next.MinRadius, next.MaxRadius = 2, 2

	rebuilt, err := next.apply(prev, s)
	if err != nil || !rebuilt {
		t.Fatalf("apply = %v, %v", rebuilt, err)
	}
	for id, d := range s.Each() {
		c := d.Center()
		for _, p := range d.Points() {
			if math.Abs(p.Distance(c)-2) > 1e-6 {
				t.Fatalf("drop %d point at radius %v, want 2", id, p.Distance(c))
			}
		}
	}
}

func TestToVector3(t *testing.T) {
	got := toVector3(vector.Vec(1.5, -2, 3))
	if got.X != 1.5 || got.Y != -2 || got.Z != 3 {
		t.Errorf("toVector3 = %+v", got)
	}
}

func TestTintSaturates(t *testing.T) {
	c := tint([4]uint8{250, 10, 100, 255}, 1)
	if c.R != 255 || c.G != 0 || c.B != 100 || c.A != 255 {
		t.Errorf("tint = %+v", c)
	}
	if c := tint([4]uint8{90, 170, 255, 255}, 0); c.R != 90 || c.G != 170 {
		t.Errorf("tint(0) = %+v", c)
	}
}

func TestApplyInvalidRadiiKeepsPoints(t *testing.T) {
	s, cfg := testSession(t)
	prev := newControls(s, cfg)
	before, _ := s.Drop(0)
	want := before.Points()

	next := prev
	next.MinRadius = float32(math.Inf(1))
	rebuilt, err := next.apply(prev, s)
	if err == nil || !rebuilt {
		t.Fatalf("apply = %v, %v", rebuilt, err)
	}
	got := before.Points()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d changed: %v -> %v", i, want[i], got[i])
		}
	}
}
