package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/drop3d/config"
	"github.com/pthm-cable/drop3d/perf"
	"github.com/pthm-cable/drop3d/session"
)

func testSession(t *testing.T, drops int) *session.Session {
	t.Helper()
	st := session.DefaultSettings()
	st.Precision = 6
	s, err := session.New(st)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < drops; i++ {
		if _, err := s.CreateDrop(session.Fixed(float64(3*i), 0, 0, 1, 2)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestNilWriter(t *testing.T) {
	w, err := NewWriter("")
	if err != nil || w != nil {
		t.Fatalf("NewWriter(\"\") = %v, %v", w, err)
	}
	s := testSession(t, 1)
	d, _ := s.Drop(0)
	if err := w.WritePoints(0, d); err != nil {
		t.Error(err)
	}
	if err := w.WriteSummary(0, d); err != nil {
		t.Error(err)
	}
	if err := w.WriteSession(s, true, true); err != nil {
		t.Error(err)
	}
	if err := w.WriteConfig(nil); err != nil {
		t.Error(err)
	}
	if w.Dir() != "" || w.Close() != nil {
		t.Error("nil writer not a no-op")
	}
}

func TestPointsRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := testSession(t, 2)
	if err := w.WriteSession(s, true, true); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "points.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	surfaces, err := ReadPoints(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(surfaces) != 2 {
		t.Fatalf("surfaces = %d, want 2", len(surfaces))
	}
	for _, surf := range surfaces {
		d, err := s.Drop(session.ID(surf.Drop))
		if err != nil {
			t.Fatal(err)
		}
		want := d.Points()
		if len(surf.Points) != len(want) {
			t.Fatalf("drop %d: %d points, want %d", surf.Drop, len(surf.Points), len(want))
		}
		for i := range want {
			if surf.Points[i].Distance(want[i]) > 1e-12 {
				t.Fatalf("drop %d point %d: %v != %v", surf.Drop, i, surf.Points[i], want[i])
			}
		}
	}
}

func TestSummaryFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := testSession(t, 3)
	if err := w.WriteSession(s, false, true); err != nil {
		t.Fatal(err)
	}
	w.Close()

	data, err := os.ReadFile(filepath.Join(dir, "drops.csv"))
	if err != nil {
		t.Fatal(err)
	}
	// One header row only.
	if n := strings.Count(string(data), "mean_radius"); n != 1 {
		t.Errorf("header appears %d times", n)
	}

	var rows []SummaryRecord
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	for i, r := range rows {
		if r.Drop != i || r.Points != 36 || r.Mesh != "uniform" {
			t.Errorf("row %d = %+v", i, r)
		}
		if r.CenterX != float64(3*i) {
			t.Errorf("row %d center x = %v", i, r.CenterX)
		}
		if r.MinRadius < 1-1e-9 || r.MaxRadius > 2+1e-9 || r.MeanRadius < r.MinRadius || r.MeanRadius > r.MaxRadius {
			t.Errorf("row %d radii = %+v", i, r)
		}
	}

	// Points were not requested.
	pts, _ := os.ReadFile(filepath.Join(dir, "points.csv"))
	if len(pts) != 0 {
		t.Errorf("points.csv has %d bytes", len(pts))
	}
}

func TestWritePointsRadius(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := testSession(t, 1)
	d, _ := s.Drop(0)
	if err := w.WritePoints(0, d); err != nil {
		t.Fatal(err)
	}
	w.Close()

	f, _ := os.Open(filepath.Join(dir, "points.csv"))
	defer f.Close()
	var rows []PointRecord
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != d.Len() {
		t.Fatalf("rows = %d, want %d", len(rows), d.Len())
	}
	for i, r := range rows {
		if r.Index != i {
			t.Errorf("row %d index %d", i, r.Index)
		}
		got := math.Sqrt(r.X*r.X + r.Y*r.Y + r.Z*r.Z)
		if math.Abs(got-r.Radius) > 1e-9 {
			t.Errorf("row %d radius %v, computed %v", i, r.Radius, got)
		}
	}
}

func TestReadPointsOrdering(t *testing.T) {
	in := `drop,index,x,y,z,radius
1,1,4,0,0,4
0,0,1,0,0,1
1,0,3,0,0,3
0,1,2,0,0,2
`
	surfaces, err := ReadPoints(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(surfaces) != 2 || surfaces[0].Drop != 0 || surfaces[1].Drop != 1 {
		t.Fatalf("surfaces = %+v", surfaces)
	}
	wantX := [][]float64{{1, 2}, {3, 4}}
	for i, surf := range surfaces {
		for j, p := range surf.Points {
			if p.X != wantX[i][j] {
				t.Errorf("surface %d point %d x = %v, want %v", i, j, p.X, wantX[i][j])
			}
		}
	}
}

func TestReadPointsMalformed(t *testing.T) {
	if _, err := ReadPoints(strings.NewReader("drop,index,x,y,z,radius\n0,0,abc,0,0,0\n")); err == nil {
		t.Error("expected error")
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	back, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if back.Drop.Precision != cfg.Drop.Precision || back.Noise.Seed != cfg.Noise.Seed {
		t.Errorf("snapshot differs: %+v vs %+v", back.Drop, cfg.Drop)
	}
}

func TestCloseTwice(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWritePerf(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); !os.IsNotExist(err) {
		t.Fatal("perf.csv created before first row")
	}
	for i, label := range []string{"build", "viewer"} {
		if err := w.WritePerf(perf.Record{Label: label, Ticks: i + 1, AvgUS: 100}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	var rows []perf.Record
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Label != "build" || rows[1].Ticks != 2 {
		t.Errorf("rows = %+v", rows)
	}
}
