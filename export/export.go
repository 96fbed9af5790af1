// Package export writes generated drops to CSV for plotting and offline analysis.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/drop3d/config"
	"github.com/pthm-cable/drop3d/drop"
	"github.com/pthm-cable/drop3d/perf"
	"github.com/pthm-cable/drop3d/session"
	"github.com/pthm-cable/drop3d/vector"
)

// PointRecord is one row of points.csv.
type PointRecord struct {
	Drop   int     `csv:"drop"`
	Index  int     `csv:"index"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	Z      float64 `csv:"z"`
	Radius float64 `csv:"radius"`
}

// SummaryRecord is one row of drops.csv.
type SummaryRecord struct {
	Drop         int     `csv:"drop"`
	CenterX      float64 `csv:"center_x"`
	CenterY      float64 `csv:"center_y"`
	CenterZ      float64 `csv:"center_z"`
	Mesh         string  `csv:"mesh"`
	N            int     `csv:"n"`
	Squish       float64 `csv:"squish"`
	TimeOffset   float64 `csv:"time_offset"`
	Points       int     `csv:"points"`
	MeanRadius   float64 `csv:"mean_radius"`
	StdRadius    float64 `csv:"std_radius"`
	MinRadius    float64 `csv:"min_radius"`
	MedianRadius float64 `csv:"median_radius"`
	MaxRadius    float64 `csv:"max_radius"`
	MinX         float64 `csv:"min_x"`
	MinY         float64 `csv:"min_y"`
	MinZ         float64 `csv:"min_z"`
	MaxX         float64 `csv:"max_x"`
	MaxY         float64 `csv:"max_y"`
	MaxZ         float64 `csv:"max_z"`
}

// Writer handles CSV output of drops.
type Writer struct {
	dir         string
	pointsFile  *os.File
	summaryFile *os.File
	perfFile    *os.File

	// Track if headers have been written
	pointsHeaderWritten  bool
	summaryHeaderWritten bool
	perfHeaderWritten    bool
}

// NewWriter creates the output directory and opens points.csv and drops.csv.
// Returns nil if dir is empty (output disabled); every method of a nil
// Writer is a no-op.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	w := &Writer{dir: dir}

	f, err := os.Create(filepath.Join(dir, "points.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating points.csv: %w", err)
	}
	w.pointsFile = f

	f, err = os.Create(filepath.Join(dir, "drops.csv"))
	if err != nil {
		w.pointsFile.Close()
		return nil, fmt.Errorf("creating drops.csv: %w", err)
	}
	w.summaryFile = f

	return w, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (w *Writer) WriteConfig(cfg *config.Config) error {
	if w == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(w.dir, "config.yaml"))
}

// WritePoints appends every point of d to points.csv.
func (w *Writer) WritePoints(id session.ID, d *drop.Drop) error {
	if w == nil {
		return nil
	}

	c := d.Center()
	pts := d.Points()
	records := make([]PointRecord, len(pts))
	for i, p := range pts {
		records[i] = PointRecord{
			Drop:   int(id),
			Index:  i,
			X:      p.X,
			Y:      p.Y,
			Z:      p.Z,
			Radius: p.Distance(c),
		}
	}
	if len(records) == 0 {
		return nil
	}

	if err := w.marshal(records, w.pointsFile, &w.pointsHeaderWritten); err != nil {
		return fmt.Errorf("writing points: %w", err)
	}
	return nil
}

// WriteSummary appends the statistics of d to drops.csv.
func (w *Writer) WriteSummary(id session.ID, d *drop.Drop) error {
	if w == nil {
		return nil
	}

	p := d.Params()
	st := d.Stats()
	records := []SummaryRecord{{
		Drop:         int(id),
		CenterX:      p.Center.X,
		CenterY:      p.Center.Y,
		CenterZ:      p.Center.Z,
		Mesh:         p.Mesh.String(),
		N:            p.N,
		Squish:       p.Squish,
		TimeOffset:   p.TimeOffset,
		Points:       st.Count,
		MeanRadius:   st.MeanRadius,
		StdRadius:    st.StdRadius,
		MinRadius:    st.MinRadius,
		MedianRadius: st.MedianRadius,
		MaxRadius:    st.MaxRadius,
		MinX:         st.Min.X,
		MinY:         st.Min.Y,
		MinZ:         st.Min.Z,
		MaxX:         st.Max.X,
		MaxY:         st.Max.Y,
		MaxZ:         st.Max.Z,
	}}

	if err := w.marshal(records, w.summaryFile, &w.summaryHeaderWritten); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WriteSession writes the points and summary of every drop in s.
func (w *Writer) WriteSession(s *session.Session, points, summary bool) error {
	if w == nil {
		return nil
	}
	for id, d := range s.Each() {
		if points {
			if err := w.WritePoints(id, d); err != nil {
				return fmt.Errorf("drop %d: %w", id, err)
			}
		}
		if summary {
			if err := w.WriteSummary(id, d); err != nil {
				return fmt.Errorf("drop %d: %w", id, err)
			}
		}
	}
	return nil
}

// WritePerf appends one timing row to perf.csv, creating the file on first use.
func (w *Writer) WritePerf(rec perf.Record) error {
	if w == nil {
		return nil
	}
	if w.perfFile == nil {
		f, err := os.Create(filepath.Join(w.dir, "perf.csv"))
		if err != nil {
			return fmt.Errorf("creating perf.csv: %w", err)
		}
		w.perfFile = f
	}
	if err := w.marshal([]perf.Record{rec}, w.perfFile, &w.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// marshal writes records, with a header row on the first write only.
func (w *Writer) marshal(records any, f *os.File, headerWritten *bool) error {
	if !*headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// Close flushes and closes all output files. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}

	var firstErr error

	if w.pointsFile != nil {
		if err := w.pointsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.pointsFile = nil
	}

	if w.summaryFile != nil {
		if err := w.summaryFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.summaryFile = nil
	}

	if w.perfFile != nil {
		if err := w.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.perfFile = nil
	}

	return firstErr
}

// Surface is the point cloud of one drop read back from points.csv.
type Surface struct {
	Drop   int
	Points []vector.Vector
}

// ReadPoints parses a points.csv stream into surfaces ordered by drop ID,
// with points in index order.
func ReadPoints(r io.Reader) ([]Surface, error) {
	var records []PointRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading points: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Drop != records[j].Drop {
			return records[i].Drop < records[j].Drop
		}
		return records[i].Index < records[j].Index
	})

	var out []Surface
	for _, rec := range records {
		if len(out) == 0 || out[len(out)-1].Drop != rec.Drop {
			out = append(out, Surface{Drop: rec.Drop})
		}
		last := &out[len(out)-1]
		last.Points = append(last.Points, vector.Vec(rec.X, rec.Y, rec.Z))
	}
	return out, nil
}
