package store

import (
	"fmt"

	"github.com/ivlev/bezreel/internal/bezier"
)

// Version is written into every document.
const Version = "1.0"

// Document is the persisted curve set of a reel
type Document struct {
	Version string        `yaml:"version"`
	Current []CurveRecord `yaml:"current"`
	Frames  []FrameRecord `yaml:"frames,omitempty"`
}

// FrameRecord is the drawing a frame image was rendered from
type FrameRecord struct {
	Index  int           `yaml:"index"`
	Curves []CurveRecord `yaml:"curves"`
}

// CurveRecord stores one curve as parallel coordinate sequences
type CurveRecord struct {
	X []float64 `yaml:"x,flow"`
	Y []float64 `yaml:"y,flow"`
}

// Encode converts a drawing into records.
func Encode(d bezier.Drawing) []CurveRecord {
	out := make([]CurveRecord, len(d))
	for i, c := range d {
		rec := CurveRecord{X: make([]float64, len(c)), Y: make([]float64, len(c))}
		for j, p := range c {
			rec.X[j], rec.Y[j] = p.X, p.Y
		}
		out[i] = rec
	}
	return out
}

// Decode rebuilds a drawing from records, preserving point and curve order.
func Decode(recs []CurveRecord) (bezier.Drawing, error) {
	d := make(bezier.Drawing, 0, len(recs))
	for i, rec := range recs {
		if len(rec.X) != len(rec.Y) {
			return nil, fmt.Errorf("%w: curve %d has %d x and %d y coordinates", ErrMalformed, i, len(rec.X), len(rec.Y))
		}
		if len(rec.X) < 2 {
			return nil, fmt.Errorf("%w: curve %d has %d points", ErrMalformed, i, len(rec.X))
		}
		c := make(bezier.Curve, len(rec.X))
		for j := range rec.X {
			c[j] = bezier.Point{X: rec.X[j], Y: rec.Y[j]}
		}
		d = append(d, c)
	}
	return d, nil
}

// Drawing returns the current drawing of the document.
func (doc *Document) Drawing() (bezier.Drawing, error) {
	return Decode(doc.Current)
}

// Frame returns the drawing recorded for frame index, if any.
func (doc *Document) Frame(index int) (bezier.Drawing, bool, error) {
	for _, f := range doc.Frames {
		if f.Index == index {
			d, err := Decode(f.Curves)
			return d, true, err
		}
	}
	return nil, false, nil
}

// SetFrame records the drawing of frame index, replacing an older record.
func (doc *Document) SetFrame(index int, d bezier.Drawing) {
	rec := FrameRecord{Index: index, Curves: Encode(d)}
	for i, f := range doc.Frames {
		if f.Index == index {
			doc.Frames[i] = rec
			return
		}
	}
	doc.Frames = append(doc.Frames, rec)
}

func (doc *Document) validate() error {
	if _, err := Decode(doc.Current); err != nil {
		return err
	}
	seen := make(map[int]bool, len(doc.Frames))
	for _, f := range doc.Frames {
		if f.Index < 0 || seen[f.Index] {
			return fmt.Errorf("%w: bad frame index %d", ErrMalformed, f.Index)
		}
		seen[f.Index] = true
		if _, err := Decode(f.Curves); err != nil {
			return fmt.Errorf("frame %d: %w", f.Index, err)
		}
	}
	return nil
}
