// Package bezier evaluates Bézier curves of arbitrary degree through the
// closed-form Bernstein expansion.
package bezier

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'bezreel.bezier'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.bezier")
}

var (
	// ErrNoControlPoints indicates an evaluation request without control points.
	ErrNoControlPoints = errors.New("curve needs at least one control point")
	// ErrSampleCount indicates a negative number of samples.
	ErrSampleCount = errors.New("sample count must not be negative")
)

// Point is a position in canvas space.
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Curve is an ordered sequence of control points. Its degree is len-1.
type Curve []Point

// Drawable reports whether the sequence has enough points to form a curve.
func (c Curve) Drawable() bool {
	return len(c) >= 2
}

// Clone returns an independent copy of c.
func (c Curve) Clone() Curve {
	if c == nil {
		return nil
	}
	out := make(Curve, len(c))
	copy(out, c)
	return out
}

// Drawing is the ordered set of finished curves of one frame.
// Insertion order is the z-order.
type Drawing []Curve

// Clone returns a deep copy of d.
func (d Drawing) Clone() Drawing {
	out := make(Drawing, len(d))
	for i, c := range d {
		out[i] = c.Clone()
	}
	return out
}

// Linspace returns m parameters evenly spaced over [0,1].
// For m >= 2 both endpoints are included exactly, m == 1 yields [0].
func Linspace(m int) []float64 {
	if m <= 0 {
		return nil
	}
	ts := make([]float64, m)
	if m == 1 {
		return ts
	}
	step := 1 / float64(m-1)
	for i := range ts {
		ts[i] = float64(i) * step
	}
	ts[m-1] = 1
	return ts
}

// Binomial returns the binomial coefficient C(n,k) as a float.
func Binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 1; i <= k; i++ {
		c = c * float64(n-k+i) / float64(i)
	}
	return math.Round(c)
}

// Basis returns the m×(n+1) matrix of Bernstein weights
//
//	B[i][k] = C(n,k) · (1-t_i)^(n-k) · t_i^k
//
// for the parameters ts. 0^0 is taken as 1.
func Basis(n int, ts []float64) [][]float64 {
	coeffs := make([]float64, n+1)
	for k := range coeffs {
		coeffs[k] = Binomial(n, k)
	}
	basis := make([][]float64, len(ts))
	for i, t := range ts {
		row := make([]float64, n+1)
		for k := 0; k <= n; k++ {
			row[k] = coeffs[k] * math.Pow(1-t, float64(n-k)) * math.Pow(t, float64(k))
		}
		basis[i] = row
	}
	return basis
}

// Evaluate samples the curve defined by cps at m parameters spread evenly
// over [0,1] and returns the resulting polyline.
func Evaluate(cps []Point, m int) ([]Point, error) {
	if len(cps) == 0 {
		return nil, ErrNoControlPoints
	}
	if m < 0 {
		return nil, ErrSampleCount
	}
	basis := Basis(len(cps)-1, Linspace(m))
	out := make([]Point, m)
	for i, row := range basis {
		out[i] = combine(row, cps)
	}
	tracer().P("degree", len(cps)-1).Debugf("evaluated %d samples", m)
	return out, nil
}

// Points is the lazy form of Evaluate. It yields nothing for an empty
// control sequence or m <= 0.
func Points(cps []Point, m int) iter.Seq2[int, Point] {
	return func(yield func(int, Point) bool) {
		if len(cps) == 0 || m <= 0 {
			return
		}
		n := len(cps) - 1
		for i, t := range Linspace(m) {
			row := Basis(n, []float64{t})[0]
			if !yield(i, combine(row, cps)) {
				return
			}
		}
	}
}

// combine is one row of the basis matrix times the control point matrix.
func combine(weights []float64, cps []Point) Point {
	var p Point
	for k, w := range weights {
		p.X += w * cps[k].X
		p.Y += w * cps[k].Y
	}
	return p
}
