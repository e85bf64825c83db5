package session

import "github.com/ivlev/bezreel/internal/bezier"

// anchor selects which of the three placed points a glyph point starts from.
type anchor int

const (
	origin anchor = iota // first placed point
	up                   // second placed point
	right                // third placed point
)

// term places one glyph control point at base + a·dx + b·dy, where
// dx = right-origin and dy = up-origin.
type term struct {
	base anchor
	a, b float64
}

// mug is the beer mug glyph: sides, lower and upper bottom, rim, and three
// decorative strokes. The middle stroke is a straight two-point line.
var mug = [8][]term{
	{{origin, 0, 0}, {origin, 0.1, 0.3}, {up, 0.05, 0}},
	{{right, 0, 0}, {origin, 0.9, 0.3}, {up, 0.95, 0}},
	{{origin, 0, 0}, {origin, 0.5, -0.1}, {right, 0, 0}},
	{{origin, 0.05, 0.045}, {origin, 0.5, -0.02}, {right, -0.05, 0.045}},
	{{up, 0.05, 0}, {up, 0.5, -0.04}, {up, 0.95, 0}},
	{{origin, 0.5, 0.15}, {origin, 0.5, 0.65}},
	{{origin, 0.25, 0.17}, {origin, 0.33, 0.4}, {origin, 0.25, 0.63}},
	{{origin, 0.75, 0.17}, {origin, 0.67, 0.4}, {origin, 0.75, 0.63}},
}

// compositeMug derives the glyph curves from origin, up and right points.
// Zero coefficients are skipped so the sums are formed exactly as written
// in the table.
func compositeMug(p0, p1, p2 bezier.Point) bezier.Drawing {
	anchors := [3]bezier.Point{p0, p1, p2}
	dx := bezier.Point{X: p2.X - p0.X, Y: p2.Y - p0.Y}
	dy := bezier.Point{X: p1.X - p0.X, Y: p1.Y - p0.Y}
	coord := func(base, d, e float64, tm term) float64 {
		v := base
		if tm.a != 0 {
			v += tm.a * d
		}
		if tm.b != 0 {
			v += tm.b * e
		}
		return v
	}
	out := make(bezier.Drawing, len(mug))
	for i, terms := range mug {
		c := make(bezier.Curve, len(terms))
		for j, tm := range terms {
			b := anchors[tm.base]
			c[j] = bezier.Point{
				X: coord(b.X, dx.X, dy.X, tm),
				Y: coord(b.Y, dx.Y, dy.Y, tm),
			}
		}
		out[i] = c
	}
	return out
}
