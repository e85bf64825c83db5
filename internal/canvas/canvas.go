// Package canvas holds the fixed drawing surface geometry and the
// data-to-screen view used for hit-testing.
package canvas

import (
	polyclip "github.com/akavel/polyclip-go"

	"github.com/ivlev/bezreel/internal/bezier"
)

// Logical canvas extent in data units.
const (
	Width  = 1600
	Height = 1000
)

// DefaultTolerance is the pick radius for control points, in screen pixels.
const DefaultTolerance = 12.0

var bounds = polyclip.Contour{
	{X: 0, Y: 0},
	{X: Width, Y: 0},
	{X: Width, Y: Height},
	{X: 0, Y: Height},
}

// Contains reports whether p lies on the canvas.
func Contains(p bezier.Point) bool {
	return bounds.Contains(polyclip.Point{X: p.X, Y: p.Y})
}

// Visible reports whether any part of c can land on the canvas. A Bézier
// curve stays inside the convex hull of its control points, so the bounding
// box of the control polygon is enough.
func Visible(c bezier.Curve) bool {
	if len(c) == 0 {
		return false
	}
	hull := make(polyclip.Contour, len(c))
	for i, p := range c {
		hull[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return hull.BoundingBox().Overlaps(bounds.BoundingBox())
}
