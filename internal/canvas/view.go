package canvas

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/ivlev/bezreel/internal/bezier"
)

// View maps canvas data coordinates (y up) to screen pixels (y down).
// Zooming and panning change how far apart points are on screen, and with
// it the data-space size of the pick tolerance.
type View struct {
	M matrix.Matrix
}

// DefaultView shows the whole canvas at one pixel per unit.
func DefaultView() View {
	return View{M: matrix.Matrix{1, 0, 0, -1, 0, Height}}
}

// ToScreen transforms a data point into screen space.
func (v View) ToScreen(p bezier.Point) vec.Vec2 {
	return vec.Vec2{
		X: v.M[0]*p.X + v.M[2]*p.Y + v.M[4],
		Y: v.M[1]*p.X + v.M[3]*p.Y + v.M[5],
	}
}

// Zoom scales the view by factor around the data point c, which keeps its
// screen position.
func (v View) Zoom(factor float64, c bezier.Point) View {
	m := v.M
	ox := m[0]*c.X + m[2]*c.Y
	oy := m[1]*c.X + m[3]*c.Y
	return View{M: matrix.Matrix{
		m[0] * factor, m[1] * factor,
		m[2] * factor, m[3] * factor,
		m[4] + (1-factor)*ox,
		m[5] + (1-factor)*oy,
	}}
}

// Pan shifts the view by dx, dy screen pixels.
func (v View) Pan(dx, dy float64) View {
	m := v.M
	m[4] += dx
	m[5] += dy
	return View{M: m}
}

// Nearest returns the index of the point in pts closest to p on screen,
// provided it lies strictly within eps pixels. It returns -1 otherwise,
// including when pts is empty.
func (v View) Nearest(pts []bezier.Point, p bezier.Point, eps float64) int {
	click := v.ToScreen(p)
	best, bestDist := -1, 0.0
	for i, q := range pts {
		s := v.ToScreen(q)
		dx, dy := s.X-click.X, s.Y-click.Y
		d := dx*dx + dy*dy
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist >= eps*eps {
		return -1
	}
	return best
}
