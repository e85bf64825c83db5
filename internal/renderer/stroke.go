package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/ivlev/bezreel/internal/bezier"
	"github.com/ivlev/bezreel/internal/canvas"
)

// joinSides is the number of sides of the polygon approximating round
// joins and dots.
const joinSides = 12

// toPixel maps canvas data coordinates (y up) to raster coordinates.
func toPixel(p bezier.Point) (float32, float32) {
	return float32(p.X), float32(canvas.Height - p.Y)
}

// strokePolyline fills a stroke of the given width along pts. All sub-paths
// are wound the same way, so overlapping pieces add up instead of
// cancelling out.
func strokePolyline(dst *image.RGBA, pts []bezier.Point, width float64, c color.Color) {
	if len(pts) == 0 {
		return
	}
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	half := float32(width / 2)
	for i := 1; i < len(pts); i++ {
		x0, y0 := toPixel(pts[i-1])
		x1, y1 := toPixel(pts[i])
		dx, dy := x1-x0, y1-y0
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(x0+nx, y0+ny)
		r.LineTo(x1+nx, y1+ny)
		r.LineTo(x1-nx, y1-ny)
		r.LineTo(x0-nx, y0-ny)
		r.ClosePath()
	}
	for _, p := range pts {
		x, y := toPixel(p)
		addDisc(r, x, y, half)
	}
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// fillDot paints a filled disc at p.
func fillDot(dst *image.RGBA, p bezier.Point, radius float64, c color.Color) {
	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	x, y := toPixel(p)
	addDisc(r, x, y, float32(radius))
	r.Draw(dst, b, image.NewUniform(c), image.Point{})
}

func addDisc(r *vector.Rasterizer, cx, cy, radius float32) {
	for k := 0; k <= joinSides; k++ {
		a := -2 * math.Pi * float64(k) / joinSides
		x := cx + radius*float32(math.Cos(a))
		y := cy + radius*float32(math.Sin(a))
		if k == 0 {
			r.MoveTo(x, y)
		} else {
			r.LineTo(x, y)
		}
	}
	r.ClosePath()
}
