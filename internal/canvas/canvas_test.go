package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivlev/bezreel/internal/bezier"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains(bezier.Point{X: 800, Y: 500}))
	assert.True(t, Contains(bezier.Point{X: 1, Y: 999}))
	assert.False(t, Contains(bezier.Point{X: -5, Y: 500}))
	assert.False(t, Contains(bezier.Point{X: 800, Y: 1200}))
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(bezier.Curve{{X: 10, Y: 10}, {X: 300, Y: 200}}))
	assert.True(t, Visible(bezier.Curve{{X: -100, Y: 500}, {X: 2000, Y: 600}}), "curve crossing the canvas")
	assert.False(t, Visible(bezier.Curve{{X: -100, Y: -100}, {X: -50, Y: -10}}))
	assert.False(t, Visible(nil))
}

func TestDefaultViewFlipsY(t *testing.T) {
	v := DefaultView()
	s := v.ToScreen(bezier.Point{X: 100, Y: 0})
	assert.Equal(t, 100.0, s.X)
	assert.Equal(t, float64(Height), s.Y)
	s = v.ToScreen(bezier.Point{X: 0, Y: Height})
	assert.Equal(t, 0.0, s.Y)
}

func TestZoomKeepsCenter(t *testing.T) {
	c := bezier.Point{X: 400, Y: 300}
	v := DefaultView()
	before := v.ToScreen(c)
	z := v.Zoom(4, c)
	after := z.ToScreen(c)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	far := z.ToScreen(bezier.Point{X: 401, Y: 300})
	assert.InDelta(t, 4.0, far.X-after.X, 1e-9)
}

func TestNearest(t *testing.T) {
	pts := []bezier.Point{{X: 100, Y: 100}, {X: 110, Y: 100}, {X: 500, Y: 500}}
	v := DefaultView()

	assert.Equal(t, -1, v.Nearest(nil, bezier.Point{X: 100, Y: 100}, DefaultTolerance))
	assert.Equal(t, 0, v.Nearest(pts, bezier.Point{X: 104, Y: 100}, DefaultTolerance))
	assert.Equal(t, 1, v.Nearest(pts, bezier.Point{X: 106, Y: 100}, DefaultTolerance))
	assert.Equal(t, 2, v.Nearest(pts, bezier.Point{X: 508, Y: 505}, DefaultTolerance))
	assert.Equal(t, -1, v.Nearest(pts, bezier.Point{X: 512, Y: 500}, DefaultTolerance), "exactly eps away is a miss")
	assert.Equal(t, -1, v.Nearest(pts, bezier.Point{X: 300, Y: 300}, DefaultTolerance))
}

func TestNearestUsesScreenSpace(t *testing.T) {
	pts := []bezier.Point{{X: 100, Y: 100}}
	click := bezier.Point{X: 108, Y: 100}

	v := DefaultView()
	assert.Equal(t, 0, v.Nearest(pts, click, DefaultTolerance))

	zoomed := v.Zoom(2, bezier.Point{X: 100, Y: 100})
	assert.Equal(t, -1, zoomed.Nearest(pts, click, DefaultTolerance), "8 data units are 16 px at 2x")

	panned := zoomed.Pan(300, -40)
	assert.Equal(t, -1, panned.Nearest(pts, click, DefaultTolerance), "panning keeps distances")
	assert.Equal(t, 0, panned.Nearest(pts, bezier.Point{X: 104, Y: 100}, DefaultTolerance))
}
