package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/bezreel/internal/bezier"
	"github.com/ivlev/bezreel/internal/canvas"
	"github.com/ivlev/bezreel/internal/session"
)

func rgba(t *testing.T, img image.Image, x, y int) color.RGBA {
	t.Helper()
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

var white = color.RGBA{255, 255, 255, 255}

func TestRenderFrameDrawsFlippedStroke(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	r := New(0, 0)
	line := bezier.Curve{{X: 100, Y: 100}, {X: 500, Y: 100}}
	img := r.RenderFrame(bezier.Drawing{line})

	assert.Equal(t, image.Rect(0, 0, canvas.Width, canvas.Height), img.Bounds())
	// data y=100 lands on raster row 900
	on := rgba(t, img, 300, canvas.Height-100)
	assert.Less(t, on.R, uint8(100), "stroke should be dark, got %v", on)
	assert.Equal(t, white, rgba(t, img, 300, 100), "mirror row must stay white")
	assert.Equal(t, white, rgba(t, img, 300, canvas.Height-110))
	assert.Equal(t, white, rgba(t, img, 800, canvas.Height-100))
}

func TestRenderFrameSkipsInvisibleAndTransient(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	r := New(0, 0)
	d := bezier.Drawing{
		{{X: -500, Y: -500}, {X: -100, Y: -400}},
		{{X: 10, Y: 10}},
	}
	img := r.RenderFrame(d).(*image.RGBA)
	for i := 0; i < len(img.Pix); i++ {
		if img.Pix[i] != 255 {
			t.Fatalf("expected a blank canvas, byte %d is %d", i, img.Pix[i])
		}
	}
}

func TestRenderPreviewColors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	r := New(0, 0)
	s := session.Snapshot{
		Drawing: bezier.Drawing{
			{{X: 100, Y: 100}, {X: 500, Y: 100}},
			{{X: 100, Y: 300}, {X: 500, Y: 300}},
		},
		InProgress: bezier.Curve{{X: 100, Y: 600}, {X: 500, Y: 600}},
		Cursor:     1,
		Dragged:    -1,
		FrameCount: 3,
	}
	img := r.RenderPreview(s)
	assert.Equal(t, CurveColor, rgba(t, img, 300, canvas.Height-100))
	assert.Equal(t, SelectedColor, rgba(t, img, 300, canvas.Height-300))
	assert.Equal(t, InProgressColor, rgba(t, img, 300, canvas.Height-600))
	assert.Equal(t, PointColor, rgba(t, img, 100, canvas.Height-600))
}

func TestRenderPreviewFadesBackground(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	bg := image.NewGray(image.Rect(0, 0, 160, 100))
	img := New(0, 0).RenderPreview(session.Snapshot{Background: bg, Cursor: 0, Dragged: -1})
	c := rgba(t, img, 400, 400)
	assert.InDelta(t, 255*(1-BackgroundAlpha), float64(c.R), 2)
}

func TestPreviewWriter(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	path := filepath.Join(t.TempDir(), "preview.png")
	w := &PreviewWriter{Renderer: New(0, 0), Path: path}
	w.Redraw(session.Snapshot{
		InProgress: bezier.Curve{{X: 800, Y: 500}},
		Dragged:    -1,
		FrameCount: 1,
	})
	assert.Equal(t, 1, w.Redraws)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, PointColor, rgba(t, img, 800, 500))
	assert.NoFileExists(t, path+".tmp")
}
