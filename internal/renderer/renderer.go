// Package renderer rasterizes drawings: finished frames for the reel and
// the editor preview with its overlays.
package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/npillmayer/schuko/tracing"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/bezreel/internal/bezier"
	"github.com/ivlev/bezreel/internal/canvas"
	"github.com/ivlev/bezreel/internal/session"
	"github.com/ivlev/bezreel/internal/system"
)

// tracer writes to trace with key 'bezreel.renderer'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.renderer")
}

// Colors used by the editor preview.
var (
	CurveColor      = color.RGBA{0, 0, 0, 255}
	SelectedColor   = color.RGBA{255, 140, 0, 255} // darkorange
	InProgressColor = color.RGBA{220, 20, 60, 255} // crimson
	PointColor      = color.RGBA{0, 128, 0, 255}   // green
	CounterColor    = color.RGBA{178, 34, 34, 255} // firebrick
)

// BackgroundAlpha is the opacity of the active frame under the preview.
const BackgroundAlpha = 0.2

const (
	DefaultFrameSamples   = 200
	DefaultPreviewSamples = 50
	DefaultStrokeWidth    = 2.0
	pointRadius           = 4.0
	labelOffset           = 10.0
)

// Renderer draws drawings onto the fixed canvas.
type Renderer struct {
	FrameSamples   int
	PreviewSamples int
	StrokeWidth    float64
}

// New returns a renderer with the given sample counts. Non-positive values
// fall back to the defaults.
func New(frameSamples, previewSamples int) *Renderer {
	if frameSamples < 2 {
		frameSamples = DefaultFrameSamples
	}
	if previewSamples < 2 {
		previewSamples = DefaultPreviewSamples
	}
	return &Renderer{
		FrameSamples:   frameSamples,
		PreviewSamples: previewSamples,
		StrokeWidth:    DefaultStrokeWidth,
	}
}

func bounds() image.Rectangle {
	return image.Rect(0, 0, canvas.Width, canvas.Height)
}

func blank(dst *image.RGBA) {
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
}

// RenderFrame draws d in black on a white canvas. Curves entirely outside
// the canvas are skipped. The returned image is owned by the caller.
func (r *Renderer) RenderFrame(d bezier.Drawing) image.Image {
	dst := image.NewRGBA(bounds())
	blank(dst)
	for i, c := range d {
		r.drawCurve(dst, c, r.FrameSamples, CurveColor, i)
	}
	return dst
}

func (r *Renderer) drawCurve(dst *image.RGBA, c bezier.Curve, samples int, col color.Color, index int) {
	if !c.Drawable() || !canvas.Visible(c) {
		return
	}
	pts, err := bezier.Evaluate(c, samples)
	if err != nil {
		tracer().P("curve", index).Errorf("cannot evaluate: %v", err)
		return
	}
	strokePolyline(dst, pts, r.StrokeWidth, col)
}

// RenderPreview draws the editor view of s into a pooled canvas. Callers
// hand the image back with system.PutImage when done.
func (r *Renderer) RenderPreview(s session.Snapshot) *image.RGBA {
	dst := system.GetImage(bounds())
	blank(dst)
	if s.Background != nil {
		fade(dst, s.Background)
	}
	selected := s.Selected()
	for i, c := range s.Drawing {
		col := CurveColor
		if i == selected {
			col = SelectedColor
		}
		r.drawCurve(dst, c, r.PreviewSamples, col, i)
	}
	switch len(s.InProgress) {
	case 0:
	case 1:
		fillDot(dst, s.InProgress[0], pointRadius, PointColor)
	default:
		r.drawCurve(dst, s.InProgress, r.PreviewSamples, InProgressColor, -1)
		for i, p := range s.InProgress {
			fillDot(dst, p, pointRadius, PointColor)
			label(dst, fmt.Sprint(i+1), bezier.Point{X: p.X, Y: p.Y + labelOffset})
		}
	}
	if s.FrameCount > 0 {
		counter(dst, fmt.Sprintf(" %d / %d ", s.Frame+1, s.FrameCount))
	}
	return dst
}

// fade scales bg onto the canvas and blends it in at BackgroundAlpha.
func fade(dst *image.RGBA, bg image.Image) {
	scaled := system.GetImage(dst.Bounds())
	defer system.PutImage(scaled)
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), bg, bg.Bounds(), xdraw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(BackgroundAlpha*255 + 0.5)})
	xdraw.DrawMask(dst, dst.Bounds(), scaled, image.Point{}, mask, image.Point{}, xdraw.Over)
}

// label centers text horizontally above p.
func label(dst *image.RGBA, text string, p bezier.Point) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	x, y := toPixel(p)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(CurveColor),
		Face: face,
		Dot:  fixed.P(int(x)-w/2, int(y)),
	}
	d.DrawString(text)
}

// counter draws the frame position at the bottom center of the canvas.
func counter(dst *image.RGBA, text string) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	b := dst.Bounds()
	x := (b.Dx() - w) / 2
	y := b.Max.Y - 8
	box := image.Rect(x-2, y-h, x+w+2, y+4)
	xdraw.Draw(dst, box, image.NewUniform(CounterColor), image.Point{}, xdraw.Over)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{245, 245, 245, 255}),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
