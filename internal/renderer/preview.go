package renderer

import (
	"image/png"
	"os"
	"path/filepath"

	"github.com/ivlev/bezreel/internal/session"
	"github.com/ivlev/bezreel/internal/system"
)

// PreviewWriter shows the editor state by rewriting a PNG file after every
// change. An empty Path only counts redraws.
type PreviewWriter struct {
	Renderer *Renderer
	Path     string
	Redraws  int
}

var _ session.Redrawer = (*PreviewWriter)(nil)

// Redraw renders s and replaces the preview file. Failures are traced;
// editing goes on without a preview.
func (w *PreviewWriter) Redraw(s session.Snapshot) {
	w.Redraws++
	if w.Path == "" {
		return
	}
	img := w.Renderer.RenderPreview(s)
	defer system.PutImage(img)

	tmp := w.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		tracer().P("path", w.Path).Errorf("cannot write preview: %v", err)
		return
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		tracer().P("path", w.Path).Errorf("cannot encode preview: %v", err)
		return
	}
	if err := f.Close(); err != nil {
		tracer().Errorf("cannot close preview: %v", err)
		return
	}
	if err := os.Rename(tmp, filepath.Clean(w.Path)); err != nil {
		tracer().Errorf("cannot replace preview: %v", err)
	}
}
