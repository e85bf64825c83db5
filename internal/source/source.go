// Package source loads reference artwork that seeds a new reel.
package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/npillmayer/schuko/tracing"
	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/bezreel/internal/canvas"
)

// tracer writes to trace with key 'bezreel.source'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.source")
}

// Source is a paged collection of reference pictures.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a source for path by its extension.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

// Blank returns a white canvas.
func Blank() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	xdraw.Draw(img, img.Rect, image.White, image.Point{}, xdraw.Src)
	return img
}

// Reference renders the first page of the file at path stretched over a
// white canvas. An empty path yields a blank canvas.
func Reference(path string, dpi int) (image.Image, error) {
	dst := Blank()
	if path == "" {
		return dst, nil
	}
	src, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", path, err)
	}
	defer src.Close()
	if src.PageCount() == 0 {
		return nil, fmt.Errorf("reference %s has no pages", path)
	}
	page, err := src.RenderPage(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", path, err)
	}
	xdraw.CatmullRom.Scale(dst, dst.Rect, page, page.Bounds(), xdraw.Over, nil)
	tracer().P("path", path).Infof("reference %v scaled onto canvas", page.Bounds().Size())
	return dst, nil
}

// FitzPDFSource renders PDF pages with MuPDF.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	if dpi <= 0 {
		dpi = 72
	}
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
