package video

import (
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"os"
	"runtime"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// GIFEncoder writes a looping GIF. Frames are quantized to the Plan 9
// palette with Floyd-Steinberg dithering.
type GIFEncoder struct {
	// Workers bounds concurrent quantization; zero means one per CPU.
	Workers int
}

func (e *GIFEncoder) Encode(ctx context.Context, frames []image.Image, path string, fps int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %d", fps)
	}
	anim, err := e.quantize(ctx, frames)
	if err != nil {
		return err
	}
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}
	anim.Delay = make([]int, len(frames))
	for i := range anim.Delay {
		anim.Delay[i] = delay
	}
	anim.LoopCount = 0

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("gif encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	tracer().P("path", path).Infof("wrote %d frames at %d ms", len(frames), delay*10)
	return nil
}

func (e *GIFEncoder) quantize(ctx context.Context, frames []image.Image) (*gif.GIF, error) {
	anim := &gif.GIF{Image: make([]*image.Paletted, len(frames))}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, img := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := img.Bounds()
			p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
			xdraw.FloydSteinberg.Draw(p, p.Rect, img, b.Min)
			anim.Image[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return anim, nil
}
