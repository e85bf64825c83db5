// Package reel holds the ordered frame images of an animation and their
// on-disk artifacts.
package reel

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

// tracer writes to trace with key 'bezreel.reel'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.reel")
}

// Placeholder is the file name of frame 0, which seeds the editor and is
// left out of playback.
const Placeholder = "frame0.png"

var frameName = regexp.MustCompile(`^frame(\d+)\.png$`)

// FramePath returns the artifact path of frame i in dir.
func FramePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("frame%d.png", i))
}

// Reel is an ordered sequence of frame images. Index 0 is the placeholder.
type Reel struct {
	dir    string
	frames []image.Image
}

// New creates a reel that lives in memory only.
func New(frames ...image.Image) *Reel {
	return &Reel{frames: frames}
}

// Open loads the frames stored in dir in ascending numeric order. When the
// directory holds no frames, placeholder is written as frame 0.
func Open(ctx context.Context, dir string, placeholder image.Image) (*Reel, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	r := &Reel{dir: dir}
	if len(paths) == 0 {
		if placeholder == nil {
			return nil, fmt.Errorf("reel %s is empty and no placeholder was given", dir)
		}
		tracer().Infof("starting new reel in %s", dir)
		if err := r.Put(0, placeholder); err != nil {
			return nil, err
		}
		return r, nil
	}

	r.frames = make([]image.Image, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decode(p)
			if err != nil {
				return fmt.Errorf("frame %s: %w", filepath.Base(p), err)
			}
			r.frames[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tracer().P("dir", dir).Infof("loaded %d frames", len(r.frames))
	return r, nil
}

// List returns the frame files in dir sorted by their numeric index, so
// frame10.png follows frame9.png.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type indexed struct {
		n    int
		path string
	}
	var found []indexed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := frameName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, indexed{n, filepath.Join(dir, e.Name())})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	paths := make([]string, len(found))
	for i, f := range found {
		if f.n != i {
			tracer().Infof("frame numbering has a gap before %s", filepath.Base(f.path))
		}
		paths[i] = f.path
	}
	return paths, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// Len returns the number of frames including the placeholder.
func (r *Reel) Len() int {
	return len(r.frames)
}

// Frame returns frame i.
func (r *Reel) Frame(i int) image.Image {
	return r.frames[i]
}

// Dir returns the artifact directory, empty for in-memory reels.
func (r *Reel) Dir() string {
	return r.dir
}

// Put stores img as frame i, replacing an existing frame or appending right
// after the last one, and writes the frame artifact.
func (r *Reel) Put(i int, img image.Image) error {
	if i < 0 || i > len(r.frames) {
		return fmt.Errorf("frame index %d outside [0,%d]", i, len(r.frames))
	}
	if r.dir != "" {
		if err := write(FramePath(r.dir, i), img); err != nil {
			return err
		}
	}
	if i < len(r.frames) {
		r.frames[i] = img
	} else {
		r.frames = append(r.frames, img)
	}
	tracer().P("frame", i).Debugf("stored frame")
	return nil
}

func write(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Playback returns the frames to show, leaving out the placeholder.
func (r *Reel) Playback() []image.Image {
	if len(r.frames) <= 1 {
		return nil
	}
	out := make([]image.Image, len(r.frames)-1)
	copy(out, r.frames[1:])
	return out
}

// Clear removes every file in dir except the placeholder frame and returns
// how many were deleted.
func Clear(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || e.Name() == Placeholder {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if err := os.Remove(p); err != nil {
			tracer().Errorf("failed to delete %s: %v", p, err)
			continue
		}
		tracer().Debugf("deleted %s", p)
		n++
	}
	return n, nil
}
