package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ivlev/bezreel/internal/config"
	"github.com/ivlev/bezreel/internal/console"
	"github.com/ivlev/bezreel/internal/reel"
	"github.com/ivlev/bezreel/internal/renderer"
	"github.com/ivlev/bezreel/internal/session"
	"github.com/ivlev/bezreel/internal/source"
	"github.com/ivlev/bezreel/internal/store"
	"github.com/ivlev/bezreel/internal/system"
	"github.com/ivlev/bezreel/internal/video"
)

// tracer writes to trace with key 'bezreel.engine'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.engine")
}

// Result summarizes a finished editing run.
type Result struct {
	Frames int    // playback frames in the reel
	Played bool   // the user ended with playback
	Output string // exported animation, empty if none was written
}

// Project wires an editing run together: reel, curve store, session,
// preview and export.
type Project struct {
	Config  *config.Config
	Reel    *reel.Reel
	Store   *store.File
	Encoder video.Encoder
	// Out receives user-facing notices; nil means stdout.
	Out io.Writer
}

func NewProject(cfg *config.Config, enc video.Encoder) *Project {
	return &Project{Config: cfg, Encoder: enc, Out: os.Stdout}
}

// Open loads the reel and the persisted drawing. A malformed curve file is
// fatal: editing on top of it would overwrite it.
func (p *Project) Open(ctx context.Context) error {
	if err := p.Config.Validate(); err != nil {
		return err
	}
	var placeholder image.Image
	frames, err := reel.List(p.Config.AnimationDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if len(frames) == 0 {
		placeholder, err = source.Reference(p.Config.ReferencePath, p.Config.DPI)
		if err != nil {
			return err
		}
	}
	p.Reel, err = reel.Open(ctx, p.Config.AnimationDir, placeholder)
	if err != nil {
		return fmt.Errorf("open reel: %w", err)
	}
	p.Store, err = store.Open(p.Config.CurvesPath)
	if err != nil {
		return fmt.Errorf("open curves: %w", err)
	}
	return nil
}

// Run edits from the event script in events until the session ends, then
// exports the reel when the user asked for playback.
func (p *Project) Run(ctx context.Context, events io.Reader) (Result, error) {
	startTime := time.Now()
	var res Result
	if p.Reel == nil || p.Store == nil {
		if err := p.Open(ctx); err != nil {
			return res, err
		}
	}
	drawing, err := p.Store.Drawing()
	if err != nil {
		return res, err
	}

	r := renderer.New(p.Config.FrameSamples, p.Config.PreviewSamples)
	preview := &renderer.PreviewWriter{Renderer: r, Path: p.Config.PreviewPath}
	s := session.New(drawing, session.Options{
		Reel:      p.Reel,
		Renderer:  r,
		Redrawer:  preview,
		Store:     p.Store,
		Tolerance: p.Config.Tolerance,
	})
	s.Redraw()
	p.notify("[*] Reel has %d frames, %d curves loaded", p.Reel.Len(), len(drawing))

	drv := &console.Driver{Session: s, Out: p.out()}
	if err := drv.Run(ctx, events); err != nil {
		return res, err
	}
	editEnd := time.Now()

	_, res.Played = s.Ended()
	res.Frames = len(p.Reel.Playback())
	var encodeTime time.Duration
	if res.Played {
		encodeStart := time.Now()
		res.Output, err = p.export(ctx)
		if err != nil {
			return res, err
		}
		encodeTime = time.Since(encodeStart)
	}

	if p.Config.ShowStats {
		p.report(res, editEnd.Sub(startTime), encodeTime)
	}
	return res, nil
}

func (p *Project) export(ctx context.Context) (string, error) {
	frames := p.Reel.Playback()
	if len(frames) == 0 {
		p.notify("[!] Nothing to play: no frames were saved")
		return "", nil
	}
	if p.Config.OutputPath == "" || p.Encoder == nil {
		tracer().Infof("no output configured, skipping export")
		return "", nil
	}
	p.notify("[*] Exporting %d frames at %d fps...", len(frames), p.Config.FPS)
	if err := p.Encoder.Encode(ctx, frames, p.Config.OutputPath, p.Config.FPS); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return p.Config.OutputPath, nil
}

func (p *Project) report(res Result, editTime, encodeTime time.Duration) {
	host := "unavailable"
	if st, err := system.ReadHostStats(); err == nil {
		host = st.String()
	} else {
		tracer().Errorf("host stats: %v", err)
	}
	fmt.Fprintf(p.out(),
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Editing: %.2fs\n"+
			"Export: %.2fs\n"+
			"Frames: %d\n"+
			"Host: %s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, editTime.Seconds(), encodeTime.Seconds(), res.Frames, host,
	)
}

func (p *Project) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Project) notify(format string, args ...any) {
	fmt.Fprintf(p.out(), format+"\n", args...)
}
