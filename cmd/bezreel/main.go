package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ivlev/bezreel/internal/config"
	"github.com/ivlev/bezreel/internal/engine"
	"github.com/ivlev/bezreel/internal/reel"
	"github.com/ivlev/bezreel/internal/system"
	"github.com/ivlev/bezreel/internal/video"
)

var version = "dev"

var tracedPackages = []string{
	"bezreel.console", "bezreel.engine", "bezreel.reel", "bezreel.renderer",
	"bezreel.session", "bezreel.source", "bezreel.store", "bezreel.video",
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n"+
		"  bezreel [flags] [script]   edit frames from an event script (stdin if omitted)\n"+
		"  bezreel [flags] clear      delete every frame but %s\n\nFlags:\n", reel.Placeholder)
	flag.PrintDefaults()
}

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "YAML file with settings; flags override it")
	dirPtr := flag.String("dir", "", "Animation directory holding frame<N>.png")
	curvesPtr := flag.String("curves", "", "Curve file (YAML, or a legacy saved_curves.json)")
	referencePtr := flag.String("reference", "", "Image or PDF drawn into frame 0 of a new reel (default: newest file in input/)")
	previewPtr := flag.String("preview", "", "Editor preview PNG, rewritten after every change")
	outputPtr := flag.String("output", "", "Exported animation (.gif, or .mp4 via ffmpeg)")
	fpsPtr := flag.Int("fps", 0, "Playback frames per second")
	samplesPtr := flag.Int("samples", 0, "Samples per curve in saved frames")
	tolerancePtr := flag.Float64("tolerance", 0, "Pick radius for control points in pixels")
	dpiPtr := flag.Int("dpi", 0, "DPI for PDF references")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Threads for GIF quantization")
	qualityPtr := flag.Int("quality", 0, "Video quality (x264: CRF 1-51, VideoToolbox: bitrate = Q*100 kbit/s)")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	verbosePtr := flag.Bool("v", false, "Debug tracing")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			cfg.AnimationDir = *dirPtr
		case "curves":
			cfg.CurvesPath = *curvesPtr
		case "reference":
			cfg.ReferencePath = *referencePtr
		case "preview":
			cfg.PreviewPath = *previewPtr
		case "output":
			cfg.OutputPath = *outputPtr
		case "fps":
			cfg.FPS = *fpsPtr
		case "samples":
			cfg.FrameSamples = *samplesPtr
		case "tolerance":
			cfg.Tolerance = *tolerancePtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "quality":
			cfg.Quality = *qualityPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	cfg.Workers = *workersPtr
	cfg.BuildVersion = version

	if *verbosePtr {
		for _, key := range tracedPackages {
			tracing.Select(key).SetTraceLevel(tracing.LevelDebug)
		}
	}

	if flag.Arg(0) == "clear" {
		n, err := reel.Clear(cfg.AnimationDir)
		if err != nil {
			log.Fatalf("[-] Clear failed: %v", err)
		}
		fmt.Printf("[+++] Deleted %d files from %s\n", n, cfg.AnimationDir)
		return
	}

	if cfg.ReferencePath == "" {
		if latest, err := system.FindLatestReference("input"); err == nil {
			cfg.ReferencePath = latest
			fmt.Printf("[*] Selected reference: %s\n", latest)
		}
	}

	var events io.Reader = os.Stdin
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("[-] Cannot open script: %v", err)
		}
		defer f.Close()
		events = f
	}

	var enc video.Encoder
	switch e := video.ForPath(cfg.OutputPath).(type) {
	case *video.FFmpegEncoder:
		e.VideoEncoder = cfg.VideoEncoder
		if e.VideoEncoder == "" {
			e.VideoEncoder = system.GetBestH264Encoder()
		}
		if e.VideoEncoder != "libx264" {
			fmt.Printf("[*] Hardware acceleration detected: %s\n", e.VideoEncoder)
		}
		e.Quality = cfg.Quality
		enc = e
	case *video.GIFEncoder:
		e.Workers = cfg.Workers
		enc = e
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewProject(&cfg, enc)
	res, err := project.Run(ctx, events)
	if err != nil {
		log.Fatalf("[-] Project error: %v", err)
	}

	if res.Output != "" {
		fmt.Printf("[+++] Done! Animation: %s (%d frames)\n", res.Output, res.Frames)
	} else {
		fmt.Printf("[+++] Done! Reel has %d frames\n", res.Frames)
	}
}
