// Package video exports the playback frames of a reel as an animation file.
package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ivlev/bezreel/internal/system"
)

// tracer writes to trace with key 'bezreel.video'
func tracer() tracing.Trace {
	return tracing.Select("bezreel.video")
}

// ErrNoFrames is returned when there is nothing to export.
var ErrNoFrames = errors.New("no frames to export")

// Encoder writes frames to path, fps frames per second.
type Encoder interface {
	Encode(ctx context.Context, frames []image.Image, path string, fps int) error
}

// ForPath picks an encoder from the file extension of path: MP4/MOV/MKV go
// through ffmpeg, everything else becomes a GIF.
func ForPath(path string) Encoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".mkv":
		return &FFmpegEncoder{}
	default:
		return &GIFEncoder{}
	}
}

// FFmpegEncoder pipes raw RGBA frames into ffmpeg.
type FFmpegEncoder struct {
	// VideoEncoder names the ffmpeg codec; empty picks the best H.264
	// encoder available.
	VideoEncoder string
	Quality      int
}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames []image.Image, path string, fps int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %d", fps)
	}
	encoderName := e.VideoEncoder
	if encoderName == "" {
		encoderName = system.GetBestH264Encoder()
	}
	quality := e.Quality
	if quality <= 0 {
		quality = 23
	}
	b := frames[0].Bounds()
	args := e.buildFFmpegArgs(b.Dx(), b.Dy(), path, fps, encoderName, quality)
	tracer().P("encoder", encoderName).Debugf("ffmpeg %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	for i, img := range frames {
		if !img.Bounds().Size().Eq(b.Size()) {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("frame %d is %v, expected %v", i+1, img.Bounds().Size(), b.Size())
		}
		if err := e.writeRawRGBA(stdin, img); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("write raw error: %w", err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, stderr.String())
	}
	tracer().P("path", path).Infof("wrote %d frames", len(frames))
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(inputW, inputH int, videoPath string, fps int, encoderName string, quality int) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}

	switch encoderName {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	return append(args, videoPath)
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = system.GetImage(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		defer system.PutImage(rgba)
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
