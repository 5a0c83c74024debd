// Package narrate renders a finished subtitled video from nothing but text:
// synthesized narration over a solid-color background. There is no source
// video to cut from, so subtitle overlay and audio mixing fuse into a single
// transcoder pass.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/reelcut/internal/burnin"
	"github.com/mgpai22/reelcut/internal/cutter"
	"github.com/mgpai22/reelcut/internal/probe"
	"github.com/mgpai22/reelcut/internal/subtitle"
	"github.com/mgpai22/reelcut/internal/synth"
	"github.com/mgpai22/reelcut/internal/toolpath"
	"github.com/mgpai22/reelcut/internal/toolrun"
)

const (
	renderTimeout = 10 * time.Minute

	backgroundColor = "0x101018"
)

// Renderer composes synthesis, probing, subtitle building and background
// generation into one narrated clip.
type Renderer struct {
	Synth synth.Synthesizer
}

func New(s synth.Synthesizer) *Renderer {
	return &Renderer{Synth: s}
}

// Result is the finished narrated artifact.
type Result struct {
	OutputPath    string
	SubtitlesText string
	Duration      time.Duration
}

// Render synthesizes narration for text and produces a subtitled video of
// matching duration in outDir.
func (r *Renderer) Render(ctx context.Context, text string, orientation cutter.Orientation, outDir string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("narration text is empty")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	audioPath, err := r.Synth.Synthesize(ctx, text, outDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(audioPath) }()

	duration, err := probe.Duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	style := subtitle.HorizontalStyle()
	if orientation == cutter.Vertical {
		style = subtitle.VerticalStyle()
	}
	script := subtitle.BuildApprox(text, duration, style)

	subPath := filepath.Join(outDir, fmt.Sprintf("narration_%d.ass", time.Now().UnixNano()))
	if err := os.WriteFile(subPath, []byte(script), 0644); err != nil {
		return nil, fmt.Errorf("failed to write subtitle file: %w", err)
	}
	defer func() { _ = os.Remove(subPath) }()

	outputPath := filepath.Join(outDir, fmt.Sprintf("narrated_%d.mp4", time.Now().UnixNano()))

	bg := fmt.Sprintf("color=c=%s:s=%dx%d:d=%.3f",
		backgroundColor, style.PlayResX, style.PlayResY, duration.Seconds())

	video := ffmpeg.Input(bg, ffmpeg.KwArgs{"f": "lavfi"})
	audio := ffmpeg.Input(audioPath)

	err = ffmpeg.Output([]*ffmpeg.Stream{video, audio}, outputPath, ffmpeg.KwArgs{
		"vf":       "subtitles=" + burnin.EscapeFilterPath(subPath),
		"c:v":      "libx264",
		"preset":   "veryfast",
		"crf":      "23",
		"c:a":      "aac",
		"b:a":      "128k",
		"shortest": "",
		"movflags": "+faststart",
	}).
		OverWriteOutput().
		SetFfmpegPath(toolpath.Resolve(toolpath.FFmpeg)).
		WithTimeout(renderTimeout).
		Run()
	if err != nil {
		if toolrun.IsNotFound(err) {
			return nil, fmt.Errorf("%w: install ffmpeg or set REELCUT_FFMPEG_PATH", toolrun.ErrToolNotInstalled)
		}
		return nil, fmt.Errorf("narration render failed: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return nil, errors.New("narration render produced no output")
	}

	return &Result{
		OutputPath:    outputPath,
		SubtitlesText: script,
		Duration:      duration,
	}, nil
}
