// Package cutter extracts a time range of a source video into a re-encoded,
// web-playable clip.
package cutter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/reelcut/internal/toolpath"
	"github.com/mgpai22/reelcut/internal/toolrun"
)

// Orientation is the output aspect-ratio target of a clip.
type Orientation string

const (
	// Vertical center-crops to 9:16 and scales to 1080x1920.
	Vertical Orientation = "vertical"
	// Horizontal letterboxes into a 1920x1080 frame.
	Horizontal Orientation = "horizontal"
)

var (
	// ErrInvalidRange means end <= start or the source does not exist.
	ErrInvalidRange = errors.New("invalid cut range")

	// ErrCutFailed means the transcoder ran but produced no usable output.
	ErrCutFailed = errors.New("cut failed")
)

const cutTimeout = 10 * time.Minute

// filter graphs per orientation; both re-encode, never stream-copy, so the
// resulting clip is consistently seekable regardless of the source codec
const (
	verticalFilter   = "crop=ih*9/16:ih,scale=1080:1920"
	horizontalFilter = "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2"
)

// Cut extracts [start,end) from sourcePath into a new file in outDir and
// returns its path. Seeking is by start offset plus computed duration, not by
// absolute end time, which avoids drift from ffmpeg re-parsing the end
// timestamp.
func Cut(ctx context.Context, sourcePath string, start, end time.Duration, orientation Orientation, outDir string) (string, error) {
	if end <= start || start < 0 {
		return "", fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange, start, end)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return "", fmt.Errorf("%w: source not found: %s", ErrInvalidRange, sourcePath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filter := horizontalFilter
	if orientation == Vertical {
		filter = verticalFilter
	}

	outputPath := filepath.Join(outDir, fmt.Sprintf("clip_%d_%d_%d.mp4",
		int(start.Seconds()), int(end.Seconds()), time.Now().UnixNano()))

	err := ffmpeg.Input(sourcePath, ffmpeg.KwArgs{"ss": start.Seconds()}).
		Output(outputPath, ffmpeg.KwArgs{
			"t":        (end - start).Seconds(),
			"map":      []string{"0:v:0", "0:a:0?"},
			"vf":       filter,
			"c:v":      "libx264",
			"preset":   "veryfast",
			"crf":      "23",
			"c:a":      "aac",
			"b:a":      "128k",
			"movflags": "+faststart",
		}).
		OverWriteOutput().
		SetFfmpegPath(toolpath.Resolve(toolpath.FFmpeg)).
		WithTimeout(cutTimeout).
		Run()

	if err != nil {
		if toolrun.IsNotFound(err) {
			return "", fmt.Errorf("%w: install ffmpeg and ensure it is on PATH or set REELCUT_FFMPEG_PATH", toolrun.ErrToolNotInstalled)
		}
		return "", fmt.Errorf("%w: %v", ErrCutFailed, err)
	}

	// a reported success with no file on disk is still a failure; partial or
	// interrupted writes must not leak downstream
	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("%w: output missing after transcode: %s", ErrCutFailed, outputPath)
	}

	return outputPath, nil
}
