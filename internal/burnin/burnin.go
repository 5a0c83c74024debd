// Package burnin composites a subtitle document into a clip's pixel data.
package burnin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/reelcut/internal/subtitle"
	"github.com/mgpai22/reelcut/internal/toolpath"
	"github.com/mgpai22/reelcut/internal/toolrun"
)

// ErrBurnInFailed means the transcoder ran but left no usable output.
var ErrBurnInFailed = errors.New("burn-in failed")

const burnTimeout = 10 * time.Minute

// Options tune cleanup behavior.
type Options struct {
	// KeepSubtitleFile retains the temp subtitle file for debugging.
	KeepSubtitleFile bool
	// KeepSource retains the pre-burn-in video instead of deleting it.
	KeepSource bool
}

// Apply overlays subtitleText onto the video and returns the new path. Blank
// subtitle text is a no-op passthrough: the input path is returned unchanged
// with no filesystem side effects.
func Apply(videoPath, subtitleText, outDir string, opts Options) (string, error) {
	if strings.TrimSpace(subtitleText) == "" {
		return videoPath, nil
	}
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video not found: %s", videoPath)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// dialect sniff: styled scripts declare themselves on the first line
	ext := ".srt"
	if strings.HasPrefix(strings.TrimSpace(subtitleText), subtitle.ScriptHeaderMarker) {
		ext = ".ass"
	}

	subPath := filepath.Join(outDir, fmt.Sprintf("subs_%d%s", time.Now().UnixNano(), ext))
	if err := os.WriteFile(subPath, []byte(subtitleText), 0644); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}
	if !opts.KeepSubtitleFile {
		defer func() { _ = os.Remove(subPath) }()
	}

	outputPath := filepath.Join(outDir, fmt.Sprintf("final_%d.mp4", time.Now().UnixNano()))

	// filter application forces a decode/encode cycle, so both streams are
	// re-encoded regardless
	err := ffmpeg.Input(videoPath).
		Output(outputPath, ffmpeg.KwArgs{
			"vf":       "subtitles=" + EscapeFilterPath(subPath),
			"c:v":      "libx264",
			"preset":   "veryfast",
			"crf":      "23",
			"c:a":      "aac",
			"b:a":      "128k",
			"movflags": "+faststart",
		}).
		OverWriteOutput().
		SetFfmpegPath(toolpath.Resolve(toolpath.FFmpeg)).
		WithTimeout(burnTimeout).
		Run()
	if err != nil {
		if toolrun.IsNotFound(err) {
			return "", fmt.Errorf("%w: install ffmpeg or set REELCUT_FFMPEG_PATH", toolrun.ErrToolNotInstalled)
		}
		return "", fmt.Errorf("%w: %v", ErrBurnInFailed, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("%w: output missing after transcode: %s", ErrBurnInFailed, outputPath)
	}

	// the pre-burn-in intermediate is redundant once the final exists
	if !opts.KeepSource && videoPath != outputPath {
		_ = os.Remove(videoPath)
	}

	return outputPath, nil
}

// EscapeFilterPath quotes a path for ffmpeg's filter-graph mini-language,
// which has its own escaping rules independent of the shell and the OS.
// Backslash, colon, quote and comma are all structural characters inside a
// filter spec.
func EscapeFilterPath(p string) string {
	p = filepath.ToSlash(p)
	var b strings.Builder
	for _, r := range p {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ':':
			b.WriteString(`\:`)
		case '\'':
			b.WriteString(`\'`)
		case ',':
			b.WriteString(`\,`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
