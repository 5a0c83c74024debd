// Package probe extracts media durations via ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/reelcut/internal/toolpath"
	"github.com/mgpai22/reelcut/internal/toolrun"
)

// ErrDurationUnavailable means ffprobe ran but its output did not yield a
// usable duration. A missing ffprobe install is reported as
// toolrun.ErrToolNotInstalled instead, since that is a setup problem rather
// than a per-file one.
var ErrDurationUnavailable = errors.New("duration unavailable")

const probeTimeout = 30 * time.Second

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the duration of a media file.
func Duration(ctx context.Context, path string) (time.Duration, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("file not found: %s", path)
	}

	out, err := toolrun.Run(ctx, toolrun.Spec{
		Bin: toolpath.Resolve(toolpath.FFprobe),
		Args: []string{
			"-v", "quiet",
			"-print_format", "json",
			"-show_format",
			path,
		},
		Timeout: probeTimeout,
	})
	if err != nil {
		if errors.Is(err, toolrun.ErrToolNotInstalled) {
			return 0, fmt.Errorf("%w: install ffmpeg (which provides ffprobe) and ensure it is on PATH or set REELCUT_FFPROBE_PATH", err)
		}
		return 0, fmt.Errorf("%w: ffprobe failed: %v", ErrDurationUnavailable, err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("%w: unparsable ffprobe output: %v", ErrDurationUnavailable, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%w: bad duration %q", ErrDurationUnavailable, parsed.Format.Duration)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}
