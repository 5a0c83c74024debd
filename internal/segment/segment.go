// Package segment defines clip time ranges and the validation gate every
// downstream pipeline stage relies on.
package segment

import (
	"fmt"
	"time"
)

// Bounds an AI-proposed segment must satisfy to become a clip.
const (
	MinDuration = 60 * time.Second
	MaxDuration = 120 * time.Second

	// fallbackWindow is the fixed tile size used when no proposal survives
	// validation.
	fallbackWindow = 90 * time.Second
)

// Segment is one proposed or validated time range of the source video.
// Segments are never mutated after creation; an edited range is a new
// validated Segment replacing the old one.
type Segment struct {
	Start  time.Duration
	End    time.Duration
	Reason string
}

func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

func (s Segment) String() string {
	return fmt.Sprintf("[%s-%s]", s.Start, s.End)
}

// valid reports whether a proposal fits the duration bounds and the source.
func valid(s Segment, sourceDuration time.Duration) bool {
	d := s.Duration()
	return d >= MinDuration && d <= MaxDuration && s.Start >= 0 && s.End <= sourceDuration
}

// Validate filters AI proposals down to well-formed segments. When none
// survive it synthesizes fixed 90s windows tiling the source from zero,
// dropping a trailing window shorter than the minimum. An empty result is
// only possible for sources shorter than the minimum clip length; "no viral
// moments found" is never an error.
func Validate(proposals []Segment, sourceDuration time.Duration) []Segment {
	kept := make([]Segment, 0, len(proposals))
	for _, p := range proposals {
		if valid(p, sourceDuration) {
			kept = append(kept, p)
		}
	}
	if len(kept) > 0 {
		return kept
	}
	return fallback(sourceDuration)
}

// fallback tiles the source with fixed-size windows, each clipped to the
// source end.
func fallback(sourceDuration time.Duration) []Segment {
	var out []Segment
	for start := time.Duration(0); start < sourceDuration; start += fallbackWindow {
		end := start + fallbackWindow
		if end > sourceDuration {
			end = sourceDuration
		}
		if end-start < MinDuration {
			break
		}
		out = append(out, Segment{
			Start:  start,
			End:    end,
			Reason: fmt.Sprintf("segment %d of source", len(out)+1),
		})
	}
	return out
}
