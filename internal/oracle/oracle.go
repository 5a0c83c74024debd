// Package oracle adapts external AI models to the two contracts the pipeline
// consumes: viral-segment proposals and fallback SRT generation. The models
// are opaque; only their response contracts are enforced here.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mgpai22/reelcut/internal/segment"
)

// ErrUnparsableResponse means the model's reply did not match the expected
// JSON or subtitle contract. The caller may still fall back to uniform
// segmentation rather than aborting the run.
var ErrUnparsableResponse = errors.New("unparsable oracle response")

// Source is the input handed to a provider. Media-capable providers consume
// MediaPath; text-only providers consume Transcript.
type Source struct {
	MediaPath  string
	Transcript string
	Duration   time.Duration
}

// SegmentProposer returns candidate viral segments for a source video. The
// proposals are untrusted and must go through segment.Validate.
type SegmentProposer interface {
	ProposeSegments(ctx context.Context, src Source) ([]segment.Segment, error)
}

// SRTGenerator produces a raw subtitle text blob for a clip. The output is
// untrusted and must go through subtitle.Normalize.
type SRTGenerator interface {
	GenerateSRT(ctx context.Context, src Source) (string, error)
}

// Provider selects a vendor adapter.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// proposal wire shape the prompt asks every model for
type proposalJSON struct {
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Description string  `json:"description"`
}

// Client bundles both oracle roles for one vendor.
type Client interface {
	SegmentProposer
	SRTGenerator
}

// NeedsTranscript reports whether the client proposes from transcript text
// rather than raw media. Callers can skip transcript extraction for
// media-capable providers. Clients that do not declare either way are assumed
// to want one.
func NeedsTranscript(c Client) bool {
	if t, ok := c.(interface{ NeedsTranscript() bool }); ok {
		return t.NeedsTranscript()
	}
	return true
}

// Factory creates a vendor adapter.
func Factory(ctx context.Context, provider Provider, apiKey, model string) (Client, error) {
	switch provider {
	case ProviderGemini:
		return NewGemini(ctx, apiKey, model)
	case ProviderOpenAI:
		return NewOpenAI(apiKey, model)
	case ProviderAnthropic:
		return NewAnthropic(apiKey, model)
	default:
		return nil, fmt.Errorf("unknown oracle provider: %s", provider)
	}
}

func proposalPrompt(duration time.Duration) string {
	var sb strings.Builder
	sb.WriteString("Identify the most engaging, potentially viral moments in this content. ")
	fmt.Fprintf(&sb, "The total duration is %.0f seconds. ", duration.Seconds())
	sb.WriteString("Each moment must be between 60 and 120 seconds long and must end before the total duration. ")
	sb.WriteString("Respond with a JSON array of objects with 'startTime', 'endTime' (numbers, seconds) and 'description' (string) fields. ")
	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

func srtPrompt(duration time.Duration) string {
	var sb strings.Builder
	sb.WriteString("Produce subtitles in SRT format for this content. ")
	fmt.Fprintf(&sb, "The content is %.0f seconds long; all timecodes must fall inside that span. ", duration.Seconds())
	sb.WriteString("Use the HH:MM:SS,mmm --> HH:MM:SS,mmm timecode form. ")
	sb.WriteString("Return ONLY the SRT text, no other text or markdown formatting.")
	return sb.String()
}

// parseProposals enforces the JSON contract shared by every provider.
func parseProposals(responseText string) ([]segment.Segment, error) {
	cleaned := cleanJSONResponse(responseText)

	var proposals []proposalJSON
	if err := json.Unmarshal([]byte(cleaned), &proposals); err != nil {
		return nil, fmt.Errorf("%w: %v (response: %s)", ErrUnparsableResponse, err, truncate(cleaned, 200))
	}

	out := make([]segment.Segment, len(proposals))
	for i, p := range proposals {
		out[i] = segment.Segment{
			Start:  time.Duration(p.StartTime * float64(time.Second)),
			End:    time.Duration(p.EndTime * float64(time.Second)),
			Reason: strings.TrimSpace(p.Description),
		}
	}
	return out, nil
}

var jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*")

// cleanJSONResponse strips markdown fences models wrap JSON in.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
