package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseProposals(t *testing.T) {
	raw := `[
		{"startTime": 10, "endTime": 75.5, "description": "the hook"},
		{"startTime": 200, "endTime": 290, "description": " the payoff "}
	]`

	got, err := parseProposals(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 proposals, got %d", len(got))
	}
	if got[0].Start != 10*time.Second || got[0].End != 75500*time.Millisecond {
		t.Errorf("first proposal = %+v", got[0])
	}
	if got[1].Reason != "the payoff" {
		t.Errorf("description must be trimmed, got %q", got[1].Reason)
	}
}

func TestParseProposalsFenced(t *testing.T) {
	raw := "```json\n[{\"startTime\": 0, \"endTime\": 90, \"description\": \"intro\"}]\n```"
	got, err := parseProposals(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].End != 90*time.Second {
		t.Errorf("got %+v", got)
	}
}

func TestParseProposalsGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "I think the best moment is around two minutes in."},
		{"object not array", `{"startTime": 0, "endTime": 90}`},
		{"empty", ""},
		{"truncated json", `[{"startTime": 0, "endTime":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseProposals(tt.raw)
			if !errors.Is(err, ErrUnparsableResponse) {
				t.Errorf("expected ErrUnparsableResponse, got %v", err)
			}
		})
	}
}

func TestParseProposalsEmptyArray(t *testing.T) {
	got, err := parseProposals("[]")
	if err != nil {
		t.Fatalf("an empty array is a valid contract reply: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no proposals, got %d", len(got))
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[1, 2]`, `[1, 2]`},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"plain fence", "```\n[1]\n```", "[1]"},
		{"surrounding whitespace", "  \n[1]\n  ", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.in); got != tt.want {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("0123456789abcdef", 10); got != "0123456789..." {
		t.Errorf("got %q", got)
	}
}

type silentClient struct{ Client }

type mediaClient struct{ Client }

func (mediaClient) NeedsTranscript() bool { return false }

func TestNeedsTranscript(t *testing.T) {
	if !NeedsTranscript(silentClient{}) {
		t.Error("clients without a declaration should default to wanting a transcript")
	}
	if NeedsTranscript(mediaClient{}) {
		t.Error("a declared media-capable client must not request a transcript")
	}
}

func TestFactoryUnknownProvider(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("bard"), "key", ""); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestPromptsCarryDuration(t *testing.T) {
	p := proposalPrompt(305 * time.Second)
	if !containsAll(p, "305", "60", "120") {
		t.Errorf("proposal prompt missing duration or bounds: %q", p)
	}
	s := srtPrompt(90 * time.Second)
	if !containsAll(s, "90", "SRT") {
		t.Errorf("srt prompt missing duration: %q", s)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
