package segment

import (
	"testing"
	"time"
)

func sec(n float64) time.Duration {
	return time.Duration(n * float64(time.Second))
}

func TestValidateKeepsWellFormedProposals(t *testing.T) {
	source := sec(300)
	proposals := []Segment{
		{Start: sec(10), End: sec(100), Reason: "strong hook"},  // 90s, valid
		{Start: sec(0), End: sec(30), Reason: "too short"},      // 30s
		{Start: sec(0), End: sec(150), Reason: "too long"},      // 150s
		{Start: sec(250), End: sec(340), Reason: "out of range"}, // past source end
	}

	got := Validate(proposals, source)

	if len(got) != 1 {
		t.Fatalf("expected 1 valid segment, got %d", len(got))
	}
	if got[0].Start != sec(10) || got[0].End != sec(100) {
		t.Errorf("wrong segment kept: %v", got[0])
	}
	if got[0].Reason != "strong hook" {
		t.Errorf("reason not preserved: %q", got[0].Reason)
	}
}

func TestValidateInvariantHolds(t *testing.T) {
	source := sec(500)
	proposals := []Segment{
		{Start: sec(5), End: sec(70)},
		{Start: sec(100), End: sec(220)},
		{Start: sec(-10), End: sec(60)},
		{Start: sec(400), End: sec(520)},
	}

	for _, s := range Validate(proposals, source) {
		d := s.Duration()
		if d < MinDuration || d > MaxDuration {
			t.Errorf("segment %v duration %v outside [%v, %v]", s, d, MinDuration, MaxDuration)
		}
		if s.End > source {
			t.Errorf("segment %v ends past source duration", s)
		}
		if s.Start < 0 {
			t.Errorf("segment %v starts before zero", s)
		}
	}
}

func TestValidateFallbackDeterministic(t *testing.T) {
	// 305s source with no valid proposals tiles as 3 windows; the trailing
	// 35s remainder is below the minimum and dropped.
	got := Validate(nil, sec(305))

	want := []struct{ start, end time.Duration }{
		{sec(0), sec(90)},
		{sec(90), sec(180)},
		{sec(180), sec(270)},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fallback segments, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Start != w.start || got[i].End != w.end {
			t.Errorf("segment %d: expected [%v, %v], got [%v, %v]",
				i, w.start, w.end, got[i].Start, got[i].End)
		}
		if got[i].Reason == "" {
			t.Errorf("segment %d: fallback segments must carry a reason", i)
		}
	}
}

func TestValidateFallbackClipsFinalWindow(t *testing.T) {
	// 170s: first window is 90s, remainder is 80s which still clears the
	// minimum and is kept clipped to the source end.
	got := Validate(nil, sec(170))

	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[1].Start != sec(90) || got[1].End != sec(170) {
		t.Errorf("expected clipped final window [90s, 170s], got [%v, %v]", got[1].Start, got[1].End)
	}
}

func TestValidateShortSourceYieldsEmpty(t *testing.T) {
	// a 45s source can never hold a minimum-length clip; empty is valid,
	// not an error
	if got := Validate(nil, sec(45)); len(got) != 0 {
		t.Errorf("expected no segments for a 45s source, got %v", got)
	}
}

func TestValidateAllInvalidFallsBack(t *testing.T) {
	proposals := []Segment{
		{Start: sec(0), End: sec(10)},
		{Start: sec(500), End: sec(600)},
	}
	got := Validate(proposals, sec(200))

	if len(got) == 0 {
		t.Fatal("expected fallback segments when every proposal is invalid")
	}
	for _, s := range got {
		if s.Start == sec(0) && s.End == sec(10) {
			t.Error("invalid proposal leaked through validation")
		}
	}
}
