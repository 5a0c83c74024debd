package subtitle

import (
	"strings"
	"testing"
	"time"
)

func TestBuildApproxEmptyText(t *testing.T) {
	got := BuildApprox("", 10*time.Second, VerticalStyle())

	if !strings.HasPrefix(got, ScriptHeaderMarker) {
		t.Errorf("header marker missing:\n%s", got)
	}
	if len(dialogueLines(got)) != 0 {
		t.Errorf("empty text must produce zero events:\n%s", got)
	}
}

func TestBuildApproxSpansTotalDuration(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	total := 10 * time.Second

	got := BuildApprox(text, total, VerticalStyle())

	lines := dialogueLines(got)
	if len(lines) == 0 {
		t.Fatal("expected dialogue lines")
	}
	last := lines[len(lines)-1]
	// ten words over ten seconds: the final event ends at the narration end
	if !strings.Contains(last, ",0:00:10.00,") {
		t.Errorf("last event should end at the total duration: %s", last)
	}
}

func TestBuildApproxMinimumWordDurationRunsLong(t *testing.T) {
	// 20 words crammed into one second: the 0.2s floor stretches the script
	// to 4s instead of flashing words or inverting windows
	text := strings.Repeat("word ", 20)
	got := BuildApprox(strings.TrimSpace(text), time.Second, VerticalStyle())

	lines := dialogueLines(got)
	if len(lines) == 0 {
		t.Fatal("expected dialogue lines")
	}
	for i, line := range lines {
		parts := strings.Split(line, ",")
		if start, end := parts[1], parts[2]; start >= end {
			t.Errorf("line %d: start %s not before end %s", i, start, end)
		}
	}
	if !strings.Contains(lines[0], ",0:00:01.60,") {
		t.Errorf("first 8-word line should end at 1.6s: %s", lines[0])
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, ",0:00:04.00,") {
		t.Errorf("script should run to 20 words x 0.2s: %s", last)
	}
}

func TestBuildApproxPacksByCharacterBudget(t *testing.T) {
	long := strings.Repeat("x", 30)
	text := long + " " + long + " " + long
	got := BuildApprox(text, 30*time.Second, HorizontalStyle())

	lines := dialogueLines(got)
	if len(lines) != 3 {
		t.Fatalf("expected one 30-char word per line, got %d lines:\n%s", len(lines), got)
	}
}

func TestBuildApproxLineWindowsMonotonic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog again and again until done"
	got := BuildApprox(text, 20*time.Second, VerticalStyle())

	var prevEnd string
	for i, line := range dialogueLines(got) {
		parts := strings.Split(line, ",")
		start, end := parts[1], parts[2]
		if start > end {
			t.Errorf("line %d: start %s after end %s", i, start, end)
		}
		if prevEnd != "" && start < prevEnd {
			t.Errorf("line %d: starts %s before previous end %s", i, start, prevEnd)
		}
		prevEnd = end
	}
}
