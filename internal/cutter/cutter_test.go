package cutter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCutRejectsInvalidRanges(t *testing.T) {
	source := filepath.Join(t.TempDir(), "source.mp4")
	if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		start, end time.Duration
	}{
		{"end equals start", 10 * time.Second, 10 * time.Second},
		{"end before start", 20 * time.Second, 10 * time.Second},
		{"negative start", -1 * time.Second, 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Cut(context.Background(), source, tt.start, tt.end, Vertical, t.TempDir())
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("expected ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestCutRejectsMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.mp4")
	_, err := Cut(context.Background(), missing, 0, 90*time.Second, Horizontal, t.TempDir())
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for a missing source, got %v", err)
	}
}
