package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/reelcut/internal/cutter"
	"github.com/mgpai22/reelcut/internal/logging"
	"github.com/mgpai22/reelcut/internal/oracle"
	"github.com/mgpai22/reelcut/internal/segment"
	"github.com/mgpai22/reelcut/internal/transcript"
)

// stubTool writes an executable stand-in script and returns its path.
func stubTool(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in is unix only")
	}
	bin := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin
}

// creates whatever output file the invocation asked for: the output path is
// the last argument that is not a flag
const fakeFfmpegScript = `#!/bin/sh
out=""
for a in "$@"; do
  case "$a" in -*) ;; *) out="$a" ;; esac
done
: > "$out"
`

func writeFakeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigValidate(t *testing.T) {
	source := writeFakeVideo(t)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "empty source",
			cfg:     Config{OutDir: "out", Orientation: cutter.Vertical},
			wantErr: "source path",
		},
		{
			name:    "missing source",
			cfg:     Config{SourcePath: "/nope/missing.mp4", OutDir: "out", Orientation: cutter.Vertical},
			wantErr: "stat source",
		},
		{
			name:    "empty out dir",
			cfg:     Config{SourcePath: source, Orientation: cutter.Vertical},
			wantErr: "output directory",
		},
		{
			name:    "bad orientation",
			cfg:     Config{SourcePath: source, OutDir: "out", Orientation: cutter.Orientation("diagonal")},
			wantErr: "orientation",
		},
		{
			name: "valid",
			cfg:  Config{SourcePath: source, OutDir: "out", Orientation: cutter.Horizontal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

// stubOracle lets tests script the proposal path without a network.
type stubOracle struct {
	segments []segment.Segment
	err      error
}

func (s *stubOracle) ProposeSegments(ctx context.Context, src oracle.Source) ([]segment.Segment, error) {
	return s.segments, s.err
}

func (s *stubOracle) GenerateSRT(ctx context.Context, src oracle.Source) (string, error) {
	return "", errors.New("not implemented")
}

func TestSelectSegmentsUsesOracleProposals(t *testing.T) {
	proposed := []segment.Segment{
		{Start: 10 * time.Second, End: 100 * time.Second, Reason: "hook"},
	}
	cfg := Config{Oracle: &stubOracle{segments: proposed}}

	got := selectSegments(context.Background(), cfg, 300*time.Second, logging.NewNop())
	if len(got) != 1 || got[0].Reason != "hook" {
		t.Fatalf("expected the oracle proposal to survive validation, got %+v", got)
	}
}

func TestSelectSegmentsFallsBackOnUnparsableResponse(t *testing.T) {
	cfg := Config{Oracle: &stubOracle{err: oracle.ErrUnparsableResponse}}

	got := selectSegments(context.Background(), cfg, 305*time.Second, logging.NewNop())
	if len(got) != 3 {
		t.Fatalf("expected uniform fallback tiling, got %+v", got)
	}
	if got[0].Start != 0 || got[0].End != 90*time.Second {
		t.Errorf("first fallback window = %+v", got[0])
	}
}

func TestSelectSegmentsFallsBackWithoutOracle(t *testing.T) {
	got := selectSegments(context.Background(), Config{}, 180*time.Second, logging.NewNop())
	if len(got) != 2 {
		t.Fatalf("expected 2 uniform windows for 180s, got %+v", got)
	}
}

func TestSelectSegmentsRejectsOutOfBoundsProposals(t *testing.T) {
	proposed := []segment.Segment{
		{Start: 0, End: 30 * time.Second},                    // too short
		{Start: 100 * time.Second, End: 400 * time.Second},   // past the end
		{Start: 50 * time.Second, End: 45 * time.Second},     // inverted
	}
	cfg := Config{Oracle: &stubOracle{segments: proposed}}

	got := selectSegments(context.Background(), cfg, 300*time.Second, logging.NewNop())
	for _, s := range got {
		if d := s.Duration(); d < segment.MinDuration || d > segment.MaxDuration {
			t.Errorf("validated segment out of bounds: %+v", s)
		}
	}
	if len(got) == 0 {
		t.Error("all-invalid proposals must still yield the uniform fallback")
	}
}

func TestRunEndToEnd(t *testing.T) {
	t.Setenv("REELCUT_FFPROBE_PATH",
		stubTool(t, "ffprobe", "#!/bin/sh\necho '{\"format\": {\"duration\": \"100.0\"}}'\n"))
	t.Setenv("REELCUT_FFMPEG_PATH", stubTool(t, "ffmpeg", fakeFfmpegScript))

	result, err := Run(context.Background(), Config{
		SourcePath:  writeFakeVideo(t),
		OutDir:      t.TempDir(),
		Orientation: cutter.Vertical,
		Concurrency: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Artifacts) != 1 {
		t.Fatalf("100s source should yield one 90s clip, got %d", len(result.Artifacts))
	}
	a := result.Artifacts[0]
	if a.StartSec != 0 || a.EndSec != 90 {
		t.Errorf("clip window = %v-%v, want 0-90", a.StartSec, a.EndSec)
	}
	if _, err := os.Stat(a.OutputPath); err != nil {
		t.Errorf("clip file missing: %v", err)
	}
	if _, err := os.Stat(result.ManifestPath); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
	if filepath.Dir(result.ManifestPath) != result.RunDir {
		t.Errorf("manifest %s should live in run dir %s", result.ManifestPath, result.RunDir)
	}
}

// parses the -of output prefix and emits unusable word timings plus a
// timecode-free srt, forcing the chain down to the oracle
const fakeWhisperScript = `#!/bin/sh
prefix=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-of" ]; then prefix="$a"; fi
  prev="$a"
done
printf 'not json' > "$prefix.json"
printf 'spoken words without timecodes' > "$prefix.srt"
`

// recordingOracle captures the source handed to GenerateSRT.
type recordingOracle struct {
	stubOracle
	srtSource oracle.Source
	srt       string
}

func (r *recordingOracle) GenerateSRT(ctx context.Context, src oracle.Source) (string, error) {
	r.srtSource = src
	return r.srt, nil
}

func TestBuildSubtitlesHandsTranscriptToOracle(t *testing.T) {
	t.Setenv("REELCUT_FFMPEG_PATH", stubTool(t, "ffmpeg", fakeFfmpegScript))

	runDir := t.TempDir()
	clip := filepath.Join(runDir, "clip.mp4")
	if err := os.WriteFile(clip, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	model := filepath.Join(t.TempDir(), "ggml-base.bin")
	if err := os.WriteFile(model, []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &recordingOracle{srt: "1\n00:00:01,000 --> 00:00:02,000\nhello\n"}
	cfg := Config{
		Oracle: rec,
		Transcript: &transcript.Extractor{
			Bin:   stubTool(t, "whisper", fakeWhisperScript),
			Model: model,
		},
	}
	seg := segment.Segment{Start: 0, End: 90 * time.Second}

	got := buildSubtitles(context.Background(), cfg, seg, clip, runDir, logging.NewNop())
	if !strings.Contains(got, "hello") {
		t.Fatalf("oracle srt should survive normalization: %q", got)
	}
	if want := "spoken words without timecodes"; rec.srtSource.Transcript != want {
		t.Errorf("oracle received transcript %q, want %q", rec.srtSource.Transcript, want)
	}
	if rec.srtSource.MediaPath != clip {
		t.Errorf("oracle received media path %q, want %q", rec.srtSource.MediaPath, clip)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Error("expected a validation error")
	}
}

func TestWriteManifest(t *testing.T) {
	runDir := t.TempDir()
	artifacts := []Artifact{
		{OutputPath: "a.mp4", Orientation: "vertical", StartSec: 0, EndSec: 90, Reason: "first"},
	}

	path, err := writeManifest(runDir, "source.mp4", artifacts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"source": "source.mp4"`, `"file": "a.mp4"`, `"start_sec": 0`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("manifest missing %q:\n%s", want, b)
		}
	}
}

func TestBuildRunDirUniqueNames(t *testing.T) {
	a := buildRunDir("out", "/media/talk.mp4")
	if !strings.HasPrefix(filepath.Base(a), "talk-") {
		t.Errorf("run dir should carry the source name, got %s", a)
	}
	if filepath.Dir(a) != "out" {
		t.Errorf("run dir should live under the output root, got %s", a)
	}
}
