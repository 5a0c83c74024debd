// Package transcript turns a clip's audio into word-level timings via a
// local whisper.cpp install.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/reelcut/internal/toolpath"
	"github.com/mgpai22/reelcut/internal/toolrun"
)

var (
	// ErrEngineNotConfigured means the whisper binary or model path is not
	// set up. This is a deployment problem, not a per-file one.
	ErrEngineNotConfigured = errors.New("speech engine not configured")

	// ErrTranscriptionFailed means the engine ran but produced no usable
	// output for this clip.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

const (
	extractTimeout    = 5 * time.Minute
	transcribeTimeout = 15 * time.Minute
)

// Word is a single recognized word with its absolute clip-local timing.
// Words are ordered by Start and immutable once produced.
type Word struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// whisper.cpp JSON output shape (-oj)
type whisperOutput struct {
	Transcription []whisperSegment `json:"transcription"`
}

type whisperSegment struct {
	Offsets struct {
		From int64 `json:"from"` // milliseconds
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text   string        `json:"text"`
	Tokens []whisperWord `json:"tokens"`
}

type whisperWord struct {
	Text    string `json:"text"`
	Offsets struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	} `json:"offsets"`
}

// Extractor invokes whisper.cpp with a configured model.
type Extractor struct {
	Bin   string // empty = resolve at call time
	Model string
}

func New(model string) *Extractor {
	return &Extractor{Model: model}
}

func (e *Extractor) bin() string {
	if e.Bin != "" {
		return e.Bin
	}
	return toolpath.Resolve(toolpath.Whisper)
}

// checkConfigured fails fast when the engine or its model is absent.
func (e *Extractor) checkConfigured() error {
	if e.Model == "" {
		return fmt.Errorf("%w: set REELCUT_WHISPER_MODEL to a ggml model path", ErrEngineNotConfigured)
	}
	if _, err := os.Stat(e.Model); err != nil {
		return fmt.Errorf("%w: model not found: %s", ErrEngineNotConfigured, e.Model)
	}
	return nil
}

// ExtractWords transcribes the clip and returns one Word per recognized word,
// sorted by start time. Segments without word-level tokens get synthetic,
// evenly spaced timings so callers always receive word granularity.
func (e *Extractor) ExtractWords(ctx context.Context, clipPath, language, workdir string) ([]Word, error) {
	raw, cleanup, err := e.transcribe(ctx, clipPath, language, workdir)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	var parsed whisperOutput
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// malformed JSON is not fatal: the caller has an SRT fallback path
		return nil, nil
	}

	var words []Word
	for _, seg := range parsed.Transcription {
		words = append(words, segmentWords(seg)...)
	}

	sort.Slice(words, func(i, j int) bool {
		return words[i].Start < words[j].Start
	})

	return words, nil
}

// ExtractSRT transcribes the clip and returns the engine's block-level SRT
// output verbatim.
func (e *Extractor) ExtractSRT(ctx context.Context, clipPath, language, workdir string) (string, error) {
	if err := e.checkConfigured(); err != nil {
		return "", err
	}

	audioPath, err := extractAudio(clipPath, workdir)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(audioPath) }()

	outPrefix := filepath.Join(workdir, fmt.Sprintf("whisper_%d", time.Now().UnixNano()))
	defer removeOutputs(outPrefix)

	if err := e.invoke(ctx, audioPath, language, outPrefix); err != nil {
		return "", err
	}

	srt, err := os.ReadFile(outPrefix + ".srt")
	if err != nil {
		return "", fmt.Errorf("%w: no srt output: %v", ErrTranscriptionFailed, err)
	}
	return string(srt), nil
}

// transcribe runs the full extract-audio + whisper sequence and returns the
// raw JSON bytes plus a cleanup func that is safe to call on every path.
func (e *Extractor) transcribe(ctx context.Context, clipPath, language, workdir string) ([]byte, func(), error) {
	cleanup := func() {}
	if err := e.checkConfigured(); err != nil {
		return nil, cleanup, err
	}

	audioPath, err := extractAudio(clipPath, workdir)
	if err != nil {
		return nil, cleanup, err
	}

	outPrefix := filepath.Join(workdir, fmt.Sprintf("whisper_%d", time.Now().UnixNano()))
	cleanup = func() {
		_ = os.Remove(audioPath)
		removeOutputs(outPrefix)
	}

	if err := e.invoke(ctx, audioPath, language, outPrefix); err != nil {
		return nil, cleanup, err
	}

	raw, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, cleanup, fmt.Errorf("%w: no json output: %v", ErrTranscriptionFailed, err)
	}
	return raw, cleanup, nil
}

func (e *Extractor) invoke(ctx context.Context, audioPath, language, outPrefix string) error {
	args := []string{
		"-m", e.Model,
		"-f", audioPath,
		"-oj",
		"-osrt",
		"-of", outPrefix,
		"-ml", "1", // one token per line gives per-word offsets
	}
	if language != "" {
		args = append(args, "-l", language)
	}

	_, err := toolrun.Run(ctx, toolrun.Spec{
		Bin:     e.bin(),
		Args:    args,
		Timeout: transcribeTimeout,
	})
	if err != nil {
		if errors.Is(err, toolrun.ErrToolNotInstalled) {
			return fmt.Errorf("%w: whisper binary not found, set REELCUT_WHISPER_PATH", ErrEngineNotConfigured)
		}
		return fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	return nil
}

// extractAudio writes a mono 16kHz WAV next to the clip; most speech engines
// are tuned for exactly that format.
func extractAudio(clipPath, workdir string) (string, error) {
	if _, err := os.Stat(clipPath); err != nil {
		return "", fmt.Errorf("clip not found: %s", clipPath)
	}
	if err := os.MkdirAll(workdir, 0755); err != nil {
		return "", fmt.Errorf("failed to create workdir: %w", err)
	}

	audioPath := filepath.Join(workdir, fmt.Sprintf("audio_%d.wav", time.Now().UnixNano()))

	err := ffmpeg.Input(clipPath).
		Output(audioPath, ffmpeg.KwArgs{
			"vn":     "",
			"ac":     1,
			"ar":     16000,
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().
		SetFfmpegPath(toolpath.Resolve(toolpath.FFmpeg)).
		WithTimeout(extractTimeout).
		Run()
	if err != nil {
		if toolrun.IsNotFound(err) {
			return "", fmt.Errorf("%w: install ffmpeg or set REELCUT_FFMPEG_PATH", toolrun.ErrToolNotInstalled)
		}
		return "", fmt.Errorf("%w: audio extraction: %v", ErrTranscriptionFailed, err)
	}
	return audioPath, nil
}

// segmentWords returns this segment's words, synthesizing evenly spaced
// timings when the engine reported no usable token offsets. The even spacing
// is a best-effort approximation with no accuracy guarantee.
func segmentWords(seg whisperSegment) []Word {
	segStart := time.Duration(seg.Offsets.From) * time.Millisecond
	segEnd := time.Duration(seg.Offsets.To) * time.Millisecond

	var words []Word
	for _, tok := range seg.Tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" || strings.HasPrefix(text, "[") {
			// skip whisper markers like [_BEG_]
			continue
		}
		words = append(words, Word{
			Start: time.Duration(tok.Offsets.From) * time.Millisecond,
			End:   time.Duration(tok.Offsets.To) * time.Millisecond,
			Text:  text,
		})
	}
	if len(words) > 0 {
		return words
	}

	fields := strings.Fields(seg.Text)
	if len(fields) == 0 || segEnd <= segStart {
		return nil
	}

	per := (segEnd - segStart) / time.Duration(len(fields))
	out := make([]Word, len(fields))
	for i, f := range fields {
		out[i] = Word{
			Start: segStart + time.Duration(i)*per,
			End:   segStart + time.Duration(i+1)*per,
			Text:  f,
		}
	}
	// the last word absorbs rounding so segment coverage stays exact
	out[len(out)-1].End = segEnd
	return out
}

func removeOutputs(prefix string) {
	_ = os.Remove(prefix + ".json")
	_ = os.Remove(prefix + ".srt")
}
