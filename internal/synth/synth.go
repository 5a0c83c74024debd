// Package synth turns narration text into a waveform via a local
// speech-synthesis engine.
package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/reelcut/internal/toolpath"
	"github.com/mgpai22/reelcut/internal/toolrun"
)

// ErrVoiceNotConfigured means no voice model path is set. A setup problem,
// not a per-request one.
var ErrVoiceNotConfigured = errors.New("voice model not configured")

const synthTimeout = 5 * time.Minute

// Synthesizer produces a waveform file from text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outDir string) (string, error)
}

// Piper invokes the piper TTS engine with a configured voice model.
type Piper struct {
	Bin        string // empty = resolve at call time
	VoiceModel string
	SampleRate int // 0 = model default
}

func NewPiper(voiceModel string, sampleRate int) *Piper {
	return &Piper{VoiceModel: voiceModel, SampleRate: sampleRate}
}

// Synthesize writes narration audio for text into outDir and returns its
// path.
func (p *Piper) Synthesize(ctx context.Context, text, outDir string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("narration text is empty")
	}
	if p.VoiceModel == "" {
		return "", fmt.Errorf("%w: set REELCUT_PIPER_VOICE to an onnx voice path", ErrVoiceNotConfigured)
	}
	if _, err := os.Stat(p.VoiceModel); err != nil {
		return "", fmt.Errorf("%w: voice not found: %s", ErrVoiceNotConfigured, p.VoiceModel)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(outDir, fmt.Sprintf("narration_%d.wav", time.Now().UnixNano()))

	bin := p.Bin
	if bin == "" {
		bin = toolpath.Resolve(toolpath.Piper)
	}

	args := []string{
		"--model", p.VoiceModel,
		"--output_file", outPath,
	}
	if p.SampleRate > 0 {
		args = append(args, "--sample-rate", fmt.Sprintf("%d", p.SampleRate))
	}

	_, err := toolrun.Run(ctx, toolrun.Spec{
		Bin:     bin,
		Args:    args,
		Stdin:   strings.NewReader(text),
		Timeout: synthTimeout,
	})
	if err != nil {
		if errors.Is(err, toolrun.ErrToolNotInstalled) {
			return "", fmt.Errorf("%w: install piper or set REELCUT_PIPER_PATH", err)
		}
		return "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("speech synthesis produced no output: %s", outPath)
	}
	return outPath, nil
}
