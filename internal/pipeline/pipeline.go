// Package pipeline orchestrates one source video's journey into subtitled
// clips: probe, propose, validate, then per-segment cut / transcribe /
// subtitle / burn-in. Each segment is an independent run over distinct temp
// names, so segments process concurrently without shared state.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/reelcut/internal/burnin"
	"github.com/mgpai22/reelcut/internal/cutter"
	"github.com/mgpai22/reelcut/internal/logging"
	"github.com/mgpai22/reelcut/internal/oracle"
	"github.com/mgpai22/reelcut/internal/probe"
	"github.com/mgpai22/reelcut/internal/segment"
	"github.com/mgpai22/reelcut/internal/subtitle"
	"github.com/mgpai22/reelcut/internal/toolrun"
	"github.com/mgpai22/reelcut/internal/transcript"
)

// Config drives one pipeline run.
type Config struct {
	SourcePath  string
	OutDir      string
	Orientation cutter.Orientation
	Language    string

	// Concurrency bounds how many segments process in parallel. 0 = 2.
	Concurrency int

	// Oracle is optional; without it segmentation falls back to uniform
	// tiling and the subtitle chain skips AI-generated SRT.
	Oracle oracle.Client

	// Transcript is optional; without it (or when unconfigured) subtitles
	// come from the oracle or are skipped.
	Transcript *transcript.Extractor

	KeepSubtitleFiles bool

	Logger *logging.Logger
}

func (c Config) Validate() error {
	if c.SourcePath == "" {
		return errors.New("source path is empty")
	}
	if _, err := os.Stat(c.SourcePath); err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if c.OutDir == "" {
		return errors.New("output directory is empty")
	}
	switch c.Orientation {
	case cutter.Vertical, cutter.Horizontal:
	default:
		return fmt.Errorf("unknown orientation: %q", c.Orientation)
	}
	return nil
}

// Artifact is the durable output of one segment's processing.
type Artifact struct {
	OutputPath    string        `json:"file"`
	Orientation   string        `json:"orientation"`
	StartSec      float64       `json:"start_sec"`
	EndSec        float64       `json:"end_sec"`
	Reason        string        `json:"reason"`
	SubtitlesText string        `json:"subtitles,omitempty"`
	Elapsed       time.Duration `json:"-"`
}

// Result collects a full run's artifacts.
type Result struct {
	RunDir       string
	Artifacts    []Artifact
	ManifestPath string
}

// Run executes the pipeline for every validated segment of the source.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}

	runDir := buildRunDir(cfg.OutDir, cfg.SourcePath)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	duration, err := probe.Duration(ctx, cfg.SourcePath)
	if err != nil {
		// a probe failure is systemic: nothing downstream can bound segments
		return nil, err
	}
	log.Infow("probed source", "path", cfg.SourcePath, "duration", duration)

	segments := selectSegments(ctx, cfg, duration, log)
	if len(segments) == 0 {
		log.Warnw("source too short for any clip", "duration", duration)
		return &Result{RunDir: runDir}, nil
	}
	log.Infow("segments selected", "count", len(segments))

	artifacts, err := processSegments(ctx, cfg, segments, runDir, log)
	if err != nil {
		return nil, err
	}

	manifestPath, err := writeManifest(runDir, cfg.SourcePath, artifacts)
	if err != nil {
		return nil, err
	}
	log.Infow("manifest written", "path", manifestPath, "clips", len(artifacts))

	return &Result{RunDir: runDir, Artifacts: artifacts, ManifestPath: manifestPath}, nil
}

// selectSegments asks the oracle for proposals and validates them. An
// unparsable oracle response degrades to uniform tiling instead of aborting:
// the gate guarantees well-formed segments either way.
func selectSegments(ctx context.Context, cfg Config, duration time.Duration, log *logging.Logger) []segment.Segment {
	var proposals []segment.Segment
	if cfg.Oracle != nil {
		src := oracle.Source{
			MediaPath:  cfg.SourcePath,
			Transcript: sourceTranscript(ctx, cfg, log),
			Duration:   duration,
		}
		got, err := cfg.Oracle.ProposeSegments(ctx, src)
		switch {
		case err == nil:
			proposals = got
		case errors.Is(err, oracle.ErrUnparsableResponse):
			log.Warnw("oracle response unusable, falling back to uniform segments", "err", err)
		default:
			log.Warnw("oracle unavailable, falling back to uniform segments", "err", err)
		}
	}
	return segment.Validate(proposals, duration)
}

// sourceTranscript produces a whole-source transcript for text-only oracle
// providers. Best effort: media-capable providers ignore it, and a failure
// here only narrows which providers can propose.
func sourceTranscript(ctx context.Context, cfg Config, log *logging.Logger) string {
	if cfg.Transcript == nil || !oracle.NeedsTranscript(cfg.Oracle) {
		return ""
	}
	srt, err := cfg.Transcript.ExtractSRT(ctx, cfg.SourcePath, cfg.Language, cfg.OutDir)
	if err != nil {
		log.Debugw("source transcript unavailable", "err", err)
		return ""
	}
	return srt
}

func processSegments(ctx context.Context, cfg Config, segments []segment.Segment, runDir string, log *logging.Logger) ([]Artifact, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	var (
		mu        sync.Mutex
		artifacts []Artifact
		firstErr  error
		wg        sync.WaitGroup
	)
	sem := make(chan struct{}, concurrency)

	for i, seg := range segments {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		wg.Add(1)
		go func(idx int, seg segment.Segment) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			artifact, err := processOne(ctx, cfg, seg, runDir, log)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("segment %d %s: %w", idx+1, seg, err)
				}
				return
			}
			artifacts = append(artifacts, *artifact)
		}(i, seg)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].StartSec < artifacts[j].StartSec
	})
	return artifacts, nil
}

// processOne runs the sequential cut -> subtitle -> burn-in chain for one
// segment. Stages block in order: each stage's output file is the next
// stage's input.
func processOne(ctx context.Context, cfg Config, seg segment.Segment, runDir string, log *logging.Logger) (*Artifact, error) {
	started := time.Now()

	clipPath, err := cutter.Cut(ctx, cfg.SourcePath, seg.Start, seg.End, cfg.Orientation, runDir)
	if err != nil {
		return nil, err
	}
	log.Debugw("cut complete", "segment", seg.String(), "clip", clipPath)

	subtitles := buildSubtitles(ctx, cfg, seg, clipPath, runDir, log)

	finalPath, err := burnin.Apply(clipPath, subtitles, runDir, burnin.Options{
		KeepSubtitleFile: cfg.KeepSubtitleFiles,
	})
	if err != nil {
		return nil, err
	}

	return &Artifact{
		OutputPath:    finalPath,
		Orientation:   string(cfg.Orientation),
		StartSec:      seg.Start.Seconds(),
		EndSec:        seg.End.Seconds(),
		Reason:        seg.Reason,
		SubtitlesText: subtitles,
		Elapsed:       time.Since(started),
	}, nil
}

// buildSubtitles walks the strategy chain: word-aligned karaoke from the
// local speech engine, then the engine's block-level SRT, then AI-generated
// SRT, then none. Only missing tools abort; every content failure degrades.
func buildSubtitles(ctx context.Context, cfg Config, seg segment.Segment, clipPath, runDir string, log *logging.Logger) string {
	style := subtitle.HorizontalStyle()
	if cfg.Orientation == cutter.Vertical {
		style = subtitle.VerticalStyle()
	}

	// raw whisper output that failed normalization still gives text-only
	// oracle providers something to estimate timecodes from
	var clipTranscript string

	if cfg.Transcript != nil {
		words, err := cfg.Transcript.ExtractWords(ctx, clipPath, cfg.Language, runDir)
		if err == nil && len(words) > 0 {
			return subtitle.BuildKaraoke(words, style)
		}
		logSubtitleFallback(log, "word-aligned extraction", err)

		if err == nil || !errors.Is(err, transcript.ErrEngineNotConfigured) {
			srt, err := cfg.Transcript.ExtractSRT(ctx, clipPath, cfg.Language, runDir)
			if err == nil {
				if normalized := subtitle.Normalize(srt); normalized != "" {
					return normalized
				}
				clipTranscript = srt
			}
			logSubtitleFallback(log, "speech engine srt", err)
		}
	}

	if cfg.Oracle != nil {
		raw, err := cfg.Oracle.GenerateSRT(ctx, oracle.Source{
			MediaPath:  clipPath,
			Transcript: clipTranscript,
			Duration:   seg.Duration(),
		})
		if err == nil {
			if normalized := subtitle.Normalize(raw); normalized != "" {
				return normalized
			}
		}
		logSubtitleFallback(log, "oracle srt", err)
	}

	log.Warnw("no usable subtitles, burn-in skipped", "segment", seg.String())
	return ""
}

func logSubtitleFallback(log *logging.Logger, stage string, err error) {
	if err == nil {
		log.Debugw("subtitle strategy produced nothing, trying next", "stage", stage)
		return
	}
	if errors.Is(err, toolrun.ErrToolNotInstalled) {
		log.Warnw("subtitle strategy unavailable", "stage", stage, "err", err)
		return
	}
	log.Debugw("subtitle strategy failed, trying next", "stage", stage, "err", err)
}

type manifest struct {
	Source string     `json:"source"`
	Clips  []Artifact `json:"clips"`
}

func writeManifest(runDir, source string, artifacts []Artifact) (string, error) {
	b, err := json.MarshalIndent(manifest{Source: source, Clips: artifacts}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(runDir, "manifest.json")
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// buildRunDir keeps concurrent runs over the same source from colliding.
func buildRunDir(outRoot, sourcePath string) string {
	name := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	if name == "" {
		name = "source"
	}
	ts := time.Now().UTC().Format("20060102-150405")
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%d", name, ts, os.Getpid()))
}
