package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/cutter"
	"github.com/mgpai22/reelcut/internal/oracle"
	"github.com/mgpai22/reelcut/internal/pipeline"
	"github.com/mgpai22/reelcut/internal/transcript"
)

var processCmd = &cobra.Command{
	Use:   "process [video_file]",
	Short: "Cut, subtitle and finalize clips from a video",
	Long: `Process a source video end to end: probe its duration, ask the
configured AI provider for viral segment proposals (falling back to uniform
90-second windows), cut each validated segment, generate karaoke-style
subtitles from a local whisper.cpp install, and burn them in.

Examples:
  reelcut process video.mp4
  reelcut process video.mp4 --orientation horizontal
  reelcut process video.mp4 --provider anthropic --language de`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().
		String("orientation", "vertical", "Clip orientation (vertical, horizontal)")
	processCmd.Flags().
		StringP("provider", "p", "gemini", "AI provider for segment proposals (gemini, openai, anthropic)")
	processCmd.Flags().
		StringP("api-key", "k", "", "AI provider API key (or set the provider's env var)")
	processCmd.Flags().
		String("model", "", "AI model override")
	processCmd.Flags().
		StringP("language", "l", "", "Spoken language hint for transcription (e.g. en, es)")
	processCmd.Flags().
		String("whisper-model", "", "Path to a whisper.cpp ggml model (or set REELCUT_WHISPER_MODEL)")
	processCmd.Flags().
		Int("concurrency", 2, "Number of segments to process in parallel")
	processCmd.Flags().
		Bool("keep-subtitles", false, "Keep intermediate subtitle files for debugging")
	processCmd.Flags().
		Bool("no-oracle", false, "Skip AI proposals and use uniform segmentation only")
}

func runProcess(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", sourcePath)
	}
	if !isVideoFile(sourcePath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(sourcePath))
	}

	orientationStr, _ := cmd.Flags().GetString("orientation")
	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	language, _ := cmd.Flags().GetString("language")
	whisperModel, _ := cmd.Flags().GetString("whisper-model")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	keepSubs, _ := cmd.Flags().GetBool("keep-subtitles")
	noOracle, _ := cmd.Flags().GetBool("no-oracle")
	outDir, _ := cmd.Flags().GetString("output")

	var orientation cutter.Orientation
	switch strings.ToLower(orientationStr) {
	case "vertical":
		orientation = cutter.Vertical
	case "horizontal":
		orientation = cutter.Horizontal
	default:
		return fmt.Errorf("unsupported orientation %q: use vertical or horizontal", orientationStr)
	}

	var client oracle.Client
	if !noOracle {
		provider := oracle.Provider(strings.ToLower(providerStr))
		if apiKey == "" {
			apiKey = os.Getenv(apiKeyEnv(provider))
		}
		if apiKey == "" {
			return fmt.Errorf("API key is required: use --api-key, set %s, or pass --no-oracle", apiKeyEnv(provider))
		}
		var err error
		client, err = oracle.Factory(ctx, provider, apiKey, model)
		if err != nil {
			return err
		}
	}

	if whisperModel == "" {
		whisperModel = os.Getenv("REELCUT_WHISPER_MODEL")
	}

	logger.Infow("Starting clip processing",
		"input", sourcePath,
		"output", outDir,
		"orientation", orientationStr,
		"provider", providerStr,
		"concurrency", concurrency,
	)

	started := time.Now()
	result, err := pipeline.Run(ctx, pipeline.Config{
		SourcePath:        sourcePath,
		OutDir:            outDir,
		Orientation:       orientation,
		Language:          language,
		Concurrency:       concurrency,
		Oracle:            client,
		Transcript:        transcript.New(whisperModel),
		KeepSubtitleFiles: keepSubs,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	logger.Infow("Processing complete",
		"clips", len(result.Artifacts),
		"dir", result.RunDir,
		"elapsed", time.Since(started).Round(time.Second),
	)
	for _, a := range result.Artifacts {
		fmt.Printf("%s  (%.0fs-%.0fs)  %s\n", a.OutputPath, a.StartSec, a.EndSec, a.Reason)
	}
	return nil
}

func apiKeyEnv(p oracle.Provider) string {
	switch p {
	case oracle.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case oracle.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// checks if the file is a video based on extension
func isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}
