package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/cutter"
	"github.com/mgpai22/reelcut/internal/narrate"
	"github.com/mgpai22/reelcut/internal/synth"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate [text]",
	Short: "Render a narrated, subtitled video from text",
	Long: `Render a finished video from nothing but text: the text is spoken
by a local piper voice, subtitles with estimated timing are overlaid on a
solid-color background, and the result is written as a web-playable clip.

Examples:
  reelcut narrate "Five things nobody tells you about Go"
  reelcut narrate --file script.txt --orientation horizontal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNarrate,
}

func init() {
	rootCmd.AddCommand(narrateCmd)

	narrateCmd.Flags().
		String("orientation", "vertical", "Video orientation (vertical, horizontal)")
	narrateCmd.Flags().
		StringP("file", "f", "", "Read narration text from a file instead of the argument")
	narrateCmd.Flags().
		String("voice", "", "Path to a piper onnx voice model (or set REELCUT_PIPER_VOICE)")
	narrateCmd.Flags().
		Int("sample-rate", 0, "Synthesis sample rate override")
}

func runNarrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	textFile, _ := cmd.Flags().GetString("file")
	orientationStr, _ := cmd.Flags().GetString("orientation")
	voice, _ := cmd.Flags().GetString("voice")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	outDir, _ := cmd.Flags().GetString("output")

	var text string
	switch {
	case textFile != "":
		b, err := os.ReadFile(textFile)
		if err != nil {
			return fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(b)
	case len(args) == 1:
		text = args[0]
	default:
		return fmt.Errorf("narration text is required: pass it as an argument or via --file")
	}

	var orientation cutter.Orientation
	switch strings.ToLower(orientationStr) {
	case "vertical":
		orientation = cutter.Vertical
	case "horizontal":
		orientation = cutter.Horizontal
	default:
		return fmt.Errorf("unsupported orientation %q: use vertical or horizontal", orientationStr)
	}

	if voice == "" {
		voice = os.Getenv("REELCUT_PIPER_VOICE")
	}

	logger.Infow("Rendering narrated video",
		"words", len(strings.Fields(text)),
		"orientation", orientationStr,
		"output", outDir,
	)

	renderer := narrate.New(synth.NewPiper(voice, sampleRate))
	result, err := renderer.Render(ctx, text, orientation, outDir)
	if err != nil {
		return err
	}

	logger.Infow("Narration complete",
		"file", result.OutputPath,
		"duration", result.Duration.Round(100*time.Millisecond),
	)
	fmt.Println(result.OutputPath)
	return nil
}
