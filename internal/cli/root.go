package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reelcut",
	Short: "Cut subtitled, social-ready clips from long videos",
	Long: `Reelcut turns a long source video into short subtitled clips:
an AI model proposes the most engaging segments, ffmpeg cuts and reframes
them, a local speech engine produces word-level subtitle timing, and the
subtitles are burned into the final clips.

It can also render a narrated video from nothing but text.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	_ = godotenv.Load() // best-effort: load .env if present
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringP("output", "o", "out", "Output directory")
}
