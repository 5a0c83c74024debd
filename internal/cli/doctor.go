package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelcut/internal/toolpath"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external tools and configuration",
	Long: `Report where each external tool resolves to and whether required
model paths are configured. Useful before the first run on a new machine.`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	tools := []struct {
		tool     toolpath.Tool
		required bool
	}{
		{toolpath.FFmpeg, true},
		{toolpath.FFprobe, true},
		{toolpath.Whisper, false},
		{toolpath.Piper, false},
	}

	for _, t := range tools {
		status := "ok"
		if !toolpath.Found(t.tool) {
			if t.required {
				status = "MISSING (required)"
			} else {
				status = "missing (optional)"
			}
		}
		fmt.Printf("%-10s %-22s %s\n", t.tool, status, toolpath.Resolve(t.tool))
	}

	models := []struct {
		env  string
		desc string
	}{
		{"REELCUT_WHISPER_MODEL", "whisper.cpp ggml model (word-aligned subtitles)"},
		{"REELCUT_PIPER_VOICE", "piper voice model (narration)"},
	}
	for _, m := range models {
		val := os.Getenv(m.env)
		if val == "" {
			fmt.Printf("%-22s unset  (%s)\n", m.env, m.desc)
			continue
		}
		if _, err := os.Stat(val); err != nil {
			fmt.Printf("%-22s %s  (file missing)\n", m.env, val)
			continue
		}
		fmt.Printf("%-22s %s\n", m.env, val)
	}
}
