// Package subtitle builds and repairs the subtitle documents the pipeline
// burns onto clips: strict SRT blocks from unreliable AI output, and styled
// ASS scripts with per-word karaoke timing.
package subtitle

import (
	"fmt"
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// Style is the orientation-dependent preset for styled scripts.
type Style struct {
	PlayResX int
	PlayResY int
	FontName string
	FontSize int
	MarginV  int
}

// VerticalStyle targets 9:16 short-form output.
func VerticalStyle() Style {
	return Style{
		PlayResX: 1080,
		PlayResY: 1920,
		FontName: "Arial",
		FontSize: 72,
		MarginV:  280,
	}
}

// HorizontalStyle targets 16:9 widescreen output.
func HorizontalStyle() Style {
	return Style{
		PlayResX: 1920,
		PlayResY: 1080,
		FontName: "Arial",
		FontSize: 48,
		MarginV:  60,
	}
}

// ScriptHeaderMarker opens every styled script; burn-in sniffs it to pick a
// file extension.
const ScriptHeaderMarker = "[Script Info]"

// header renders the script preamble: a structurally valid, zero-event
// document on its own.
func (s Style) header() string {
	return fmt.Sprintf(`[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,&H00FFFFFF,&H00FFD200,&H00000000,&H64000000,1,0,0,0,100,100,0,0,1,4,1,2,40,40,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, s.PlayResX, s.PlayResY, s.FontName, s.FontSize, s.MarginV)
}


// FormatSRTTime renders HH:MM:SS,mmm.
func FormatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// formatScriptTime renders the styled-script dialect's H:MM:SS.CC grammar
// (single-digit hour, centiseconds).
func formatScriptTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// escapeScriptText keeps AI or ASR text from being parsed as override tags.
func escapeScriptText(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '{':
			out = append(out, '(')
		case '}':
			out = append(out, ')')
		case '\\':
			// drop, a lone backslash starts an override sequence
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
