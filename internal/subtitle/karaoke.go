package subtitle

import (
	"fmt"
	"strings"
	"time"

	"github.com/mgpai22/reelcut/internal/transcript"
)

// Line-grouping thresholds for word-aligned scripts. A silence longer than
// the pause gap starts a new display line, as does exceeding the character
// budget.
const (
	pauseGap   = 350 * time.Millisecond
	charBudget = 40

	// linePad extends each line's display window slightly past its last word
	// to avoid perceptible flicker at line boundaries.
	linePad = 20 * time.Millisecond
)

type scriptLine struct {
	start time.Duration
	end   time.Duration
	words []transcript.Word
}

// BuildKaraoke converts word timings into a styled script whose words
// highlight progressively in sync with speech. Empty input yields a valid
// header-only document.
func BuildKaraoke(words []transcript.Word, style Style) string {
	var sb strings.Builder
	sb.WriteString(style.header())

	for _, line := range groupWords(words) {
		writeKaraokeLine(&sb, line)
	}

	return sb.String()
}

func groupWords(words []transcript.Word) []scriptLine {
	var lines []scriptLine
	var cur scriptLine
	curLen := 0

	flush := func() {
		if len(cur.words) == 0 {
			return
		}
		cur.end = cur.words[len(cur.words)-1].End + linePad
		lines = append(lines, cur)
		cur = scriptLine{}
		curLen = 0
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}

		if len(cur.words) > 0 {
			gap := w.Start - cur.words[len(cur.words)-1].End
			if gap > pauseGap || curLen+1+len([]rune(text)) > charBudget {
				flush()
			}
		}

		if len(cur.words) == 0 {
			cur.start = w.Start
		} else {
			curLen++ // separating space
		}
		cur.words = append(cur.words, transcript.Word{Start: w.Start, End: w.End, Text: text})
		curLen += len([]rune(text))
	}
	flush()

	return lines
}

func writeKaraokeLine(sb *strings.Builder, line scriptLine) {
	fmt.Fprintf(sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,",
		formatScriptTime(line.start), formatScriptTime(line.end))

	for i, w := range line.words {
		// per-word highlight duration rounded to integer centiseconds,
		// floored at 1 so no word flashes by with a zero-length highlight
		durCS := int((w.End - w.Start + 5*time.Millisecond) / (10 * time.Millisecond))
		if durCS < 1 {
			durCS = 1
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(sb, "{\\k%d}%s", durCS, escapeScriptText(w.Text))
	}
	sb.WriteString("\n")
}
