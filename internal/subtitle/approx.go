package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// Approximate building covers narration with no native word alignment: only
// the synthesized audio's total duration and the word count are known.
const (
	minWordDuration  = 200 * time.Millisecond
	approxCharBudget = 42
)

// BuildApprox estimates a uniform per-word duration from the total narration
// span, packs words greedily into lines by character budget, and emits a
// styled script whose line windows follow the cumulative estimate. When the
// per-word floor engages the script runs past the nominal total rather than
// producing inverted or zero-length windows. Empty text yields a valid
// header-only document.
func BuildApprox(text string, total time.Duration, style Style) string {
	var sb strings.Builder
	sb.WriteString(style.header())

	words := strings.Fields(text)
	if len(words) == 0 {
		return sb.String()
	}

	perWord := total / time.Duration(len(words))
	if perWord < minWordDuration {
		perWord = minWordDuration
	}

	lineStartIdx := 0
	curLen := 0
	flush := func(endIdx int) {
		start := time.Duration(lineStartIdx) * perWord
		end := time.Duration(endIdx) * perWord
		// integer division can leave the cumulative estimate a hair short of
		// the narration end; pin the final window to it
		if endIdx == len(words) && end < total {
			end = total
		}
		line := strings.Join(words[lineStartIdx:endIdx], " ")
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatScriptTime(start), formatScriptTime(end), escapeScriptText(line))
		lineStartIdx = endIdx
		curLen = 0
	}

	for i, w := range words {
		wl := len([]rune(w))
		next := curLen + wl
		if curLen > 0 {
			next++
		}
		if curLen > 0 && next > approxCharBudget {
			flush(i)
			next = wl
		}
		curLen = next
	}
	flush(len(words))

	return sb.String()
}
