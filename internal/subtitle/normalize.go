package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

// AI-generated SRT is loosely formatted: code fences, unicode arrows, dotted
// or missing millisecond fields, stale indices. Normalize repairs all of that
// into a strict, reindexed document, or returns "" when the text contains no
// recognizable timecodes at all. An empty result means "skip burn-in", it is
// not an error.

var (
	fenceRe = regexp.MustCompile("^```")
	arrowRe = regexp.MustCompile(`\s*[-–—]{1,2}>\s*`)
	timeRe  = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})(?:[.,](\d{1,3}))?`)
	rangeRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}$`)
	indexRe = regexp.MustCompile(`^\d+$`)
)

// Normalize repairs raw subtitle text into strict SRT. Already-normalized
// input passes through unchanged (the operation is idempotent).
func Normalize(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	repaired := make([]string, 0, len(lines))
	sawRange := false
	for _, line := range lines {
		if fenceRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		line = repairLine(line)
		if rangeRe.MatchString(strings.TrimSpace(line)) {
			sawRange = true
		}
		repaired = append(repaired, line)
	}

	// no time-range-like substring anywhere: the AI produced prose, not
	// subtitles, and a partially-parsed document must never be emitted
	if !sawRange {
		return ""
	}

	var sb strings.Builder
	index := 1
	for _, block := range splitBlocks(repaired) {
		timeLine, text := extractBlock(block)
		if timeLine == "" || text == "" {
			// empty-text entries render as a visual glitch, drop them
			continue
		}
		fmt.Fprintf(&sb, "%d\n%s\n%s\n\n", index, timeLine, text)
		index++
	}

	if index == 1 {
		return ""
	}
	return sb.String()
}

// repairLine rewrites arrows and timecodes on a line that looks like a time
// range; other lines pass through untouched.
func repairLine(line string) string {
	if !timeRe.MatchString(line) {
		return line
	}
	line = arrowRe.ReplaceAllString(line, " --> ")
	return timeRe.ReplaceAllStringFunc(line, func(m string) string {
		parts := timeRe.FindStringSubmatch(m)
		hours := parts[1]
		if len(hours) < 2 {
			hours = "0" + hours
		}
		millis := parts[4]
		// fractional digits are right-padded: ".5" means 500ms
		for len(millis) < 3 {
			millis += "0"
		}
		return fmt.Sprintf("%s:%s:%s,%s", hours, parts[2], parts[3], millis)
	})
}

func splitBlocks(lines []string) [][]string {
	var blocks [][]string
	var cur []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

// extractBlock locates the first time-range line of a block, discards any
// pre-existing index line before it, and joins everything after it as text.
func extractBlock(block []string) (timeLine, text string) {
	rangeAt := -1
	for i, line := range block {
		trimmed := strings.TrimSpace(line)
		if rangeRe.MatchString(trimmed) {
			timeLine = trimmed
			rangeAt = i
			break
		}
		if indexRe.MatchString(trimmed) {
			continue
		}
	}
	if rangeAt == -1 {
		return "", ""
	}

	var textLines []string
	for _, line := range block[rangeAt+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		textLines = append(textLines, strings.TrimSpace(line))
	}
	return timeLine, strings.Join(textLines, "\n")
}
