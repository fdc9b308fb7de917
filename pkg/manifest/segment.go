package manifest

import (
	"strings"
	"unicode"
)

// minBlockChars is the minimum number of non-whitespace characters a
// candidate block must hold to be kept. Shorter accumulations are
// trailing noise and are discarded without a warning.
const minBlockChars = 20

// splitServiceBlocks partitions raw manifest text into candidate
// service blocks. A line opens a new record exactly when it carries
// both an action keyword and a compact date token; either alone also
// appears in body text (flight dates, comment dates) and must not
// split blocks.
func splitServiceBlocks(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var blocks []string
	var current []string

	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)

		if isNoiseLine(line) {
			continue
		}

		if isRecordStart(line) && len(current) > 0 {
			if block := strings.Join(current, "\n"); nonWhitespaceLen(block) >= minBlockChars {
				blocks = append(blocks, block)
			}
			current = current[:0]
		}

		if line != "" {
			current = append(current, line)
		}
	}

	if len(current) > 0 {
		if block := strings.Join(current, "\n"); nonWhitespaceLen(block) >= minBlockChars {
			blocks = append(blocks, block)
		}
	}

	return blocks
}

// isNoiseLine recognizes document-level header/footer boilerplate that
// never belongs to any service block.
func isNoiseLine(line string) bool {
	switch {
	case strings.Contains(line, "CLASSIC VACATIONS"),
		strings.Contains(line, "Report Generation Date"),
		strings.Contains(line, "From: Classic"),
		strings.Contains(line, "To: W3"),
		strings.Contains(line, "Email Address"),
		strings.Contains(line, "Please send your response"):
		return true
	case strings.HasPrefix(line, "*") && len(line) > 40:
		// Long asterisk rule lines separate report sections.
		return true
	}
	return false
}

// isRecordStart reports whether the line opens a new service record:
// an action keyword and a date token on the same line.
func isRecordStart(line string) bool {
	if !datePattern.MatchString(line) {
		return false
	}
	for _, ap := range actionPatterns {
		if ap.pattern.MatchString(line) {
			return true
		}
	}
	return false
}

func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
