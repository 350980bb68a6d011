package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// extractText validates UTF-8 and normalizes whitespace for plain text input.
func extractText(fileBytes []byte) (string, error) {
	if !utf8.Valid(fileBytes) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return normalizeWhitespace(string(fileBytes)), nil
}

// normalizeWhitespace unifies line endings, trims trailing space on each
// line, and collapses runs of blank lines down to a single blank line.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
