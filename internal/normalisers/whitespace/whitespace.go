// Package whitespace canonicalises line endings and runs of whitespace.
package whitespace

import (
	"regexp"
	"strings"
)

var (
	horizontalRun = regexp.MustCompile(`[ \t]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	lineEndings   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize converts CRLF and CR to LF, collapses runs of spaces and tabs to
// one space, collapses three or more newlines to two, and trims the result.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	text = lineEndings.Replace(text)
	text = horizontalRun.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
