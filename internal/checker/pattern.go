package checker

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// SuggestPattern turns a sample line into a pattern for a custom rule. The
// text is matched literally anywhere in a line, with any run of whitespace
// allowed where the sample has whitespace.
func SuggestPattern(sample string) string {
	fields := whitespaceRun.Split(strings.TrimSpace(sample), -1)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(fields, `\s+`)
}
