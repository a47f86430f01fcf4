// Package diff extracts added lines from unified diff text.
package diff

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/wizzomafizzo/precommit/internal/checker"
)

var (
	ErrMalformedHunk = errors.New("malformed hunk header")
	ErrMalformedDiff = errors.New("malformed diff")
)

const devNull = "/dev/null"

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse reads a unified diff and returns every added line with its line
// number in the new file. Deleted files, binary files and combined merge
// diffs produce nothing.
func Parse(r io.Reader) ([]checker.Change, error) {
	text, gitHeaders, err := normalize(r)
	if err != nil {
		return nil, err
	}

	files, _, err := gitdiff.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDiff, err)
	}

	var changes []checker.Change
	for _, file := range files {
		if file.IsDelete || file.IsBinary || file.NewName == "" || file.NewName == devNull {
			continue
		}
		path := file.NewName
		if !gitHeaders {
			path = stripPrefix(path)
		}
		for _, frag := range file.TextFragments {
			changes = appendAdded(changes, path, frag)
		}
	}
	return changes, nil
}

func appendAdded(changes []checker.Change, path string, frag *gitdiff.TextFragment) []checker.Change {
	lineNo := int(frag.NewPosition)
	for _, line := range frag.Lines {
		if !line.New() {
			continue
		}
		if line.Op == gitdiff.OpAdd {
			changes = append(changes, checker.Change{
				Path:    path,
				Line:    lineNo,
				Content: strings.TrimSuffix(line.Line, "\n"),
			})
		}
		lineNo++
	}
	return changes
}

// normalize converts CRLF endings, drops combined diff sections and rejects
// hunk headers that cannot be parsed. It reports whether any git file headers
// were seen.
func normalize(r io.Reader) (text string, gitHeaders bool, err error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", false, fmt.Errorf("failed to read diff: %w", err)
	}
	text = strings.ReplaceAll(string(raw), "\r\n", "\n")

	var out strings.Builder
	out.Grow(len(text))

	combined := false
	for i, line := range strings.SplitAfter(text, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --cc "), strings.HasPrefix(line, "diff --combined "):
			combined = true
		case strings.HasPrefix(line, "diff --git "):
			combined = false
			gitHeaders = true
		}
		if combined {
			continue
		}

		if strings.HasPrefix(line, "@@") && !hunkHeader.MatchString(line) {
			return "", false, fmt.Errorf("line %d: %w: %q", i+1, ErrMalformedHunk, strings.TrimSuffix(line, "\n"))
		}
		out.WriteString(line)
	}
	return out.String(), gitHeaders, nil
}

// stripPrefix removes the a/ or b/ side prefix that plain unified diffs keep
// in their file names. Git headers are already stripped by the parser.
func stripPrefix(path string) string {
	for _, prefix := range []string{"b/", "a/"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			return rest
		}
	}
	return path
}

// Lines turns a whole file into changes, one per line, numbered from 1.
// Used when checking files directly rather than a diff.
func Lines(path, content string) []checker.Change {
	if content == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	changes := make([]checker.Change, 0, len(lines))
	for i, line := range lines {
		changes = append(changes, checker.Change{
			Path:    path,
			Line:    i + 1,
			Content: strings.TrimSuffix(line, "\r"),
		})
	}
	return changes
}
