// Package report renders run results and maps them to exit codes.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/wizzomafizzo/precommit/internal/runner"
)

// Exit codes
const (
	ExitClean      = 0
	ExitViolations = 1
	ExitErrors     = 2
)

// Format names accepted by Write
const (
	FormatText = "text"
	FormatJSON = "json"
)

type palette struct {
	location *color.Color
	checker  *color.Color
	failure  *color.Color
	summary  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		location: color.New(color.Bold),
		checker:  color.New(color.FgYellow),
		failure:  color.New(color.FgRed),
		summary:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.location, p.checker, p.failure, p.summary} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text writes one line per violation followed by a summary. A clean result
// writes nothing.
func Text(w io.Writer, result runner.Result, colored bool) error {
	if result.Clean() {
		return nil
	}

	p := newPalette(colored)
	for _, v := range result.Violations {
		_, err := fmt.Fprintf(w, "%s %s %s\n",
			p.location.Sprintf("%s:%d:", v.Path, v.Line),
			p.checker.Sprintf("[%s]", v.Checker),
			v.Message)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	for _, e := range result.Errors {
		if _, err := fmt.Fprintln(w, p.failure.Sprint(e.Error())); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w, p.summary.Sprint(Summary(result))); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Summary describes a result in one line
func Summary(result runner.Result) string {
	s := fmt.Sprintf("%s in %s",
		plural(len(result.Violations), "violation"),
		plural(result.CheckedLines, "checked line"))
	if len(result.Errors) > 0 {
		s += fmt.Sprintf(", %s", plural(len(result.Errors), "checker error"))
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

type jsonReport struct {
	Violations   any `json:"violations"`
	CheckedLines int `json:"checked_lines"`
	Errors       int `json:"errors"`
}

// JSON writes the result as a single JSON object
func JSON(w io.Writer, result runner.Result) error {
	out := jsonReport{
		Violations:   result.Violations,
		CheckedLines: result.CheckedLines,
		Errors:       len(result.Errors),
	}
	if result.Violations == nil {
		out.Violations = []struct{}{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Write renders result in the named format
func Write(w io.Writer, format string, result runner.Result, colored bool) error {
	switch format {
	case "", FormatText:
		return Text(w, result, colored)
	case FormatJSON:
		return JSON(w, result)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// ExitCode maps a result to the process exit status
func ExitCode(result runner.Result) int {
	switch {
	case len(result.Violations) > 0:
		return ExitViolations
	case len(result.Errors) > 0:
		return ExitErrors
	default:
		return ExitClean
	}
}
