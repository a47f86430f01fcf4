// Package prompt provides the interactive line tester used by `checks test -i`.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

var ErrCancelled = errors.New("cancelled by user")

// quitCommands end an interactive loop
var quitCommands = []string{":q", ":quit", "exit"}

// Prompter interface wraps basic prompting functionality for testability
type Prompter interface {
	Prompt(string) (string, error)
	Close() error
}

// LinerPrompter wraps liner.State to implement Prompter interface
type LinerPrompter struct {
	*liner.State
}

// NewLinerPrompter creates a new liner-based prompter with quit command completion
func NewLinerPrompter() *LinerPrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, cmd := range quitCommands {
			if input != "" && strings.HasPrefix(cmd, input) {
				out = append(out, cmd)
			}
		}
		return out
	})
	return &LinerPrompter{State: line}
}

// TextInputWithPrompter reads one line with a colored prompt
func TextInputWithPrompter(prompter Prompter, prompt string) (string, error) {
	result, err := prompter.Prompt(color.CyanString(prompt + " "))
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("text input failed: %w", err)
	}
	return result, nil
}

// Loop reads lines until a quit command, Ctrl+C or EOF and writes what
// evaluate returns for each. Blank lines are ignored. An evaluate error is
// printed and the loop continues.
func Loop(prompter Prompter, out io.Writer, prompt string, evaluate func(line string) (string, error)) error {
	for {
		line, err := TextInputWithPrompter(prompter, prompt)
		if errors.Is(err, ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isQuit(trimmed) {
			return nil
		}

		if lp, ok := prompter.(*LinerPrompter); ok {
			lp.AppendHistory(line)
		}

		result, err := evaluate(line)
		if err != nil {
			_, _ = fmt.Fprintln(out, color.RedString("error: %v", err))
			continue
		}
		if _, err := fmt.Fprintln(out, result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
}

func isQuit(line string) bool {
	for _, cmd := range quitCommands {
		if line == cmd {
			return true
		}
	}
	return false
}
