package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/precommit/internal/app"
	"github.com/wizzomafizzo/precommit/internal/checker"
	"github.com/wizzomafizzo/precommit/internal/prompt"
)

var errLineRequired = errors.New("a line to test is required (or use -i)")

// createChecksCommand lists the available checks
func createChecksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List available checks",
		Long:  "List built-in checks and custom rules. Enabled checks are marked with *.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := createAppFromCommand(cmd)
			if err != nil {
				return err
			}
			output, err := listChecks(a)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.AddCommand(createChecksTestCommand(), createChecksPatternCommand())
	return cmd
}

func listChecks(a *app.App) (string, error) {
	cfg, err := a.LoadConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	enabled := cfg.EnabledNames(nil)

	type row struct{ name, message string }
	rows := make([]row, 0, len(checker.Builtins())+len(cfg.Rules))
	for _, r := range checker.Builtins() {
		rows = append(rows, row{r.Name(), r.Message()})
	}
	for _, r := range cfg.Rules {
		rows = append(rows, row{r.Name, r.Message})
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r.name))
	}

	var b strings.Builder
	for _, r := range rows {
		marker := " "
		if slices.Contains(enabled, r.name) {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %-*s  %s\n", marker, width, r.name, r.message)
	}
	return b.String(), nil
}

// createChecksTestCommand evaluates lines against the enabled checks
func createChecksTestCommand() *cobra.Command {
	var (
		path        string
		checks      []string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "test [line]",
		Short: "Test a line against the enabled checks",
		Long: `Test a line against the enabled checks as if it were added to --path.

With -i lines are read interactively until :q, Ctrl+C or EOF.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive && len(args) == 0 {
				return errLineRequired
			}

			ctx, a, err := setupCommand(cmd)
			if err != nil {
				return err
			}

			if interactive {
				p := prompt.NewLinerPrompter()
				defer func() { _ = p.Close() }()
				return prompt.Loop(p, cmd.OutOrStdout(), "line>", func(line string) (string, error) {
					return evaluateLine(ctx, a, line, path, checks)
				})
			}

			result, err := evaluateLine(ctx, a, strings.Join(args, " "), path, checks)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "example_spec.rb", "File path the line is treated as coming from")
	cmd.Flags().StringSliceVar(&checks, "checks", nil, "Run only these checks")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Test lines interactively")
	return cmd
}

func evaluateLine(ctx context.Context, a *app.App, line, path string, checks []string) (string, error) {
	violations, err := a.TestLine(ctx, line, path, checks)
	if err != nil {
		return "", fmt.Errorf("failed to test line: %w", err)
	}
	return formatLineResult(violations), nil
}

func formatLineResult(violations []checker.Violation) string {
	if len(violations) == 0 {
		return "No violations"
	}
	var b strings.Builder
	for i, v := range violations {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] %s", v.Checker, v.Message)
	}
	return b.String()
}

// createChecksPatternCommand suggests a match pattern for a custom rule
func createChecksPatternCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pattern <sample>",
		Short: "Suggest a match pattern for a custom rule from a sample line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), checker.SuggestPattern(strings.Join(args, " ")))
			return nil
		},
	}
}
