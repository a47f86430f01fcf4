package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/precommit/internal/app"
	"github.com/wizzomafizzo/precommit/internal/report"
)

var errFilesWithSource = errors.New("file arguments cannot be combined with --diff or --commit")

type checkFlags struct {
	diff      string
	commit    string
	format    string
	checks    []string
	noColor   bool
	noHistory bool
}

// createCheckCommand creates the check command.
func createCheckCommand() *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check staged changes",
		Long: `Check the lines added by the staged changes.

With --diff a unified diff is read from a file or stdin (-), with --commit the
lines a commit added are checked, and with file arguments every line of each
file is checked. Exits 1 when violations are found and 2 when a checker failed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckCommand(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.diff, "diff", "", "Read a unified diff from a file, or - for stdin")
	cmd.Flags().StringVar(&flags.commit, "commit", "", "Check the lines added by a commit (e.g. HEAD)")
	cmd.Flags().StringVar(&flags.format, "format", report.FormatText, "Output format: text or json")
	cmd.Flags().StringSliceVar(&flags.checks, "checks", nil, "Run only these checks")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run")
	cmd.MarkFlagsMutuallyExclusive("diff", "commit")

	return cmd
}

func runCheckCommand(cmd *cobra.Command, args []string, flags checkFlags) error {
	if flags.format != report.FormatText && flags.format != report.FormatJSON {
		return fmt.Errorf("unknown format %q", flags.format)
	}

	ctx, a, err := setupCommand(cmd)
	if err != nil {
		return err
	}

	src, closeSrc, err := selectSource(cmd, a, args, flags)
	if err != nil {
		return err
	}
	defer closeSrc()

	outcome, err := a.Check(ctx, src, app.CheckOptions{
		Checks:    flags.checks,
		NoHistory: flags.noHistory,
	})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if outcome.Skipped {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Checks skipped: %s\n", outcome.SkipReason)
		return nil
	}

	colored := !flags.noColor && !color.NoColor
	if err := report.Write(cmd.OutOrStdout(), flags.format, outcome.Result, colored); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if code := report.ExitCode(outcome.Result); code != report.ExitClean {
		return &ExitError{Code: code, Message: report.Summary(outcome.Result)}
	}
	return nil
}

// selectSource picks the change source from the flags. The returned func
// releases any file opened for --diff.
func selectSource(cmd *cobra.Command, a *app.App, args []string, flags checkFlags) (app.Source, func(), error) {
	noop := func() {}

	if len(args) > 0 && (flags.diff != "" || flags.commit != "") {
		return nil, noop, errFilesWithSource
	}

	switch {
	case flags.diff == "-":
		return app.DiffSource{Reader: cmd.InOrStdin(), Label: "-"}, noop, nil
	case flags.diff != "":
		f, err := a.Fs().Open(flags.diff)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open diff: %w", err)
		}
		return app.DiffSource{Reader: f, Label: flags.diff}, func() { _ = f.Close() }, nil
	case flags.commit != "":
		return app.CommitSource{Dir: a.ProjectRoot(), Rev: flags.commit}, noop, nil
	case len(args) > 0:
		dir, _ := cmd.Flags().GetString("dir")
		return app.FileSource{Fs: a.Fs(), Dir: dir, Paths: args}, noop, nil
	default:
		return app.StagedSource{Dir: a.ProjectRoot()}, noop, nil
	}
}
