package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// createSkipCommand creates the skip command.
func createSkipCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Skip the next check in this project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setupCommand(cmd)
			if err != nil {
				return err
			}
			if err := a.SkipNext(ctx); err != nil {
				return fmt.Errorf("failed to set skip flag: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Next check will be skipped")
			return nil
		},
	}
}

func createEnableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Enable checks in this project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setupCommand(cmd)
			if err != nil {
				return err
			}
			if err := a.SetEnabled(ctx, true); err != nil {
				return fmt.Errorf("failed to enable checks: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Checks enabled")
			return nil
		},
	}
}

func createDisableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable checks in this project until enabled again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setupCommand(cmd)
			if err != nil {
				return err
			}
			if err := a.SetEnabled(ctx, false); err != nil {
				return fmt.Errorf("failed to disable checks: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Checks disabled")
			return nil
		},
	}
}

// createStatusCommand creates the status command.
func createStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show check status for this project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setupCommand(cmd)
			if err != nil {
				return err
			}

			status, err := a.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Project: %s\n", a.ProjectRoot())
			if status.Enabled {
				_, _ = fmt.Fprintln(out, "Checks: enabled")
			} else {
				_, _ = fmt.Fprintln(out, "Checks: disabled")
			}
			if status.SkipNext {
				_, _ = fmt.Fprintln(out, "Next check: skipped")
			}
			if status.LastRun != nil {
				_, _ = fmt.Fprintf(out, "Last run: %s\n", formatRun(status.LastRun.CreatedAt,
					status.LastRun.Source, status.LastRun.ViolationCount, status.LastRun.CheckedLines))
			}
			return nil
		},
	}
}

// createHistoryCommand creates the history command.
func createHistoryCommand() *cobra.Command {
	var (
		limit   int
		details bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent check runs for this project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, a, err := setupCommand(cmd)
			if err != nil {
				return err
			}

			runs, err := a.History(ctx, limit, details)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			for _, run := range runs {
				_, _ = fmt.Fprintf(out, "#%d %s\n", run.ID,
					formatRun(run.CreatedAt, run.Source, run.ViolationCount, run.CheckedLines))
				for _, v := range run.Violations {
					_, _ = fmt.Fprintf(out, "    %s:%d: [%s] %s\n", v.Path, v.Line, v.Checker, v.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVarP(&details, "details", "d", false, "Include violations of each run")
	return cmd
}

func formatRun(at time.Time, source string, violations, lines int) string {
	return fmt.Sprintf("%s  %-14s %d violation(s) in %d line(s)",
		at.Local().Format(time.DateTime), source, violations, lines)
}
