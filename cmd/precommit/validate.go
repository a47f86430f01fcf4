package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/precommit/internal/config"
)

// createValidateCommand creates the validate command.
func createValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long:  "Load the configuration file, compile custom rules and report the enabled checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := createAppFromCommand(cmd)
			if err != nil {
				return err
			}

			cfg, err := a.ValidateConfig()
			if errors.Is(err, config.ErrConfigNotFound) {
				printStarterConfig(cmd, a.ConfigPath())
			}
			if err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\nEnabled checks: %s\n",
				a.ConfigPath(), strings.Join(cfg.EnabledNames(nil), ", "))
			return nil
		},
	}
}

// printStarterConfig shows the default configuration as a starting point
func printStarterConfig(cmd *cobra.Command, path string) {
	data, err := config.DefaultConfigYAML()
	if err != nil {
		return
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "No configuration at %s. Save this as a starting point:\n\n", path)
	_, _ = out.Write(data)
}
