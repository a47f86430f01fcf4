package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog" //nolint:depguard // console writer for --verbose
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/precommit/internal/app"
	"github.com/wizzomafizzo/precommit/internal/constants"
	"github.com/wizzomafizzo/precommit/internal/logging"
)

// createNewRootCommand creates the main root command that shows help by default.
func createNewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Line checks for staged changes",
		Long:          "Run single-line checks over the lines a commit adds and report violations.",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", constants.ConfigFilename, "Path to config file, relative to the project root")
	flags.BoolP("verbose", "v", false, "Log debug output to stderr")
	flags.StringP("dir", "C", "", "Run as if started in this directory")
	flags.String("database", "", "Path to the state database")
	_ = flags.MarkHidden("database")

	rootCmd.AddCommand(
		createCheckCommand(),
		createChecksCommand(),
		createSkipCommand(),
		createEnableCommand(),
		createDisableCommand(),
		createStatusCommand(),
		createHistoryCommand(),
		createValidateCommand(),
	)

	return rootCmd
}

// createAppFromCommand builds an App from the persistent flags
func createAppFromCommand(cmd *cobra.Command) (*app.App, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	workDir, err := flags.GetString("dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get dir flag: %w", err)
	}
	dbPath, err := flags.GetString("database")
	if err != nil {
		return nil, fmt.Errorf("failed to get database flag: %w", err)
	}

	a, err := app.New(app.Options{
		Fs:           afero.NewOsFs(),
		ConfigPath:   configPath,
		WorkDir:      workDir,
		DatabasePath: dbPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return a, nil
}

// initLogging attaches a logger for the project. With --verbose it writes to
// stderr, otherwise to the rotated log file. A log file that cannot be opened
// leaves logging disabled rather than failing the command.
func initLogging(cmd *cobra.Command, a *app.App) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	cfg := logging.Config{
		ProjectID: a.ProjectID(),
		Level:     logging.InfoLevel,
	}
	if verbose {
		cfg.Writer = zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}
		cfg.Level = logging.DebugLevel
	}

	logCtx, err := logging.New(ctx, afero.NewOsFs(), cfg)
	if err != nil {
		return ctx
	}
	return logCtx
}

// setupCommand is the common prologue of commands that need the app
func setupCommand(cmd *cobra.Command) (context.Context, *app.App, error) {
	a, err := createAppFromCommand(cmd)
	if err != nil {
		return nil, nil, err
	}
	return initLogging(cmd, a), a, nil
}
