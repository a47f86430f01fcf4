// Package app wires configuration, change sources, the runner and persisted
// state into the operations the CLI exposes.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/precommit/internal/checker"
	"github.com/wizzomafizzo/precommit/internal/config"
	"github.com/wizzomafizzo/precommit/internal/constants"
	"github.com/wizzomafizzo/precommit/internal/database"
	"github.com/wizzomafizzo/precommit/internal/logging"
	"github.com/wizzomafizzo/precommit/internal/project"
	"github.com/wizzomafizzo/precommit/internal/runner"
	"github.com/wizzomafizzo/precommit/internal/state"
	"github.com/wizzomafizzo/precommit/internal/storage"
)

// Options contains configuration options for creating an App
type Options struct {
	Fs           afero.Fs
	ConfigPath   string
	WorkDir      string
	DatabasePath string
}

type App struct {
	fs          afero.Fs
	configPath  string
	projectRoot string
	projectID   string
	dbPath      string
}

// New resolves the project root from WorkDir (or the current directory) and
// places a relative config path inside it.
func New(opts Options) (*App, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	var root string
	if opts.WorkDir == "" {
		r, err := project.FindRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
		root = r
	} else {
		root = project.FindRootFrom(opts.WorkDir)
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = constants.ConfigFilename
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(root, configPath)
	}

	dbPath := opts.DatabasePath
	if dbPath == "" {
		p, err := storage.New(fs).GetDatabasePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dbPath = p
	}

	return &App{
		fs:          fs,
		configPath:  configPath,
		projectRoot: root,
		projectID:   project.ID(root),
		dbPath:      dbPath,
	}, nil
}

func (a *App) ProjectRoot() string { return a.projectRoot }

func (a *App) ProjectID() string { return a.projectID }

func (a *App) ConfigPath() string { return a.configPath }

// Fs returns the filesystem the app reads config and files through
func (a *App) Fs() afero.Fs { return a.fs }

// LoadConfig loads the project config, using defaults when the file is absent
func (a *App) LoadConfig() (*config.Config, error) {
	return config.LoadOrDefault(a.fs, a.configPath) //nolint:wrapcheck // config errors name the file
}

// ValidateConfig loads the config strictly; a missing file is an error
func (a *App) ValidateConfig() (*config.Config, error) {
	return config.Load(a.fs, a.configPath) //nolint:wrapcheck // config errors name the file
}

// withState opens the database for the duration of fn
func (a *App) withState(ctx context.Context, fn func(*state.Manager) error) error {
	dbManager, err := database.NewManager(ctx, a.dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		_ = dbManager.Close()
	}()

	stateManager, err := state.NewSQLManager(dbManager.DB(), a.projectID)
	if err != nil {
		return fmt.Errorf("failed to create state manager: %w", err)
	}
	return fn(stateManager)
}

// CheckOptions adjust a single check run
type CheckOptions struct {
	Checks    []string
	NoHistory bool
}

// Outcome is the result of Check. Skipped runs carry an empty Result.
type Outcome struct {
	SkipReason string
	Result     runner.Result
	Skipped    bool
}

// Check runs the enabled checkers over the changes from src. The run is
// skipped when PRECOMMIT_SKIP is set, when checks are disabled for the
// project, or when a one-shot skip was requested.
func (a *App) Check(ctx context.Context, src Source, opts CheckOptions) (Outcome, error) {
	logger := logging.Get(ctx)

	if envSkip() {
		logger.Info().Msg("check skipped by environment")
		return Outcome{Skipped: true, SkipReason: constants.SkipEnv + " is set"}, nil
	}
	if reason := a.consumeSkip(ctx); reason != "" {
		logger.Info().Str("reason", reason).Msg("check skipped")
		return Outcome{Skipped: true, SkipReason: reason}, nil
	}

	cfg, err := a.LoadConfig()
	if err != nil {
		return Outcome{}, err
	}
	checkers, err := cfg.Checkers(opts.Checks)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to select checkers: %w", err)
	}

	changes, err := src.Changes(ctx)
	if err != nil {
		return Outcome{}, err //nolint:wrapcheck // sources wrap their own errors
	}
	changes = slices.DeleteFunc(changes, func(c checker.Change) bool {
		return cfg.Excluded(c.Path)
	})

	result, err := runner.New(cfg.Workers).Run(ctx, changes, checkers)
	if err != nil {
		return Outcome{}, err //nolint:wrapcheck // runner only fails on cancellation
	}

	logger.Info().
		Str("source", src.Name()).
		Int("lines", result.CheckedLines).
		Int("violations", len(result.Violations)).
		Msg("check completed")

	if !opts.NoHistory {
		a.recordRun(ctx, src.Name(), result)
	}

	return Outcome{Result: result}, nil
}

func envSkip() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(constants.SkipEnv))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// consumeSkip returns why the run should be skipped, or "". State errors are
// logged and never block a check.
func (a *App) consumeSkip(ctx context.Context) string {
	var reason string
	err := a.withState(ctx, func(m *state.Manager) error {
		enabled, err := m.GetEnabled(ctx)
		if err != nil {
			return err //nolint:wrapcheck // state errors are descriptive
		}
		if !enabled {
			reason = "checks are disabled for this project"
			return nil
		}

		skip, err := m.ConsumeSkipNext(ctx)
		if err != nil {
			return err //nolint:wrapcheck // state errors are descriptive
		}
		if skip {
			reason = "skip requested for this check"
		}
		return nil
	})
	if err != nil {
		logging.Get(ctx).Warn().Err(err).Msg("failed to read skip state")
		return ""
	}
	return reason
}

func (a *App) recordRun(ctx context.Context, source string, result runner.Result) {
	err := a.withState(ctx, func(m *state.Manager) error {
		_, err := m.RecordRun(ctx, state.RunRecord{
			Source:       source,
			CheckedLines: result.CheckedLines,
			ErrorCount:   len(result.Errors),
			Violations:   result.Violations,
		})
		return err //nolint:wrapcheck // state errors are descriptive
	})
	if err != nil {
		logging.Get(ctx).Warn().Err(err).Msg("failed to record run history")
	}
}

// TestLine evaluates a single line as if it were added to path
func (a *App) TestLine(ctx context.Context, line, path string, checks []string) ([]checker.Violation, error) {
	cfg, err := a.LoadConfig()
	if err != nil {
		return nil, err
	}
	checkers, err := cfg.Checkers(checks)
	if err != nil {
		return nil, fmt.Errorf("failed to select checkers: %w", err)
	}

	result, err := runner.New(1).Run(ctx, []checker.Change{{Path: path, Line: 1, Content: line}}, checkers)
	if err != nil {
		return nil, err //nolint:wrapcheck // runner only fails on cancellation
	}
	return result.Violations, nil
}

// SkipNext makes the next Check in this project a no-op
func (a *App) SkipNext(ctx context.Context) error {
	return a.withState(ctx, func(m *state.Manager) error {
		return m.SetSkipNext(ctx, true) //nolint:wrapcheck // state errors are descriptive
	})
}

// SetEnabled turns checks on or off for this project
func (a *App) SetEnabled(ctx context.Context, enabled bool) error {
	return a.withState(ctx, func(m *state.Manager) error {
		return m.SetEnabled(ctx, enabled) //nolint:wrapcheck // state errors are descriptive
	})
}

// Status describes the persisted state of this project
type Status struct {
	LastRun  *state.RunRecord
	Enabled  bool
	SkipNext bool
}

// Status reports whether checks are enabled, a skip is pending and the last run
func (a *App) Status(ctx context.Context) (Status, error) {
	var st Status
	err := a.withState(ctx, func(m *state.Manager) error {
		var err error
		if st.Enabled, err = m.GetEnabled(ctx); err != nil {
			return err //nolint:wrapcheck // state errors are descriptive
		}
		if st.SkipNext, err = m.GetSkipNext(ctx); err != nil {
			return err //nolint:wrapcheck // state errors are descriptive
		}
		runs, err := m.RecentRuns(ctx, 1)
		if err != nil {
			return err //nolint:wrapcheck // state errors are descriptive
		}
		if len(runs) > 0 {
			st.LastRun = &runs[0]
		}
		return nil
	})
	return st, err
}

// History returns the most recent runs, newest first. With details set each
// run carries its violations.
func (a *App) History(ctx context.Context, limit int, details bool) ([]state.RunRecord, error) {
	var runs []state.RunRecord
	err := a.withState(ctx, func(m *state.Manager) error {
		var err error
		if runs, err = m.RecentRuns(ctx, limit); err != nil {
			return err //nolint:wrapcheck // state errors are descriptive
		}
		if !details {
			return nil
		}
		for i := range runs {
			if runs[i].Violations, err = m.RunViolations(ctx, runs[i].ID); err != nil {
				return err //nolint:wrapcheck // state errors are descriptive
			}
		}
		return nil
	})
	return runs, err
}
