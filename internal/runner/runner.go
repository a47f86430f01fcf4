// Package runner evaluates checkers against changes with a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/wizzomafizzo/precommit/internal/checker"
	"github.com/wizzomafizzo/precommit/internal/logging"
	"golang.org/x/sync/errgroup"
)

// CheckError records a checker that panicked on a change
type CheckError struct {
	Path    string `json:"path"`
	Checker string `json:"checker"`
	Err     string `json:"error"`
	Line    int    `json:"line"`
}

func (e CheckError) Error() string {
	return fmt.Sprintf("%s:%d: checker %s failed: %s", e.Path, e.Line, e.Checker, e.Err)
}

// Result is the outcome of one run
type Result struct {
	Violations   []checker.Violation `json:"violations"`
	Errors       []CheckError        `json:"errors"`
	CheckedLines int                 `json:"checked_lines"`
}

// Clean reports whether the run found nothing
func (r Result) Clean() bool {
	return len(r.Violations) == 0 && len(r.Errors) == 0
}

// Runner fans changes out across a fixed number of workers
type Runner struct {
	workers int
}

// New creates a runner. Non-positive worker counts use runtime.NumCPU.
func New(workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{workers: workers}
}

// Workers returns the pool size
func (r *Runner) Workers() int {
	return r.workers
}

type lineResult struct {
	violations []checker.Violation
	errors     []CheckError
}

// Run calls every checker once per change and aggregates all violations.
// Output is sorted by path, line and checker name. The only error returned
// is context cancellation.
func (r *Runner) Run(ctx context.Context, changes []checker.Change, checkers []checker.Checker) (Result, error) {
	logger := logging.Get(ctx)

	results := make([]lineResult, len(changes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, change := range changes {
		if gctx.Err() != nil {
			break
		}
		i, change := i, change
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkChange(ctx, change, checkers)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("check run interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("check run interrupted: %w", err)
	}

	result := Result{CheckedLines: len(changes)}
	for _, lr := range results {
		result.Violations = append(result.Violations, lr.violations...)
		result.Errors = append(result.Errors, lr.errors...)
	}
	SortViolations(result.Violations)
	sort.SliceStable(result.Errors, func(i, j int) bool {
		a, b := result.Errors[i], result.Errors[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Checker < b.Checker
	})

	logger.Debug().
		Int("lines", result.CheckedLines).
		Int("checkers", len(checkers)).
		Int("workers", r.workers).
		Int("violations", len(result.Violations)).
		Int("errors", len(result.Errors)).
		Msg("check run finished")

	return result, nil
}

func checkChange(ctx context.Context, change checker.Change, checkers []checker.Checker) lineResult {
	var lr lineResult
	for _, c := range checkers {
		v, found, err := safeCheck(c, change)
		if err != nil {
			logging.Get(ctx).Error().
				Str("checker", c.Name()).
				Str("path", change.Path).
				Int("line", change.Line).
				Str("panic", err.Error()).
				Msg("checker panicked")
			lr.errors = append(lr.errors, CheckError{
				Path:    change.Path,
				Line:    change.Line,
				Checker: c.Name(),
				Err:     err.Error(),
			})
			continue
		}
		if found {
			lr.violations = append(lr.violations, v)
		}
	}
	return lr
}

func safeCheck(c checker.Checker, change checker.Change) (v checker.Violation, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	v, found = c.Check(change)
	return v, found, nil
}

// SortViolations orders violations by path, line and checker name
func SortViolations(violations []checker.Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Checker < b.Checker
	})
}
