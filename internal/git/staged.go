// Package git reads changed lines out of a git repository.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wizzomafizzo/precommit/internal/checker"
	"github.com/wizzomafizzo/precommit/internal/diff"
)

var ErrGitNotFound = errors.New("git executable not found")

// stagedDiffArgs produces a stable diff format regardless of user git config
var stagedDiffArgs = []string{
	"diff", "--cached", "--no-color", "--no-ext-diff", "--unified=0",
	"--src-prefix=a/", "--dst-prefix=b/", "--diff-filter=ACMR",
}

// StagedDiff returns the unified diff of the index against HEAD
func StagedDiff(ctx context.Context, dir string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", ErrGitNotFound
	}

	cmd := exec.CommandContext(ctx, "git", stagedDiffArgs...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git diff failed: %w", err)
		}
		return "", fmt.Errorf("git diff failed: %s: %w", msg, err)
	}

	return stdout.String(), nil
}

// StagedChanges returns the added lines currently staged for commit
func StagedChanges(ctx context.Context, dir string) ([]checker.Change, error) {
	text, err := StagedDiff(ctx, dir)
	if err != nil {
		return nil, err
	}

	changes, err := diff.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse staged diff: %w", err)
	}
	return changes, nil
}
