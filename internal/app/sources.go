package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/precommit/internal/checker"
	"github.com/wizzomafizzo/precommit/internal/diff"
	"github.com/wizzomafizzo/precommit/internal/git"
)

// Source produces the lines a check run inspects
type Source interface {
	Name() string
	Changes(ctx context.Context) ([]checker.Change, error)
}

// StagedSource reads the staged diff of the repository at Dir
type StagedSource struct {
	Dir string
}

func (StagedSource) Name() string { return "staged" }

func (s StagedSource) Changes(ctx context.Context) ([]checker.Change, error) {
	changes, err := git.StagedChanges(ctx, s.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged changes: %w", err)
	}
	return changes, nil
}

// DiffSource parses a unified diff from a reader
type DiffSource struct {
	Reader io.Reader
	Label  string
}

func (s DiffSource) Name() string {
	if s.Label == "" {
		return "diff"
	}
	return "diff " + s.Label
}

func (s DiffSource) Changes(context.Context) ([]checker.Change, error) {
	changes, err := diff.Parse(s.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}
	return changes, nil
}

// CommitSource reads the lines a commit added, using go-git
type CommitSource struct {
	Dir string
	Rev string
}

func (s CommitSource) Name() string {
	rev := s.Rev
	if rev == "" {
		rev = "HEAD"
	}
	return "commit " + rev
}

func (s CommitSource) Changes(ctx context.Context) ([]checker.Change, error) {
	repo, err := git.OpenRepo(s.Dir)
	if err != nil {
		return nil, err //nolint:wrapcheck // git errors carry the directory
	}
	return repo.CommitChanges(ctx, s.Rev) //nolint:wrapcheck // git errors carry the revision
}

// FileSource treats every line of each file as changed. Relative paths are
// read from Dir and reported as given. Binary files are skipped.
type FileSource struct {
	Fs    afero.Fs
	Dir   string
	Paths []string
}

func (FileSource) Name() string { return "files" }

func (s FileSource) Changes(ctx context.Context) ([]checker.Change, error) {
	var changes []checker.Change
	for _, p := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // cancellation is returned as is
		}

		full := p
		if !filepath.IsAbs(full) && s.Dir != "" {
			full = filepath.Join(s.Dir, p)
		}

		data, err := afero.ReadFile(s.Fs, full)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if bytes.IndexByte(data, 0) >= 0 {
			continue
		}
		changes = append(changes, diff.Lines(filepath.ToSlash(p), string(data))...)
	}
	return changes, nil
}
