package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/wizzomafizzo/precommit/internal/checker"
)

var (
	ErrNotRepository = errors.New("not a git repository")
	ErrResolveFailed = errors.New("failed to resolve revision")
)

// Repo wraps a go-git repository opened from a working directory
type Repo struct {
	repo *gogit.Repository
	root string
}

// OpenRepo opens the repository containing dir, searching parent directories
func OpenRepo(dir string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, dir)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	root := dir
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		root = wt.Filesystem.Root()
	}

	return &Repo{repo: repo, root: root}, nil
}

// Root returns the worktree root
func (r *Repo) Root() string {
	return r.root
}

// CommitChanges returns the lines a commit added relative to its first parent.
// A root commit is compared against the empty tree.
func (r *Repo) CommitChanges(ctx context.Context, rev string) ([]checker.Change, error) {
	if rev == "" {
		rev = "HEAD"
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrResolveFailed, rev, err)
	}

	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}

	toTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	fromTree := &object.Tree{}
	if commit.NumParents() > 0 {
		parent, parentErr := commit.Parent(0)
		if parentErr != nil {
			return nil, fmt.Errorf("failed to get parent commit: %w", parentErr)
		}
		if fromTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("failed to get parent tree: %w", err)
		}
	}

	treeChanges, err := fromTree.DiffContext(ctx, toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to compute changes: %w", err)
	}

	patch, err := treeChanges.PatchContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate patch: %w", err)
	}

	var changes []checker.Change
	for _, fp := range patch.FilePatches() {
		changes = append(changes, addedLines(fp)...)
	}
	return changes, nil
}

// addedLines walks the chunks of one file patch tracking the new-file line number
func addedLines(fp fdiff.FilePatch) []checker.Change {
	if fp.IsBinary() {
		return nil
	}
	_, to := fp.Files()
	if to == nil {
		return nil
	}

	var changes []checker.Change
	line := 1
	for _, chunk := range fp.Chunks() {
		lines := splitChunk(chunk.Content())
		switch chunk.Type() {
		case fdiff.Equal:
			line += len(lines)
		case fdiff.Add:
			for _, content := range lines {
				changes = append(changes, checker.Change{
					Path:    to.Path(),
					Line:    line,
					Content: content,
				})
				line++
			}
		case fdiff.Delete:
		}
	}
	return changes
}

func splitChunk(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
