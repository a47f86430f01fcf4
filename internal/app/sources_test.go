package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/precommit/internal/checker"
	"github.com/wizzomafizzo/precommit/internal/git"
)

func TestFileSource(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/a.rb", []byte("one\r\ntwo\n"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/repo/img.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, 0o600))
	require.NoError(t, afero.WriteFile(fs, "/abs/b.rb", []byte("three"), 0o600))

	src := FileSource{Fs: fs, Dir: "/repo", Paths: []string{"a.rb", "img.png", "/abs/b.rb"}}
	changes, err := src.Changes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []checker.Change{
		{Path: "a.rb", Line: 1, Content: "one"},
		{Path: "a.rb", Line: 2, Content: "two"},
		{Path: "/abs/b.rb", Line: 1, Content: "three"},
	}, changes)
	assert.Equal(t, "files", src.Name())
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	src := FileSource{Fs: afero.NewMemMapFs(), Dir: "/repo", Paths: []string{"nope.rb"}}
	_, err := src.Changes(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.rb")
}

func TestSourceNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "staged", StagedSource{}.Name())
	assert.Equal(t, "diff", DiffSource{}.Name())
	assert.Equal(t, "diff patch.diff", DiffSource{Label: "patch.diff"}.Name())
	assert.Equal(t, "commit HEAD", CommitSource{}.Name())
	assert.Equal(t, "commit abc123", CommitSource{Rev: "abc123"}.Name())
}

func TestCommitSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_spec.rb"), []byte("x.should == 1\n"), 0o600))
	_, err = wt.Add("a_spec.rb")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	changes, err := CommitSource{Dir: dir}.Changes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []checker.Change{{Path: "a_spec.rb", Line: 1, Content: "x.should == 1"}}, changes)

	_, err = CommitSource{Dir: t.TempDir()}.Changes(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, git.ErrNotRepository))
}
