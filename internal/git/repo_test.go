package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/precommit/internal/checker"
)

type testRepo struct {
	t    *testing.T
	repo *gogit.Repository
	dir  string
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return &testRepo{t: t, repo: repo, dir: dir}
}

func (r *testRepo) commit(files map[string]string, msg string) {
	r.t.Helper()

	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)

	for name, content := range files {
		full := filepath.Join(r.dir, name)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(r.t, os.WriteFile(full, []byte(content), 0o600))
		_, err = wt.Add(name)
		require.NoError(r.t, err)
	}

	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
}

func TestOpenRepoDetectsParent(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit(map[string]string{"lib/a.rb": "x\n"}, "initial")

	repo, err := OpenRepo(filepath.Join(tr.dir, "lib"))
	require.NoError(t, err)
	assert.Equal(t, tr.dir, repo.Root())
}

func TestOpenRepoNotARepository(t *testing.T) {
	t.Parallel()

	_, err := OpenRepo(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotRepository))
}

func TestCommitChangesRootCommit(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit(map[string]string{"spec/a_spec.rb": "describe A do\n  a.should == 1\nend\n"}, "initial")

	repo, err := OpenRepo(tr.dir)
	require.NoError(t, err)

	changes, err := repo.CommitChanges(context.Background(), "HEAD")
	require.NoError(t, err)

	assert.Equal(t, []checker.Change{
		{Path: "spec/a_spec.rb", Line: 1, Content: "describe A do"},
		{Path: "spec/a_spec.rb", Line: 2, Content: "  a.should == 1"},
		{Path: "spec/a_spec.rb", Line: 3, Content: "end"},
	}, changes)
}

func TestCommitChangesAgainstParent(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit(map[string]string{"a.rb": "one\ntwo\nthree\n", "gone.rb": "bye\n"}, "initial")
	tr.commit(map[string]string{"a.rb": "one\ntwo\ninserted\nthree\nappended\n"}, "second")

	repo, err := OpenRepo(tr.dir)
	require.NoError(t, err)

	changes, err := repo.CommitChanges(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []checker.Change{
		{Path: "a.rb", Line: 3, Content: "inserted"},
		{Path: "a.rb", Line: 5, Content: "appended"},
	}, changes)

	// The first commit is still reachable by revision syntax
	first, err := repo.CommitChanges(context.Background(), "HEAD~1")
	require.NoError(t, err)
	assert.Len(t, first, 4)
}

func TestCommitChangesUnknownRevision(t *testing.T) {
	t.Parallel()

	tr := newTestRepo(t)
	tr.commit(map[string]string{"a.rb": "x\n"}, "initial")

	repo, err := OpenRepo(tr.dir)
	require.NoError(t, err)

	_, err = repo.CommitChanges(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResolveFailed))
}

func TestStagedChanges(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}

	dir := t.TempDir()
	runGit := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	runGit("init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_spec.rb"), []byte("x.should != 2\nok\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unstaged.rb"), []byte("binding.pry\n"), 0o600))
	runGit("add", "b_spec.rb")

	changes, err := StagedChanges(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []checker.Change{
		{Path: "b_spec.rb", Line: 1, Content: "x.should != 2"},
		{Path: "b_spec.rb", Line: 2, Content: "ok"},
	}, changes)
}
