package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wizzomafizzo/precommit/internal/report"
)

func TestCheckCommand_DiffFromStdin(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)

	res := p.run(violatingDiff, "check", "--diff", "-", "--no-color")

	assert.Equal(t, report.ExitViolations, exitCode(t, res.err))
	assert.Equal(t, "spec/a_spec.rb:2: [rspec_should_equal] Use `eq` matcher instead of `should ==`\n"+
		"1 violation in 1 checked line\n", res.stdout)
}

func TestCheckCommand_CleanDiffFileIsSilent(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)
	diffPath := p.writeFile("change.diff", cleanDiff)

	res := p.run("", "check", "--diff", diffPath)

	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestCheckCommand_JSON(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)

	res := p.run(violatingDiff, "check", "--diff", "-", "--format", "json", "--no-history")
	assert.Equal(t, report.ExitViolations, exitCode(t, res.err))

	var decoded struct {
		Violations []struct {
			Path    string `json:"path"`
			Checker string `json:"checker"`
			Line    int    `json:"line"`
		} `json:"violations"`
		CheckedLines int `json:"checked_lines"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &decoded))
	require.Len(t, decoded.Violations, 1)
	assert.Equal(t, "spec/a_spec.rb", decoded.Violations[0].Path)
	assert.Equal(t, 2, decoded.Violations[0].Line)
	assert.Equal(t, 1, decoded.CheckedLines)
}

func TestCheckCommand_Files(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)
	p.writeFile("lib/a.rb", "def a\n  binding.pry\nend\n")

	res := p.run("", "check", "lib/a.rb", "--no-color", "--no-history")

	assert.Equal(t, report.ExitViolations, exitCode(t, res.err))
	assert.Contains(t, res.stdout, "lib/a.rb:2: [pry]")
}

func TestCheckCommand_ChecksOverride(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)

	res := p.run(violatingDiff, "check", "--diff", "-", "--checks", "pry", "--no-history")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestCheckCommand_CustomRuleFromConfig(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)
	p.writeFile(".precommit.yml", `checks: []
rules:
  - name: describe_block
    match: '^describe '
    message: Use RSpec.describe
`)

	diff := "--- a/a_spec.rb\n+++ b/a_spec.rb\n@@ -0,0 +1 @@\n+describe A do\n"
	res := p.run(diff, "check", "--diff", "-", "--no-color", "--no-history")

	assert.Equal(t, report.ExitViolations, exitCode(t, res.err))
	assert.Contains(t, res.stdout, "a_spec.rb:1: [describe_block] Use RSpec.describe")
}

func TestCheckCommand_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		args    []string
	}{
		{name: "files with diff", args: []string{"check", "a.rb", "--diff", "-"}, wantErr: errFilesWithSource},
		{name: "unknown format", args: []string{"check", "--diff", "-", "--format", "xml"}},
		{name: "diff and commit", args: []string{"check", "--diff", "-", "--commit", "HEAD"}},
		{name: "unknown check", args: []string{"check", "--diff", "-", "--checks", "nope"}},
		{name: "missing diff file", args: []string{"check", "--diff", "/does/not/exist.diff"}},
		{name: "commit outside repository", args: []string{"check", "--commit", "HEAD"}},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := newTestProject(t)

			res := p.run(violatingDiff, tt.args...)
			require.Error(t, res.err)

			var exitErr *ExitError
			assert.False(t, errors.As(res.err, &exitErr))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(res.err, tt.wantErr))
			}
		})
	}
}

func TestCheckCommand_SkipAndHistory(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)

	res := p.run("", "skip")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Next check will be skipped")

	res = p.run("", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Next check: skipped")

	res = p.run(violatingDiff, "check", "--diff", "-")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "Checks skipped")

	res = p.run(violatingDiff, "check", "--diff", "-", "--no-color")
	assert.Equal(t, report.ExitViolations, exitCode(t, res.err))

	res = p.run("", "history", "-d")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "diff -")
	assert.Contains(t, res.stdout, "spec/a_spec.rb:2: [rspec_should_equal]")

	res = p.run("", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Checks: enabled")
	assert.Contains(t, res.stdout, "Last run:")
	assert.NotContains(t, res.stdout, "Next check: skipped")
}

func TestCheckCommand_DisableEnable(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)

	require.NoError(t, p.run("", "disable").err)

	res := p.run(violatingDiff, "check", "--diff", "-")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "disabled")

	res = p.run("", "status")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Checks: disabled")

	require.NoError(t, p.run("", "enable").err)
	res = p.run(violatingDiff, "check", "--diff", "-")
	assert.Equal(t, report.ExitViolations, exitCode(t, res.err))
}

func TestHistoryCommand_Empty(t *testing.T) {
	t.Parallel()
	p := newTestProject(t)

	res := p.run("", "history")
	require.NoError(t, res.err)
	assert.Equal(t, "No runs recorded\n", res.stdout)
}
