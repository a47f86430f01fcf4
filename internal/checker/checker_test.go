package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// changeWithContent builds a Change the way the extractor would for a single added line
func changeWithContent(path, content string) Change {
	return Change{Path: path, Line: 1, Content: content}
}

func assertNoViolation(t *testing.T, c Checker, path, content string) {
	t.Helper()
	v, found := c.Check(changeWithContent(path, content))
	assert.False(t, found, "%s should not flag %q", c.Name(), content)
	assert.Equal(t, Violation{}, v)
}

func assertViolation(t *testing.T, c Checker, path, content string) Violation {
	t.Helper()
	v, found := c.Check(changeWithContent(path, content))
	require.True(t, found, "%s should flag %q", c.Name(), content)
	assert.Equal(t, c.Name(), v.Checker)
	assert.Equal(t, path, v.Path)
	assert.Equal(t, 1, v.Line)
	assert.NotEmpty(t, v.Message)
	return v
}

func TestRspecShouldEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain text", input: "Hello", want: false},
		{name: "modern eq matcher", input: "should eq", want: false},
		{name: "empty line", input: "", want: false},
		{name: "should ==", input: "  foo.should  == 3", want: true},
		{name: "should_not ==", input: "  foo.should_not  == 3", want: true},
		{name: "should !=", input: "  foo.should  != 3", want: true},
		{name: "no whitespace before operator", input: "foo.should==3", want: true},
		{name: "tab before operator", input: "foo.should\t== 3", want: true},
		{name: "substring of longer word", input: "x.wouldshould == 1", want: true},
		{name: "case sensitive", input: "foo.SHOULD == 3", want: false},
		{name: "split keyword", input: "foo.sho uld == 3", want: false},
		{name: "split operator", input: "foo.should = = 3", want: false},
		{name: "assignment", input: "foo.should = 3", want: false},
		{name: "operator before keyword", input: "a == b.should", want: false},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.want {
				v := assertViolation(t, RspecShouldEqual, "spec/foo_spec.rb", tt.input)
				assert.Equal(t, "Use `eq` matcher instead of `should ==`", v.Message)
			} else {
				assertNoViolation(t, RspecShouldEqual, "spec/foo_spec.rb", tt.input)
			}
		})
	}
}

func TestRspecShouldEqualIsPure(t *testing.T) {
	t.Parallel()

	lines := []string{"  foo.should  == 3", "Hello", "  foo.should  != 3", "should eq", ""}

	first := make([]bool, len(lines))
	for i, line := range lines {
		_, first[i] = RspecShouldEqual.Check(changeWithContent("a_spec.rb", line))
	}

	// Reverse order and repeat: verdicts must not change
	for i := len(lines) - 1; i >= 0; i-- {
		_, again := RspecShouldEqual.Check(changeWithContent("a_spec.rb", lines[i]))
		assert.Equal(t, first[i], again, "verdict for %q changed", lines[i])
	}
}

func TestRspecShouldEqualIgnoresPath(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"spec/foo_spec.rb", "README.md", ""} {
		assertViolation(t, RspecShouldEqual, p, "foo.should == 1")
	}
}

func TestCheckerFunc(t *testing.T) {
	t.Parallel()

	c := CheckerFunc{
		ID:      "long_line",
		Message: "Line too long",
		Fn:      func(line string) bool { return len(line) > 10 },
	}

	assertNoViolation(t, c, "a.txt", "short")
	v := assertViolation(t, c, "a.txt", "this line is too long")
	assert.Equal(t, "Line too long", v.Message)

	var nilFn CheckerFunc
	assertNoViolation(t, nilFn, "a.txt", "anything")
}

func TestViolationCarriesLocation(t *testing.T) {
	t.Parallel()

	change := Change{Path: "spec/models/user_spec.rb", Line: 42, Content: "user.name.should == 'x'"}
	v, found := RspecShouldEqual.Check(change)

	require.True(t, found)
	assert.Equal(t, Violation{
		Path:    "spec/models/user_spec.rb",
		Line:    42,
		Checker: RspecShouldEqualName,
		Message: "Use `eq` matcher instead of `should ==`",
	}, v)
}
