package checker

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownChecker = errors.New("unknown checker")

// Built-in checker names
const (
	RspecShouldEqualName = "rspec_should_equal"
	RspecFocusName       = "rspec_focus"
	DebuggerName         = "debugger"
	PryName              = "pry"
	ConsoleLogName       = "console_log"
	MergeConflictName    = "merge_conflict"
	BeforeAllName        = "before_all"
	NocommitName         = "nocommit"
	NBSpaceName          = "nb_space"
	TabsName             = "tabs"
)

// RspecShouldEqual flags the deprecated `should ==`, `should_not ==` and
// `should !=` matcher forms. Matching is substring based: `should` does not
// need to stand on a word boundary.
var RspecShouldEqual = MustRule(RuleSpec{
	Name:    RspecShouldEqualName,
	Match:   `should(_not)?\s*(==|!=)`,
	Message: "Use `eq` matcher instead of `should ==`",
})

var rubyFiles = []string{"*.rb", "*.rake", "Gemfile", "Rakefile"}

var builtins = []*Rule{
	RspecShouldEqual,
	MustRule(RuleSpec{
		Name:    RspecFocusName,
		Match:   `\b(fit|fdescribe|fcontext)\b\s*[\(\s'"]|focus:\s*true|:focus\b`,
		Message: "Remove focused spec before committing",
		Files:   []string{"*_spec.rb"},
	}),
	MustRule(RuleSpec{
		Name:    DebuggerName,
		Match:   `^\s*debugger\b`,
		Message: "Remove `debugger` statement",
		Files:   append([]string{"*.js", "*.jsx", "*.ts", "*.tsx", "*.coffee"}, rubyFiles...),
	}),
	MustRule(RuleSpec{
		Name:    PryName,
		Match:   `binding\.(pry|remote_pry)\b`,
		Message: "Remove `binding.pry` call",
		Files:   append([]string{"*.erb", "*.haml", "*.slim"}, rubyFiles...),
	}),
	MustRule(RuleSpec{
		Name:    ConsoleLogName,
		Match:   `console\.log\(`,
		Message: "Remove `console.log` call",
		Files:   []string{"*.js", "*.jsx", "*.ts", "*.tsx", "*.coffee"},
	}),
	MustRule(RuleSpec{
		Name:    MergeConflictName,
		Match:   `^(<{7}|={7}|>{7})(\s|$)`,
		Message: "Resolve merge conflict marker",
	}),
	MustRule(RuleSpec{
		Name:    BeforeAllName,
		Match:   `before\s*\(?\s*:all\b`,
		Message: "Avoid `before(:all)`, state leaks between examples",
		Files:   []string{"*_spec.rb"},
	}),
	MustRule(RuleSpec{
		Name:    NocommitName,
		Match:   `(?i)\bnocommit\b`,
		Message: "Line is marked NOCOMMIT",
	}),
	MustRule(RuleSpec{
		Name:    NBSpaceName,
		Match:   `\x{00A0}`,
		Message: "Replace non-breaking space with a regular space",
	}),
	MustRule(RuleSpec{
		Name:    TabsName,
		Match:   `^ *\t`,
		Message: "Indent with spaces, not tabs",
		Exclude: []string{"Makefile", "*.mk", "*.go", "go.mod"},
	}),
}

// DefaultEnabled lists the built-ins that run when no config selects checks.
var DefaultEnabled = []string{
	RspecShouldEqualName,
	MergeConflictName,
	DebuggerName,
	PryName,
}

// Builtins returns every built-in rule in table order
func Builtins() []*Rule {
	out := make([]*Rule, len(builtins))
	copy(out, builtins)
	return out
}

// BuiltinNames returns the sorted names of all built-ins
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for _, rule := range builtins {
		names = append(names, rule.Name())
	}
	sort.Strings(names)
	return names
}

// Lookup finds a built-in rule by name
func Lookup(name string) (*Rule, bool) {
	for _, rule := range builtins {
		if rule.Name() == name {
			return rule, true
		}
	}
	return nil, false
}

// Select returns the built-ins named, in the order given. Duplicates are dropped.
func Select(names []string) ([]Checker, error) {
	seen := make(map[string]bool, len(names))
	checkers := make([]Checker, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		rule, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownChecker, name)
		}
		checkers = append(checkers, rule)
	}
	return checkers, nil
}
