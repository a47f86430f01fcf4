package checker

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	ErrInvalidRegex = errors.New("invalid regex pattern")
	ErrInvalidGlob  = errors.New("invalid path glob")
	ErrEmptyName    = errors.New("rule name is required")
	ErrEmptyMessage = errors.New("rule message is required")
)

// RuleSpec describes a pattern rule before compilation.
type RuleSpec struct {
	Name    string
	Match   string
	Message string
	// Files limits the rule to paths matching any of these globs. Empty means all paths.
	Files []string
	// Exclude skips paths matching any of these globs.
	Exclude []string
}

// Rule is a compiled, stateless pattern checker.
type Rule struct {
	pattern *regexp.Regexp
	name    string
	message string
	files   []string
	exclude []string
}

// NewRule compiles spec into a Rule
func NewRule(spec RuleSpec) (*Rule, error) {
	if spec.Name == "" {
		return nil, ErrEmptyName
	}
	if spec.Message == "" {
		return nil, fmt.Errorf("rule %s: %w", spec.Name, ErrEmptyMessage)
	}

	re, err := regexp.Compile(spec.Match)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w: %w", spec.Name, ErrInvalidRegex, err)
	}
	if spec.Match == "" {
		return nil, fmt.Errorf("rule %s: %w: empty pattern", spec.Name, ErrInvalidRegex)
	}

	if err := ValidateGlobs(spec.Files); err != nil {
		return nil, fmt.Errorf("rule %s files: %w", spec.Name, err)
	}
	if err := ValidateGlobs(spec.Exclude); err != nil {
		return nil, fmt.Errorf("rule %s exclude: %w", spec.Name, err)
	}

	return &Rule{
		pattern: re,
		name:    spec.Name,
		message: spec.Message,
		files:   spec.Files,
		exclude: spec.Exclude,
	}, nil
}

// MustRule is like NewRule but panics on error. Used for the built-in table so
// a broken pattern fails at startup instead of during a check.
func MustRule(spec RuleSpec) *Rule {
	rule, err := NewRule(spec)
	if err != nil {
		panic(err)
	}
	return rule
}

// Name returns the rule name
func (r *Rule) Name() string {
	return r.name
}

// Message returns the message reported on a match
func (r *Rule) Message() string {
	return r.message
}

// Pattern returns the source of the compiled regex
func (r *Rule) Pattern() string {
	return r.pattern.String()
}

// AppliesTo reports whether the rule inspects lines from the given path
func (r *Rule) AppliesTo(p string) bool {
	if len(r.files) > 0 && !MatchPath(r.files, p) {
		return false
	}
	return !MatchPath(r.exclude, p)
}

// Check implements Checker
func (r *Rule) Check(change Change) (Violation, bool) {
	if change.Content == "" || !r.AppliesTo(change.Path) {
		return Violation{}, false
	}
	if !r.pattern.MatchString(change.Content) {
		return Violation{}, false
	}
	return newViolation(change, r.name, r.message), true
}

// ValidateGlobs checks that every glob is well formed
func ValidateGlobs(globs []string) error {
	for _, glob := range globs {
		if _, err := path.Match(strings.TrimSuffix(glob, "/"), ""); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidGlob, glob, err)
		}
	}
	return nil
}

// MatchPath reports whether p matches any glob. A glob matches against the
// slash-separated path and against its base name. A glob ending in "/" matches
// everything under that directory.
func MatchPath(globs []string, p string) bool {
	if p == "" {
		return false
	}
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
	base := path.Base(p)

	for _, glob := range globs {
		if dir, ok := strings.CutSuffix(glob, "/"); ok {
			if p == dir || strings.HasPrefix(p, dir+"/") {
				return true
			}
			continue
		}
		if matched, _ := path.Match(glob, p); matched {
			return true
		}
		if matched, _ := path.Match(glob, base); matched {
			return true
		}
	}
	return false
}
