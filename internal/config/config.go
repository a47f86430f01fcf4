// Package config loads the per-repository .precommit.yml file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/precommit/internal/checker"
	"gopkg.in/yaml.v3"
)

// AllChecks in the checks list enables every built-in
const AllChecks = "all"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrDuplicateRule  = errors.New("duplicate rule name")
	ErrInvalidWorkers = errors.New("workers must not be negative")
)

type Config struct {
	Checks  []string `yaml:"checks,omitempty"`
	Disable []string `yaml:"disable,omitempty"`
	Rules   []Rule   `yaml:"rules,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
	Workers int      `yaml:"workers,omitempty"`
}

// Rule is a project specific single-line check
type Rule struct {
	Name    string   `yaml:"name"`
	Match   string   `yaml:"match"`
	Message string   `yaml:"message"`
	Files   []string `yaml:"files,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

func (r Rule) spec() checker.RuleSpec {
	return checker.RuleSpec{
		Name:    r.Name,
		Match:   r.Match,
		Message: r.Message,
		Files:   r.Files,
		Exclude: r.Exclude,
	}
}

// Load reads and validates the config at path
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return LoadFromYAML(data)
}

// LoadOrDefault is Load, falling back to DefaultConfig when the file is missing
func LoadOrDefault(fs afero.Fs, path string) (*Config, error) {
	cfg, err := Load(fs, path)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFromYAML decodes and validates config bytes. Unknown keys are errors.
func LoadFromYAML(data []byte) (*Config, error) {
	var config Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks rule definitions, check names and globs
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	custom := make(map[string]bool, len(c.Rules))
	for i, rule := range c.Rules {
		if _, err := checker.NewRule(rule.spec()); err != nil {
			return fmt.Errorf("rule %d validation failed: %w", i+1, err)
		}
		if _, builtin := checker.Lookup(rule.Name); builtin || custom[rule.Name] {
			return fmt.Errorf("rule %d: %w %q", i+1, ErrDuplicateRule, rule.Name)
		}
		custom[rule.Name] = true
	}

	for _, name := range c.Checks {
		if name == AllChecks {
			continue
		}
		if err := c.knownName(name, custom); err != nil {
			return fmt.Errorf("checks: %w", err)
		}
	}
	for _, name := range c.Disable {
		if err := c.knownName(name, custom); err != nil {
			return fmt.Errorf("disable: %w", err)
		}
	}

	if err := checker.ValidateGlobs(c.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}

	return nil
}

func (c *Config) knownName(name string, custom map[string]bool) error {
	if _, ok := checker.Lookup(name); ok || custom[name] {
		return nil
	}
	return fmt.Errorf("%w %q", checker.ErrUnknownChecker, name)
}

// EnabledNames resolves which checks run. A non-empty override replaces the
// configured selection and ignores Disable. Without checks in the config the
// default built-ins run; custom rules always run unless disabled or overridden.
func (c *Config) EnabledNames(override []string) []string {
	var names []string
	switch {
	case len(override) > 0:
		names = slices.Clone(override)
	case len(c.Checks) > 0:
		names = slices.Clone(c.Checks)
	default:
		names = slices.Clone(checker.DefaultEnabled)
	}

	if slices.Contains(names, AllChecks) {
		names = slices.DeleteFunc(names, func(n string) bool { return n == AllChecks })
		names = append(names, checker.BuiltinNames()...)
	}

	// An explicit override is taken as given
	if len(override) == 0 {
		for _, rule := range c.Rules {
			names = append(names, rule.Name)
		}
		names = slices.DeleteFunc(names, func(n string) bool {
			return slices.Contains(c.Disable, n)
		})
	}

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Checkers builds the enabled checkers in EnabledNames order
func (c *Config) Checkers(override []string) ([]checker.Checker, error) {
	custom := make(map[string]checker.Checker, len(c.Rules))
	for _, rule := range c.Rules {
		r, err := checker.NewRule(rule.spec())
		if err != nil {
			return nil, err
		}
		custom[rule.Name] = r
	}

	names := c.EnabledNames(override)
	checkers := make([]checker.Checker, 0, len(names))
	for _, name := range names {
		if r, ok := custom[name]; ok {
			checkers = append(checkers, r)
			continue
		}
		selected, err := checker.Select([]string{name})
		if err != nil {
			return nil, err
		}
		checkers = append(checkers, selected...)
	}
	return checkers, nil
}

// Excluded reports whether path matches an exclude glob
func (c *Config) Excluded(path string) bool {
	return checker.MatchPath(c.Exclude, path)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
