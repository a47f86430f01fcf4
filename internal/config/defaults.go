package config

import (
	"fmt"

	"github.com/wizzomafizzo/precommit/internal/checker"
	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the configuration used when a repository has none
func DefaultConfig() *Config {
	checks := make([]string, len(checker.DefaultEnabled))
	copy(checks, checker.DefaultEnabled)

	return &Config{
		Checks:  checks,
		Exclude: []string{"vendor/", "node_modules/"},
	}
}

// DefaultConfigYAML returns the default configuration as YAML bytes
func DefaultConfigYAML() ([]byte, error) {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config to YAML: %w", err)
	}
	return data, nil
}
