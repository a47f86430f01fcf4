// Package storage provides XDG-compliant storage path management for precommit.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
	"github.com/wizzomafizzo/precommit/internal/constants"
)

// Manager handles storage operations with filesystem abstraction
type Manager struct {
	fs      afero.Fs
	dataDir string
}

// New creates a new storage manager rooted at the XDG data directory
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs, dataDir: filepath.Join(xdg.DataHome, constants.AppName)}
}

// NewWithDataDir creates a storage manager rooted at an explicit directory
func NewWithDataDir(fs afero.Fs, dataDir string) *Manager {
	return &Manager{fs: fs, dataDir: dataDir}
}

// GetDataDir returns the data directory, creating it if necessary
func (m *Manager) GetDataDir() (string, error) {
	err := m.fs.MkdirAll(m.dataDir, 0o750)
	if err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", m.dataDir, err)
	}
	return m.dataDir, nil
}

// GetLogPath returns the full path to the log file
func (m *Manager) GetLogPath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, constants.LogFilename), nil
}

// GetDatabasePath returns the full path to the state database
func (m *Manager) GetDatabasePath() (string, error) {
	dataDir, err := m.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, constants.DatabaseFilename), nil
}
