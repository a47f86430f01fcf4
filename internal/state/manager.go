// Package state persists per-project flags and run history in SQLite.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	keyEnabled  = "state:checks_enabled"
	keySkipNext = "state:skip_next_check"
)

// Manager reads and writes state for a single project. The database handle is
// owned by the caller.
type Manager struct {
	db        *sql.DB
	projectID string
}

// NewSQLManager creates a new SQL-based state manager instance
func NewSQLManager(db *sql.DB, projectID string) (*Manager, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}
	return &Manager{
		db:        db,
		projectID: projectID,
	}, nil
}

// ProjectID returns the project the manager is scoped to
func (m *Manager) ProjectID() string {
	return m.projectID
}

// getBoolValue retrieves a boolean value from the state table
func (m *Manager) getBoolValue(ctx context.Context, key string, defaultValue bool, errorPrefix string) (bool, error) {
	var valueJSON []byte
	err := m.db.QueryRowContext(ctx,
		"SELECT value FROM state WHERE key = ? AND project_id = ?",
		key, m.projectID).Scan(&valueJSON)

	if errors.Is(err, sql.ErrNoRows) {
		return defaultValue, nil
	}
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", errorPrefix, err)
	}

	var value bool
	if err := json.Unmarshal(valueJSON, &value); err != nil {
		return defaultValue, fmt.Errorf("%s: %w", errorPrefix, err)
	}

	return value, nil
}

// setBoolValue stores a boolean value in the state table
func (m *Manager) setBoolValue(ctx context.Context, key string, value bool, errorPrefix string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", errorPrefix, err)
	}

	_, err = m.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO state (key, project_id, value) VALUES (?, ?, ?)",
		key, m.projectID, data)
	if err != nil {
		return fmt.Errorf("%s: %w", errorPrefix, err)
	}

	return nil
}

// GetEnabled returns whether checks run for this project
func (m *Manager) GetEnabled(ctx context.Context) (bool, error) {
	return m.getBoolValue(ctx, keyEnabled, true, "failed to get enabled state")
}

// SetEnabled sets whether checks run for this project
func (m *Manager) SetEnabled(ctx context.Context, enabled bool) error {
	return m.setBoolValue(ctx, keyEnabled, enabled, "failed to set enabled state")
}

// GetSkipNext returns whether the next check run should be skipped
func (m *Manager) GetSkipNext(ctx context.Context) (bool, error) {
	return m.getBoolValue(ctx, keySkipNext, false, "failed to get skip next state")
}

// SetSkipNext sets whether the next check run should be skipped
func (m *Manager) SetSkipNext(ctx context.Context, skip bool) error {
	return m.setBoolValue(ctx, keySkipNext, skip, "failed to set skip next state")
}

// ConsumeSkipNext returns the current skip flag value and resets it to false
func (m *Manager) ConsumeSkipNext(ctx context.Context) (bool, error) {
	value, err := m.GetSkipNext(ctx)
	if err != nil {
		return false, err
	}

	if value {
		err = m.SetSkipNext(ctx, false)
		if err != nil {
			return false, fmt.Errorf("failed to reset skip flag: %w", err)
		}
	}

	return value, nil
}
