package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wizzomafizzo/precommit/internal/checker"
)

// MaxRuns is how many runs are kept per project
const MaxRuns = 100

// RunRecord is one completed check run
type RunRecord struct {
	CreatedAt    time.Time
	Source       string
	Violations   []checker.Violation
	ID           int64
	CheckedLines int
	ErrorCount   int
	// ViolationCount is stored separately so listing runs does not load violations
	ViolationCount int
}

// RecordRun stores a run and its violations, pruning runs beyond MaxRuns
func (m *Manager) RecordRun(ctx context.Context, run RunRecord) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (project_id, source, checked_lines, violation_count, error_count)
		 VALUES (?, ?, ?, ?, ?)`,
		m.projectID, run.Source, run.CheckedLines, len(run.Violations), run.ErrorCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, v := range run.Violations {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO run_violations (run_id, path, line, checker, message) VALUES (?, ?, ?, ?, ?)",
			id, v.Path, v.Line, v.Checker, v.Message)
		if err != nil {
			return 0, fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	if err := m.prune(ctx, tx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

func (m *Manager) prune(ctx context.Context, tx *sql.Tx) error {
	const keep = `SELECT id FROM runs WHERE project_id = ? ORDER BY id DESC LIMIT ?`

	_, err := tx.ExecContext(ctx,
		`DELETE FROM run_violations WHERE run_id IN (
			SELECT id FROM runs WHERE project_id = ? AND id NOT IN (`+keep+`))`,
		m.projectID, m.projectID, MaxRuns)
	if err != nil {
		return fmt.Errorf("failed to prune violations: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM runs WHERE project_id = ? AND id NOT IN (`+keep+`)`,
		m.projectID, m.projectID, MaxRuns)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, without violations
func (m *Manager) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, source, checked_lines, violation_count, error_count, created_at
		 FROM runs WHERE project_id = ? ORDER BY id DESC LIMIT ?`,
		m.projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var (
			run       RunRecord
			createdAt int64
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.CheckedLines,
			&run.ViolationCount, &run.ErrorCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// RunViolations returns the violations recorded for a run in stored order
func (m *Manager) RunViolations(ctx context.Context, runID int64) ([]checker.Violation, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT v.path, v.line, v.checker, v.message
		 FROM run_violations v JOIN runs r ON r.id = v.run_id
		 WHERE v.run_id = ? AND r.project_id = ? ORDER BY v.rowid`,
		runID, m.projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var violations []checker.Violation
	for rows.Next() {
		var v checker.Violation
		if err := rows.Scan(&v.Path, &v.Line, &v.Checker, &v.Message); err != nil {
			return nil, fmt.Errorf("failed to scan violation: %w", err)
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read violations: %w", err)
	}
	return violations, nil
}
