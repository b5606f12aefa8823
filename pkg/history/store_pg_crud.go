package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const runColumns = `id, started_at, duration_ms, reference_url, reference_dialect,
	sample_url, sample_dialect, entities, safe_entities, issues, has_issues`

// SaveRun stores a run, replacing one with the same id
func (s *PGStore) SaveRun(ctx context.Context, run *Run) error {
	issuesJSON, err := json.Marshal(run.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}

	query := `
		INSERT INTO crosscheck_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			started_at = EXCLUDED.started_at,
			duration_ms = EXCLUDED.duration_ms,
			entities = EXCLUDED.entities,
			safe_entities = EXCLUDED.safe_entities,
			issues = EXCLUDED.issues,
			has_issues = EXCLUDED.has_issues
	`
	_, err = s.pool.Exec(ctx, query,
		run.ID,
		run.StartedAt,
		run.Duration.Milliseconds(),
		run.ReferenceURL,
		run.ReferenceDialect,
		run.SampleURL,
		run.SampleDialect,
		run.Entities,
		run.SafeEntities,
		issuesJSON,
		run.HasIssues,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id
func (s *PGStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM crosscheck_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (s *PGStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM crosscheck_runs ORDER BY started_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*Run, error) {
	run := &Run{}
	var durationMS int64
	var issuesJSON []byte
	err := row.Scan(
		&run.ID,
		&run.StartedAt,
		&durationMS,
		&run.ReferenceURL,
		&run.ReferenceDialect,
		&run.SampleURL,
		&run.SampleDialect,
		&run.Entities,
		&run.SafeEntities,
		&issuesJSON,
		&run.HasIssues,
	)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &run.Issues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
		}
	}
	return run, nil
}
