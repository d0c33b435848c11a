package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/invite-agent/internal/types"
)

// CreateRun records the start of a workflow phase under runID
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, account, phase string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO invite_runs (id, account, phase, status)
		 VALUES ($1, $2, $3, $4)`,
		runID, account, phase, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun stores the final status and tally of a workflow phase
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, tally types.Tally) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE invite_runs
		 SET status = $1, total_profiles = $2, already_connected = $3,
		     attempted = $4, succeeded = $5, completed_at = NOW()
		 WHERE id = $6`,
		status, tally.Total, tally.AlreadyConnected, tally.Attempted, tally.Succeeded, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, account, phase, status, total_profiles, already_connected,
		        attempted, succeeded, created_at, completed_at
		 FROM invite_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Account, &run.Phase, &run.Status, &run.TotalProfiles,
		&run.AlreadyConnected, &run.Attempted, &run.Succeeded, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}
