package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/invite-agent/internal/types"
)

// -----------------------------------------------------------------------------
// Resume Records Methods
// -----------------------------------------------------------------------------

// LoadResumeRecords returns every record stored for account
func (db *DB) LoadResumeRecords(ctx context.Context, account string) (types.Records, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT profile_id, status, recorded_at
		 FROM resume_records
		 WHERE account = $1`,
		account,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query resume records: %w", err)
	}
	defer rows.Close()

	records := types.Records{}
	for rows.Next() {
		var profileID, status string
		var recordedAt time.Time
		if err := rows.Scan(&profileID, &status, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume record: %w", err)
		}
		outcome, err := types.ParseOutcome(status)
		if err != nil {
			return nil, fmt.Errorf("invalid resume record for %s: %w", profileID, err)
		}
		records[types.ProfileID(profileID)] = types.ResumeRecord{
			Status:    outcome,
			Timestamp: types.NewTimestamp(recordedAt.Local()),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resume records: %w", err)
	}

	return records, nil
}

// UpsertResumeRecord stores the outcome for one profile, replacing any earlier record
func (db *DB) UpsertResumeRecord(ctx context.Context, account string, id types.ProfileID, rec types.ResumeRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO resume_records (account, profile_id, status, recorded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account, profile_id) DO UPDATE SET status = $3, recorded_at = $4`,
		account, string(id), string(rec.Status), rec.Timestamp.Time,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resume record %s: %w", id, err)
	}
	return nil
}

// DeleteResumeRecords removes records for account. With no statuses every record
// is removed; otherwise only records whose status is listed. Returns the number removed.
func (db *DB) DeleteResumeRecords(ctx context.Context, account string, statuses ...types.Outcome) (int64, error) {
	if len(statuses) == 0 {
		tag, err := db.pool.Exec(ctx, `DELETE FROM resume_records WHERE account = $1`, account)
		if err != nil {
			return 0, fmt.Errorf("failed to delete resume records: %w", err)
		}
		return tag.RowsAffected(), nil
	}

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM resume_records WHERE account = $1 AND status = ANY($2)`,
		account, values,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete resume records: %w", err)
	}
	return tag.RowsAffected(), nil
}
