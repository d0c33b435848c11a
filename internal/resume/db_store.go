package resume

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonathan/invite-agent/internal/logging"
	"github.com/jonathan/invite-agent/internal/types"
)

// RecordsDB is the subset of *db.DB used by DBStore.
type RecordsDB interface {
	LoadResumeRecords(ctx context.Context, account string) (types.Records, error)
	UpsertResumeRecord(ctx context.Context, account string, id types.ProfileID, rec types.ResumeRecord) error
	DeleteResumeRecords(ctx context.Context, account string, statuses ...types.Outcome) (int64, error)
}

// DBStore keeps records in PostgreSQL. Accounts are keyed by SafeAccountName,
// the same projection the file backend uses for file names.
type DBStore struct {
	DB     RecordsDB
	Logger *slog.Logger
	Now    func() time.Time
}

// NewDBStore creates a DBStore over database.
func NewDBStore(database RecordsDB, logger *slog.Logger) *DBStore {
	return &DBStore{DB: database, Logger: logging.OrDiscard(logger), Now: time.Now}
}

// Load returns account's records, or an empty map when the query fails.
func (s *DBStore) Load(ctx context.Context, account string) types.Records {
	records, err := s.DB.LoadResumeRecords(ctx, SafeAccountName(account))
	if err != nil {
		logging.OrDiscard(s.Logger).Error("failed to load processed profiles, starting fresh",
			"account", account, "error", err)
		return types.Records{}
	}
	return records
}

// Record upserts the outcome of id.
func (s *DBStore) Record(ctx context.Context, account string, id types.ProfileID, outcome types.Outcome) error {
	if !outcome.Valid() {
		return &PersistenceError{Account: account, Message: "refusing to record invalid outcome"}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rec := types.ResumeRecord{Status: outcome, Timestamp: types.NewTimestamp(now())}
	if err := s.DB.UpsertResumeRecord(ctx, SafeAccountName(account), id, rec); err != nil {
		return &PersistenceError{Account: account, Message: "failed to store record", Cause: err}
	}
	return nil
}

// Reset deletes account's records, optionally only those with the given outcomes.
func (s *DBStore) Reset(ctx context.Context, account string, outcomes ...types.Outcome) (int, error) {
	n, err := s.DB.DeleteResumeRecords(ctx, SafeAccountName(account), outcomes...)
	if err != nil {
		return 0, &PersistenceError{Account: account, Message: "failed to delete records", Cause: err}
	}
	return int(n), nil
}
