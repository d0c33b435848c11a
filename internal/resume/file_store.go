package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jonathan/invite-agent/internal/logging"
	"github.com/jonathan/invite-agent/internal/schemas"
	"github.com/jonathan/invite-agent/internal/types"
)

const (
	storeDirMode    = 0o755
	storeFileMode   = 0o644
	storeFilePrefix = "processed_urls_"
	storeFileSuffix = ".json"
	tempFilePattern = ".processed_urls-*.tmp"
)

// errCorruptStore marks a store file that was read but cannot be trusted.
var errCorruptStore = errors.New("corrupt store file")

// FileStore keeps one JSON file per account in Dir.
// Every Record rewrites the whole file through a temp file and rename.
type FileStore struct {
	Dir    string
	Logger *slog.Logger
	// Now defaults to time.Now
	Now func() time.Time

	readFile func(name string) ([]byte, error)
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	return &FileStore{Dir: dir, Logger: logging.OrDiscard(logger), Now: time.Now}
}

// Path returns the file holding account's records.
func (s *FileStore) Path(account string) string {
	return filepath.Join(s.Dir, storeFilePrefix+SafeAccountName(account)+storeFileSuffix)
}

// Load returns account's records, or an empty map when the file is missing or corrupt.
func (s *FileStore) Load(_ context.Context, account string) types.Records {
	logger := s.logger().With("account", account)

	records, err := s.read(account)
	if err != nil {
		logger.Error("failed to load processed profiles, starting fresh", "error", err)
		return types.Records{}
	}
	if len(records) == 0 {
		logger.Debug("no processed profiles found, starting fresh")
	} else {
		logger.Debug("loaded processed profiles", "count", len(records))
	}
	return records
}

// Record sets the outcome of id to outcome and persists the whole map.
func (s *FileStore) Record(_ context.Context, account string, id types.ProfileID, outcome types.Outcome) error {
	if !outcome.Valid() {
		return &PersistenceError{Account: account, Message: fmt.Sprintf("refusing to record outcome %q", outcome)}
	}

	records, err := s.read(account)
	switch {
	case errors.Is(err, errCorruptStore):
		// A corrupt file is replaced rather than blocking every later write
		s.logger().Warn("overwriting corrupt resume store", "account", account, "error", err)
		records = types.Records{}
	case err != nil:
		return err
	}

	records[id] = types.ResumeRecord{Status: outcome, Timestamp: types.NewTimestamp(s.now())}
	if err := s.write(account, records); err != nil {
		return err
	}

	s.logger().Debug("saved profile status", "account", account, "profile", id, "status", outcome)
	return nil
}

// Reset removes records of account: all of them, or only those with the given outcomes.
func (s *FileStore) Reset(_ context.Context, account string, outcomes ...types.Outcome) (int, error) {
	records, err := s.read(account)
	if err != nil {
		return 0, err
	}

	removed := 0
	for id, rec := range records {
		if len(outcomes) == 0 || slices.Contains(outcomes, rec.Status) {
			delete(records, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.write(account, records)
}

func (s *FileStore) read(account string) (types.Records, error) {
	readFile := s.readFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(s.Path(account))
	if errors.Is(err, os.ErrNotExist) {
		return types.Records{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Account: account, Message: "failed to read store file", Cause: err}
	}

	if err := schemas.ValidateResumeStore(data); err != nil {
		return nil, &PersistenceError{Account: account, Message: "store file failed validation", Cause: errors.Join(errCorruptStore, err)}
	}

	records := types.Records{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &PersistenceError{Account: account, Message: "failed to parse store file", Cause: errors.Join(errCorruptStore, err)}
	}
	return records, nil
}

func (s *FileStore) write(account string, records types.Records) error {
	path := s.Path(account)
	fail := func(msg string, err error) error {
		return &PersistenceError{Account: account, Message: msg, Cause: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fail("failed to create store directory", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fail("failed to encode records", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fail("failed to create temp store file", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fail("failed to write temp store file", err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fail("failed to sync temp store file", err)
	}
	if err := tempFile.Chmod(storeFileMode); err != nil {
		_ = tempFile.Close()
		return fail("failed to chmod temp store file", err)
	}
	if err := tempFile.Close(); err != nil {
		return fail("failed to close temp store file", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fail("failed to replace store file", err)
	}
	cleanup = false

	return nil
}

func (s *FileStore) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *FileStore) logger() *slog.Logger {
	return logging.OrDiscard(s.Logger)
}
