// Package resume persists the per-account outcome of every processed profile
// so that repeated runs are idempotent and interrupted runs can resume.
package resume

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jonathan/invite-agent/internal/types"
)

// Store is the durable per-account history of profile outcomes.
// Load never fails: unreadable history is reported as empty.
type Store interface {
	Load(ctx context.Context, account string) types.Records
	Record(ctx context.Context, account string, id types.ProfileID, outcome types.Outcome) error
	Reset(ctx context.Context, account string, outcomes ...types.Outcome) (int, error)
}

// PersistenceError represents a failure to read or write stored records
type PersistenceError struct {
	Account string
	Message string
	Cause   error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume store error for %s: %s: %v", e.Account, e.Message, e.Cause)
	}
	return fmt.Sprintf("resume store error for %s: %s", e.Account, e.Message)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// SafeAccountName projects an account name onto its letters and digits, order preserved.
// "o'brien 23" becomes "obrien23".
func SafeAccountName(account string) string {
	var sb strings.Builder
	for _, r := range account {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
