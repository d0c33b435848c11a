package types

import (
	"encoding/json"
	"sort"
	"time"
)

// TimestampLayout is the persisted layout of ResumeRecord timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a time.Time persisted in TimestampLayout (local time, second precision).
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the persisted precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// MarshalJSON renders the timestamp as "YYYY-MM-DD HH:MM:SS".
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(TimestampLayout))
}

// UnmarshalJSON parses "YYYY-MM-DD HH:MM:SS" in the local time zone.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ResumeRecord is the last known outcome for one profile of one account.
type ResumeRecord struct {
	Status    Outcome   `json:"status"`
	Timestamp Timestamp `json:"timestamp"`
}

// Records maps each processed profile to its last known outcome.
// A missing key means the profile is unprocessed.
type Records map[ProfileID]ResumeRecord

// Has reports whether id is recorded with outcome o.
func (r Records) Has(id ProfileID, o Outcome) bool {
	rec, ok := r[id]
	return ok && rec.Status == o
}

// Counts returns the number of records per outcome.
func (r Records) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(AllOutcomes))
	for _, rec := range r {
		counts[rec.Status]++
	}
	return counts
}

// SortedIDs returns the recorded profile ids in lexical order.
func (r Records) SortedIDs() []ProfileID {
	ids := make([]ProfileID, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// InviteAttempt describes one invitation; a nil NoteText sends without a note.
type InviteAttempt struct {
	NoteText *string
}

// HasNote reports whether a non-empty note should be attached.
func (a InviteAttempt) HasNote() bool {
	return a.NoteText != nil && *a.NoteText != ""
}
