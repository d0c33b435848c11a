// Package types provides type definitions shared by the invitation workflow,
// its resume store backends and the CLI.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
)

// ProfileID is the opaque key of one target profile (a profile URL).
type ProfileID string

// Outcome is the terminal classification of processing one profile for one account.
type Outcome string

// Outcome values. The string form is what gets persisted.
const (
	OutcomeAlreadyConnected Outcome = "Already Connected"
	OutcomeConnectionSent   Outcome = "Connection Sent"
	OutcomeNoInviteOption   Outcome = "No Invite Option"
	OutcomeNoConnectOption  Outcome = "No Connect Option"
)

// AllOutcomes lists every persistable outcome in report order.
var AllOutcomes = []Outcome{
	OutcomeAlreadyConnected,
	OutcomeConnectionSent,
	OutcomeNoInviteOption,
	OutcomeNoConnectOption,
}

// Valid reports whether o is one of the persistable outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeAlreadyConnected, OutcomeConnectionSent, OutcomeNoInviteOption, OutcomeNoConnectOption:
		return true
	}
	return false
}

// Final reports whether a profile with this outcome never needs another send attempt.
func (o Outcome) Final() bool {
	return o == OutcomeAlreadyConnected || o == OutcomeConnectionSent
}

// Slug returns a lower_snake_case form used for metric labels.
func (o Outcome) Slug() string {
	switch o {
	case OutcomeAlreadyConnected:
		return "already_connected"
	case OutcomeConnectionSent:
		return "connection_sent"
	case OutcomeNoInviteOption:
		return "no_invite_option"
	case OutcomeNoConnectOption:
		return "no_connect_option"
	}
	return "unknown"
}

// ParseOutcome converts a persisted status string to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown outcome %q", s)
	}
	return o, nil
}

// UnmarshalJSON rejects status strings that are not known outcomes.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
