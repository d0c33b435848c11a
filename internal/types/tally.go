package types

import "time"

// Tally holds the counters of one workflow phase. It is never persisted.
type Tally struct {
	Total            int           `json:"total_profiles"`
	AlreadyConnected int           `json:"already_connected"`
	Attempted        int           `json:"attempted"`
	Succeeded        int           `json:"succeeded"`
	NoInviteOption   int           `json:"no_invite_option"`
	NoConnectOption  int           `json:"no_connect_option"`
	Skipped          int           `json:"skipped"`
	Errored          int           `json:"errored"`
	Duration         time.Duration `json:"duration"`
}

// Remaining is the number of profiles not known to be connected.
func (t Tally) Remaining() int {
	if t.Total < t.AlreadyConnected {
		return 0
	}
	return t.Total - t.AlreadyConnected
}

// Add records an outcome in the matching counter.
func (t *Tally) Add(o Outcome) {
	switch o {
	case OutcomeAlreadyConnected:
		t.AlreadyConnected++
	case OutcomeConnectionSent:
		t.Succeeded++
	case OutcomeNoInviteOption:
		t.NoInviteOption++
	case OutcomeNoConnectOption:
		t.NoConnectOption++
	}
}
