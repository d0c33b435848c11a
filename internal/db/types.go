package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusStopped   = "stopped"
	RunStatusFailed    = "failed"
)

// Run represents one workflow phase execution
type Run struct {
	ID               uuid.UUID  `json:"id"`
	Account          string     `json:"account"`
	Phase            string     `json:"phase"`
	Status           string     `json:"status"`
	TotalProfiles    int        `json:"total_profiles"`
	AlreadyConnected int        `json:"already_connected"`
	Attempted        int        `json:"attempted"`
	Succeeded        int        `json:"succeeded"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}
