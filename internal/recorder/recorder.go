package recorder

import (
	"time"

	"QuantEngine/internal/model"
)

// CycleSummary is one stored evaluation cycle as read back from storage.
type CycleSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Ranked      int       `json:"ranked"`
	Skipped     int       `json:"skipped"`
	PerPosition string    `json:"per_position"`
	Selected    []string  `json:"selected"`
	Error       string    `json:"error,omitempty"`
}

// Recorder persists ranking cycles for later analysis. The simulated equity
// history is session state and is never recorded.
type Recorder interface {
	RecordCycle(c *model.Cycle) error
	RecentCycles(limit int) ([]CycleSummary, error)
	Close() error
}
