package recorder

import (
	"time"

	"FundQuant/internal/model"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusOK     = "OK"
	StatusFailed = "FAILED"
)

// RunEvent describes one refresh and analysis cycle.
type RunEvent struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Provider     string
	Symbols      []string
	RecordsAdded int
	Status       string // StatusOK or StatusFailed
	Error        string
}

// NewRunID returns a fresh identifier linking a run to the snapshots it produced.
func NewRunID() string {
	return uuid.NewString()
}

// Recorder persists computed reports for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	RecordSeries(runID string, r *model.SeriesReport) error
	RecordBond(runID string, r *model.BondReport) error
	Close() error
}
