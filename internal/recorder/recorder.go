package recorder

import (
	"time"

	"MarketFusion/internal/fault"
)

// Run statuses.
const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
	StatusFailed   = "FAILED"
)

// RunRecord is the journal entry of one pipeline run. It holds run metadata
// only, never the fused rows.
type RunRecord struct {
	ID         string
	Symbol     string
	Layout     string
	Output     string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Rows       int
	Filled     int
	ErrorKind  string
	Error      string
	Warnings   []fault.Entry
}

// Recorder persists run history for later inspection.
type Recorder interface {
	RecordRun(run *RunRecord) error
	Close() error
}
