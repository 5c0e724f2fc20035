// Package n8nstatus reads workflow execution records from an n8n SQLite
// database and presents them as color-coded terminal reports.
package n8nstatus

import "time"

// PresentationStatus is the derived, user-facing classification of an
// execution, distinct from the raw status token stored in the database.
type PresentationStatus string

const (
	StatusSuccess  PresentationStatus = "success"
	StatusError    PresentationStatus = "error"
	StatusRunning  PresentationStatus = "running"
	StatusWaiting  PresentationStatus = "waiting"
	StatusCanceled PresentationStatus = "canceled"
	StatusUnknown  PresentationStatus = "unknown"
)

// ExecutionRecord is a read-only snapshot of one workflow run as stored in
// the execution_entity table. Pointer fields are nil when the underlying
// column is NULL: StoppedAt while the run is in flight, WorkflowName when
// the referenced workflow has been deleted.
type ExecutionRecord struct {
	ID           string
	WorkflowID   string
	WorkflowName *string
	StartedAt    time.Time
	StoppedAt    *time.Time
	Finished     bool
	Status       string
	Mode         string
	RetryOf      *string
}

// FilterCriteria narrows a FetchExecutions call. The zero value (with a
// positive Limit) returns the most recent executions unfiltered. When ID is
// set all other filters are ignored.
type FilterCriteria struct {
	ID                    string
	WorkflowNameSubstring string
	ErrorsOnly            bool
	RunningOnly           bool
	WaitingOnly           bool
	Limit                 int
}
