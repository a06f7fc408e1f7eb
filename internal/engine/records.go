package engine

import (
	"time"

	"github.com/shearops/shear/internal/store"
)

// Result is the outcome recorded for one version in the action log.
type Result string

const (
	ResultPlanned Result = "Planned"
	ResultDeleted Result = "Deleted"
	ResultFailed  Result = "Failed"
)

// Action is one action-log record: one version the run planned to
// delete, deleted, or failed to delete. Dry-run and delete-mode records
// share this shape so the two logs diff cleanly.
type Action struct {
	Time     time.Time
	Mode     Mode
	Library  string
	ItemPath string
	Version  store.Version
	Result   Result
	Message  string
}

// ActionSink receives action records as they happen.
type ActionSink interface {
	Record(a Action) error
}

// Phase tags a size snapshot as taken before or after the batch loop.
type Phase string

const (
	PhaseBefore Phase = "Before"
	PhaseAfter  Phase = "After"
)

// SizeRecord is one per-library storage reading.
type SizeRecord struct {
	Time    time.Time
	RunID   string
	Site    string
	Library string
	Phase   Phase
	Bytes   int64
}

// SizeSink receives size snapshots.
type SizeSink interface {
	Snapshot(s SizeRecord) error
}
