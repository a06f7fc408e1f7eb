package engine

import (
	"time"

	"github.com/shearops/shear/internal/store"
)

// Summary is the outcome of one completed run, early quits included.
// Reclaimed bytes are reported exactly as measured, negative values
// included: clamping would hide concurrent writers adding data while
// the run trimmed versions.
type Summary struct {
	RunID            string              `json:"run_id"`
	Mode             Mode                `json:"mode"`
	Started          time.Time           `json:"started"`
	Finished         time.Time           `json:"finished"`
	Libraries        []string            `json:"libraries"`
	Policy           *store.TenantPolicy `json:"tenant_policy,omitempty"`
	FilesScanned     int                 `json:"files_scanned"`
	FilesEligible    int                 `json:"files_eligible"`
	VersionsEligible int                 `json:"versions_eligible"`
	VersionsDeleted  int                 `json:"versions_deleted"`
	DeletesFailed    int                 `json:"deletes_failed"`
	PolicyBlocked    int                 `json:"policy_blocked"`
	ItemsSkipped     int                 `json:"items_skipped"`
	Batches          int                 `json:"batches"`
	EarlyQuit        bool                `json:"early_quit"`
	BytesBefore      int64               `json:"bytes_before"`
	BytesAfter       int64               `json:"bytes_after"`
	BytesReclaimed   int64               `json:"bytes_reclaimed"`
}

// Elapsed is the wall-clock run time.
func (s *Summary) Elapsed() time.Duration {
	return s.Finished.Sub(s.Started)
}
