package engine

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/shearops/shear/internal/store"
)

// snapshotBytes sums the storage bytes of the target libraries and
// emits one size record per library. Snapshots are best-effort: a
// library whose metrics cannot be read counts as zero and is warned,
// not fatal, because size accounting never gates the run.
func (e *Engine) snapshotBytes(ctx context.Context, runID string, targets []store.Library, phase Phase) int64 {
	var total int64
	for _, lib := range targets {
		n, err := e.Store.LibraryStorageBytes(ctx, lib)
		if err != nil {
			e.events().WithFields(log.Fields{
				"library": lib.Title,
				"phase":   string(phase),
				"error":   err.Error(),
			}).Warn("storage snapshot failed, counting library as 0 bytes")
			continue
		}
		total += n
		if e.Sizes != nil {
			rec := SizeRecord{
				Time:    e.now(),
				RunID:   runID,
				Site:    e.Store.BaseURL(),
				Library: lib.Title,
				Phase:   phase,
				Bytes:   n,
			}
			if err := e.Sizes.Snapshot(rec); err != nil {
				e.events().WithField("error", err.Error()).Warn("size log write failed")
			}
		}
	}
	return total
}
