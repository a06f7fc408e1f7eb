package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/shearops/shear/internal/store"
)

// Delete retry and throttle tuning. Delays run 2s, 4s, 8s, 16s between
// attempts, five attempts total by default; randomization stays off so
// operators can predict worst-case batch time. The inter-chunk pause
// gets up to chunkPauseJitter extra so chunk boundaries do not align
// with server-side throttling windows.
const (
	deleteRetryInitial = 2 * time.Second
	DefaultMaxAttempts = 5
	DefaultChunkSize   = 50
	DefaultChunkPause  = 250 * time.Millisecond
	chunkPauseJitter   = 250 * time.Millisecond
)

// newDeleteBackoff returns the retry policy for one chunk. BackOff
// implementations are stateful; always build a fresh one per chunk.
func newDeleteBackoff(maxAttempts int) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = deleteRetryInitial
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, uint64(maxAttempts-1))
}

// processItem runs the selector and, in delete mode, the chunked
// deletes for one item. Version-load failures skip the item and keep
// the run going; an item with nothing deletable is the expected common
// case and stays silent.
func (e *Engine) processItem(ctx context.Context, item store.Item, cutoff time.Time, mode Mode, p Params, sum *Summary) {
	sum.FilesScanned++

	versions, err := e.Store.Versions(ctx, item)
	if err != nil {
		sum.ItemsSkipped++
		e.events().WithFields(log.Fields{
			"item":  item.ServerRelativePath,
			"error": err.Error(),
		}).Warn("skipping item: version load failed")
		return
	}

	deletable := SelectDeletable(versions, cutoff)
	if len(deletable) == 0 {
		return
	}
	sum.FilesEligible++
	sum.VersionsEligible += len(deletable)

	if mode == ModeDryRun {
		for _, v := range deletable {
			e.record(Action{
				Time:     e.now(),
				Mode:     mode,
				Library:  item.LibraryTitle,
				ItemPath: item.ServerRelativePath,
				Version:  v,
				Result:   ResultPlanned,
			})
		}
		return
	}

	for start := 0; start < len(deletable); start += p.ChunkSize {
		end := start + p.ChunkSize
		if end > len(deletable) {
			end = len(deletable)
		}
		if start > 0 {
			e.pause(p.ChunkPause)
		}
		e.deleteChunk(ctx, item, deletable[start:end], mode, p.MaxAttempts, sum)
	}
}

// deleteChunk issues one DeleteVersions call with retry, then counts
// and records the outcome for every version in the chunk. Retries only
// cover transient failures; the store's policy rejections are
// deterministic and come back immediately as permanent.
func (e *Engine) deleteChunk(ctx context.Context, item store.Item, chunk []store.Version, mode Mode, maxAttempts int, sum *Summary) {
	ids := make([]int, len(chunk))
	for i, v := range chunk {
		ids[i] = v.ID
	}

	op := func() error {
		err := e.Store.DeleteVersions(ctx, item, ids)
		if err != nil && store.IsRetryable(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	bo := backoff.WithContext(newDeleteBackoff(maxAttempts), ctx)
	err := backoff.RetryNotifyWithTimer(op, bo, nil, e.Timer)

	switch {
	case err == nil:
		sum.VersionsDeleted += len(chunk)
		e.recordChunk(item, chunk, mode, ResultDeleted, "")
	case store.IsPolicyBlocked(err):
		sum.PolicyBlocked += len(chunk)
		e.events().WithFields(log.Fields{
			"item":     item.ServerRelativePath,
			"versions": len(chunk),
			"reason":   err.Error(),
		}).Warn("delete refused: versions protected by retention, hold, or record")
		e.recordChunk(item, chunk, mode, ResultFailed, err.Error())
	default:
		sum.DeletesFailed += len(chunk)
		e.events().WithFields(log.Fields{
			"item":     item.ServerRelativePath,
			"versions": len(chunk),
			"error":    err.Error(),
		}).Error("delete chunk failed")
		e.recordChunk(item, chunk, mode, ResultFailed, err.Error())
	}
}

func (e *Engine) recordChunk(item store.Item, chunk []store.Version, mode Mode, result Result, message string) {
	for _, v := range chunk {
		e.record(Action{
			Time:     e.now(),
			Mode:     mode,
			Library:  item.LibraryTitle,
			ItemPath: item.ServerRelativePath,
			Version:  v,
			Result:   result,
			Message:  message,
		})
	}
}

func (e *Engine) record(a Action) {
	if e.Actions == nil {
		return
	}
	if err := e.Actions.Record(a); err != nil {
		e.events().WithField("error", err.Error()).Warn("action log write failed")
	}
}

func (e *Engine) pause(base time.Duration) {
	jitter := time.Duration(rand.Int63n(int64(chunkPauseJitter) + 1))
	e.sleep(base + jitter)
}
