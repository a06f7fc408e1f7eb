// Package engine implements the batch-bounded version trimming run:
// safety gate, target resolution, item enumeration, per-version
// selection against the age cutoff, chunked deletes with retry, size
// accounting, and the run summary.
//
// The engine runs on a single logical thread. The store rate-limits
// server-side, so one in-flight request stream with backoff beats
// parallel workers fighting the throttle.
package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/shearops/shear/internal/prompt"
	"github.com/shearops/shear/internal/runstate"
	"github.com/shearops/shear/internal/store"
)

// DefaultOlderThanDays is the age cutoff applied when none is given.
const DefaultOlderThanDays = 45

// Params are the knobs of one run. Zero values fall back to the
// package defaults; an out-of-range batch percent is corrected rather
// than rejected.
type Params struct {
	OlderThanDays   int
	LibraryTitle    string
	LibraryFilter   []string
	DeleteRequested bool
	BatchPercent    int
	MaxBatchMinutes int
	AutoContinue    bool
	BypassBatching  bool
	ChunkSize       int
	ChunkPause      time.Duration
	MaxAttempts     int
}

func (p Params) normalized() Params {
	if p.OlderThanDays <= 0 {
		p.OlderThanDays = DefaultOlderThanDays
	}
	p.BatchPercent = NormalizePercent(p.BatchPercent)
	if p.MaxBatchMinutes <= 0 {
		p.MaxBatchMinutes = DefaultMaxBatchMinutes
	}
	if p.ChunkSize <= 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if p.ChunkPause < 0 {
		p.ChunkPause = DefaultChunkPause
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	return p
}

// Engine wires one run's collaborators. Store and StatePath are
// required; everything else has a working zero value. Prompt is
// required for delete mode, which declines without one.
type Engine struct {
	Store     store.Client
	Actions   ActionSink
	Sizes     SizeSink
	Events    *log.Logger
	Prompt    prompt.Confirmer
	Progress  io.Writer
	StatePath string

	// Test seams. Nil means the real thing.
	Now      func() time.Time
	Sleep    func(time.Duration)
	Timer    backoff.Timer
	NewRunID func() string
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) sleep(d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(d)
		return
	}
	time.Sleep(d)
}

var discardLog = func() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}()

func (e *Engine) events() *log.Logger {
	if e.Events != nil {
		return e.Events
	}
	return discardLog
}

func (e *Engine) progress() io.Writer {
	if e.Progress != nil {
		return e.Progress
	}
	return io.Discard
}

func (e *Engine) runID() string {
	if e.NewRunID != nil {
		return e.NewRunID()
	}
	return uuid.NewString()
}

// Run executes one trimming run and returns its summary. The aborting
// branches (cooldown, declined confirmation, no targets, no items,
// enumeration failure) return an error instead: they write no state
// and have mutated nothing. An early quit between batches is a
// completed run and still returns a summary.
func (e *Engine) Run(ctx context.Context, p Params) (*Summary, error) {
	p = p.normalized()
	start := e.now().UTC()
	runID := e.runID()

	st, err := runstate.Load(e.StatePath)
	if err != nil {
		return nil, err
	}

	dec := Decide(st.HasPriorRun(), p.DeleteRequested, st.LastPolicyChangeUtc, start)
	if dec.Blocked {
		return nil, fmt.Errorf("%w: %s", ErrCooldown, dec.Reason)
	}
	if dec.Reason != "" {
		fmt.Fprintln(e.progress(), dec.Reason)
	}
	if dec.Mode == ModeDelete {
		if e.Prompt == nil {
			return nil, fmt.Errorf("%w: no confirmation channel", ErrDeclined)
		}
		ok, err := e.Prompt.ConfirmDelete(ConfirmPhrase)
		if err != nil {
			return nil, fmt.Errorf("collecting confirmation: %w", err)
		}
		if !ok {
			return nil, ErrDeclined
		}
	}

	sum := &Summary{RunID: runID, Mode: dec.Mode, Started: start}
	e.events().WithFields(log.Fields{
		"run_id": runID,
		"mode":   string(dec.Mode),
		"site":   e.Store.BaseURL(),
	}).Info("run started")

	// Advisory: shown so the operator sees what the tenant enforces on
	// top of the age cutoff. The store rejects protected deletes either
	// way, so a failed read only costs the display.
	if policy, perr := e.Store.Policy(ctx); perr != nil {
		e.events().WithField("error", perr.Error()).Warn("could not read tenant policy")
	} else {
		sum.Policy = &policy
		fmt.Fprintf(e.progress(), "Tenant policy: auto-expiration=%v, major version limit=%d, expire after %d days\n",
			policy.AutoExpiration, policy.MajorVersionLimit, policy.ExpireAfterDays)
	}

	libs, err := e.Store.Libraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing libraries: %w", err)
	}
	targets, err := ResolveTargets(p.LibraryTitle, p.LibraryFilter, libs)
	if err != nil {
		return nil, err
	}
	for _, lib := range targets {
		sum.Libraries = append(sum.Libraries, lib.Title)
	}
	fmt.Fprintf(e.progress(), "→ Targets: %s\n", strings.Join(sum.Libraries, ", "))

	sum.BytesBefore = e.snapshotBytes(ctx, runID, targets, PhaseBefore)

	items, err := e.enumerate(ctx, targets)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	// The cutoff is fixed here, once, for the whole run.
	cutoff := start.Add(-time.Duration(p.OlderThanDays) * 24 * time.Hour)
	quota := BatchQuota(len(items), p.BatchPercent, p.BypassBatching)
	plan := Partition(len(items), p.BatchPercent, p.BypassBatching)
	fmt.Fprintf(e.progress(), "→ %d items, versions older than %s are eligible, %d batch(es) of up to %d item(s)\n",
		len(items), cutoff.Format(time.RFC3339), len(plan), quota)

	idx := 0
	for idx < len(items) {
		sum.Batches++
		window := NewWindow(e.now(), p.MaxBatchMinutes, p.BypassBatching)
		taken := 0
		for idx < len(items) && taken < quota {
			if taken > 0 && window.Exceeded(e.now()) {
				fmt.Fprintf(e.progress(), "Batch %d time window expired after %d item(s); remainder moves to the next batch\n",
					sum.Batches, taken)
				break
			}
			e.processItem(ctx, items[idx], cutoff, dec.Mode, p, sum)
			idx++
			taken++
		}
		fmt.Fprintf(e.progress(), "✓ Batch %d done: %d/%d items processed\n", sum.Batches, idx, len(items))
		if idx >= len(items) {
			break
		}
		if !p.AutoContinue && e.Prompt != nil {
			cont, perr := e.Prompt.ContinueBatch(idx, len(items))
			if perr != nil {
				e.events().WithField("error", perr.Error()).Warn("batch prompt failed, quitting early")
				cont = false
			}
			if !cont {
				sum.EarlyQuit = true
				fmt.Fprintf(e.progress(), "Stopping early: %d/%d items left untouched\n", len(items)-idx, len(items))
				break
			}
		}
	}

	sum.BytesAfter = e.snapshotBytes(ctx, runID, targets, PhaseAfter)
	sum.BytesReclaimed = sum.BytesBefore - sum.BytesAfter

	finished := e.now().UTC()
	sum.Finished = finished
	e.events().WithFields(log.Fields{
		"run_id":           runID,
		"mode":             string(dec.Mode),
		"files_scanned":    sum.FilesScanned,
		"versions_deleted": sum.VersionsDeleted,
		"bytes_reclaimed":  sum.BytesReclaimed,
		"early_quit":       sum.EarlyQuit,
	}).Info("run finished")

	st.LastDryRunUtc = &finished
	if err := runstate.Save(e.StatePath, st); err != nil {
		return sum, fmt.Errorf("saving run state: %w", err)
	}
	return sum, nil
}
