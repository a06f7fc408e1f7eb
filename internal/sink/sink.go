// Package sink writes the run's CSV audit logs: one row per planned or
// executed version delete, and one row per library size snapshot.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shearops/shear/internal/engine"
)

var actionHeader = []string{
	"Timestamp", "Action", "Library", "Item",
	"VersionID", "VersionLabel", "VersionCreated", "Result", "Message",
}

var sizeHeader = []string{
	"Timestamp", "RunID", "Site", "Library", "Phase", "Bytes", "MB",
}

// openAppend opens path for appending, creating parent directories as
// needed. The bool reports whether the file is empty, which is when
// the CSV header belongs at the top.
func openAppend(path string) (*os.File, bool, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, false, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // #nosec G304 - controlled path
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log for append: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("failed to stat log: %w", err)
	}
	return f, info.Size() == 0, nil
}

// ActionLog appends engine actions to a CSV file. Rows are flushed as
// they arrive so a crashed run keeps everything already decided.
// Single writer only; the engine runs on one logical thread.
type ActionLog struct {
	f *os.File
	w *csv.Writer
}

var _ engine.ActionSink = (*ActionLog)(nil)

// OpenActionLog opens or creates the action log at path. A fresh file
// gets the header row; appending to an existing log does not repeat it.
func OpenActionLog(path string) (*ActionLog, error) {
	f, empty, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if empty {
		if err := writeRow(w, actionHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write action log header: %w", err)
		}
	}
	return &ActionLog{f: f, w: w}, nil
}

// Record appends one action row.
func (l *ActionLog) Record(a engine.Action) error {
	row := []string{
		a.Time.UTC().Format(time.RFC3339),
		string(a.Mode),
		a.Library,
		a.ItemPath,
		strconv.Itoa(a.Version.ID),
		a.Version.Label,
		a.Version.Created.UTC().Format(time.RFC3339),
		string(a.Result),
		a.Message,
	}
	if err := writeRow(l.w, row); err != nil {
		return fmt.Errorf("failed to write action row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *ActionLog) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		_ = l.f.Close()
		return err
	}
	return l.f.Close()
}

// SizeLog appends library size snapshots to a CSV file. Bytes are
// recorded raw plus a rounded MB column for humans.
type SizeLog struct {
	f *os.File
	w *csv.Writer
}

var _ engine.SizeSink = (*SizeLog)(nil)

// OpenSizeLog opens or creates the size log at path.
func OpenSizeLog(path string) (*SizeLog, error) {
	f, empty, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if empty {
		if err := writeRow(w, sizeHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write size log header: %w", err)
		}
	}
	return &SizeLog{f: f, w: w}, nil
}

// Snapshot appends one size row.
func (l *SizeLog) Snapshot(s engine.SizeRecord) error {
	row := []string{
		s.Time.UTC().Format(time.RFC3339),
		s.RunID,
		s.Site,
		s.Library,
		string(s.Phase),
		strconv.FormatInt(s.Bytes, 10),
		fmt.Sprintf("%.2f", float64(s.Bytes)/(1024*1024)),
	}
	if err := writeRow(l.w, row); err != nil {
		return fmt.Errorf("failed to write size row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *SizeLog) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		_ = l.f.Close()
		return err
	}
	return l.f.Close()
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
