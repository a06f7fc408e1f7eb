// Package runstate persists the marker that separates a first run from
// a repeat run, plus the policy-change timestamp the cooldown gate
// reads. One small JSON file, fully overwritten at the end of every
// completed run and never written by blocked or aborted runs.
package runstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// FileName is the state file's name inside the state directory.
const FileName = "state.json"

// State is the persisted run marker.
type State struct {
	// LastDryRunUtc is the UTC completion time of the last completed
	// run of either mode. The field name is part of the on-disk format
	// and predates delete mode; it is kept for compatibility.
	LastDryRunUtc *time.Time `json:"LastDryRunUtc,omitempty"`

	// LastPolicyChangeUtc is written by policy updates and read by the
	// pre-run cooldown check.
	LastPolicyChangeUtc *time.Time `json:"LastPolicyChangeUtc,omitempty"`
}

// HasPriorRun reports whether any run has ever completed.
func (s State) HasPriorRun() bool {
	return s.LastDryRunUtc != nil
}

// DefaultDir returns the per-user state directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "shear"), nil
}

// Path returns the state file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the state file. A missing file is a valid empty state,
// not an error.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path) // #nosec G304 - controlled path from caller
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read state file: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return s, nil
}

// Save atomically replaces the state file via a temp file and rename,
// creating the directory when needed. Timestamps are normalized to UTC
// before writing.
func Save(path string, s State) error {
	if s.LastDryRunUtc != nil {
		utc := s.LastDryRunUtc.UTC()
		s.LastDryRunUtc = &utc
	}
	if s.LastPolicyChangeUtc != nil {
		utc := s.LastPolicyChangeUtc.UTC()
		s.LastPolicyChangeUtc = &utc
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
	}()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if _, err := tempFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := renameWithRetry(tempPath, path, 3, 100*time.Millisecond); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// renameWithRetry renames with exponential backoff for Windows, where a
// scanner or editor holding the target makes os.Rename fail with
// "Access is denied". Elsewhere the first error is returned as is.
func renameWithRetry(oldPath, newPath string, maxRetries int, initialDelay time.Duration) error {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := os.Rename(oldPath, newPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if runtime.GOOS != "windows" {
			break
		}

		if attempt < maxRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return lastErr
}
