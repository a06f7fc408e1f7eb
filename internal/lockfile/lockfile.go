// Package lockfile guards against two trimming runs on the same state
// directory. Overlapping runs would double-delete and corrupt the batch
// accounting, so the second run fails fast with ErrLocked.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the lock file inside the state directory.
const FileName = "shear.lock"

// ErrLocked means another run holds the lock.
var ErrLocked = errors.New("another shear run is already active")

// Info identifies the run holding the lock, for error messages and
// `shear status`.
type Info struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is a held run lock. Release it when the run ends; the OS also
// drops it if the process dies, so a crashed run never wedges the next.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes the exclusive run lock for dir, creating the directory
// if needed.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644) // #nosec G304 - controlled path
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := flockExclusive(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	info := Info{PID: os.Getpid(), StartedAt: time.Now().UTC()}
	data, err := json.Marshal(info)
	if err == nil {
		_ = f.Truncate(0)
		_, _ = f.WriteAt(data, 0)
	}
	return &Lock{f: f, path: path}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := flockUnlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

// ReadInfo reports who holds (or last held) the lock in dir.
func ReadInfo(dir string) (Info, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName)) // #nosec G304 - controlled path
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("failed to parse lock file: %w", err)
	}
	return info, nil
}
