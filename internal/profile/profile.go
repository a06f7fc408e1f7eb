// Package profile provides named run presets loaded from profiles.toml.
// A profile bundles the trim and batch knobs for a recurring maintenance
// window so operators do not retype a flag wall every month.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/shearops/shear/internal/engine"
)

// FileName is the presets file inside the shear config directory.
const FileName = "profiles.toml"

// Profile is one named run preset. Zero-valued fields are "not set"
// and leave the corresponding parameter alone when applied, so the
// booleans can only switch behavior on, never force it off.
type Profile struct {
	Description     string `toml:"description,omitempty"`
	OlderThanDays   int    `toml:"older_than_days,omitempty"`
	Library         string `toml:"library,omitempty"`
	LibraryList     string `toml:"library_list,omitempty"`
	Delete          bool   `toml:"delete,omitempty"`
	BatchPercent    int    `toml:"batch_percent,omitempty"`
	MaxBatchMinutes int    `toml:"max_batch_minutes,omitempty"`
	AutoContinue    bool   `toml:"auto_continue,omitempty"`
	NoBatching      bool   `toml:"no_batching,omitempty"`
	ChunkSize       int    `toml:"chunk_size,omitempty"`
	ChunkPauseMs    int    `toml:"chunk_pause_ms,omitempty"`
	MaxRetries      int    `toml:"max_retries,omitempty"`
}

// Builtin profiles are compiled into the binary. User profiles with
// the same name override them.
var Builtin = map[string]Profile{
	"gentle": {
		Description:  "small batches, confirm between each",
		BatchPercent: 10,
	},
	"overnight": {
		Description:     "large unattended window",
		BatchPercent:    100,
		MaxBatchMinutes: 30,
		AutoContinue:    true,
	},
}

type presetsFile struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Apply lays the profile's set fields over params. Explicit flags are
// resolved by the caller afterwards and win over the profile.
func (p Profile) Apply(params engine.Params) engine.Params {
	if p.OlderThanDays > 0 {
		params.OlderThanDays = p.OlderThanDays
	}
	if p.Library != "" {
		params.LibraryTitle = p.Library
	}
	if p.Delete {
		params.DeleteRequested = true
	}
	if p.BatchPercent > 0 {
		params.BatchPercent = p.BatchPercent
	}
	if p.MaxBatchMinutes > 0 {
		params.MaxBatchMinutes = p.MaxBatchMinutes
	}
	if p.AutoContinue {
		params.AutoContinue = true
	}
	if p.NoBatching {
		params.BypassBatching = true
	}
	if p.ChunkSize > 0 {
		params.ChunkSize = p.ChunkSize
	}
	if p.ChunkPauseMs > 0 {
		params.ChunkPause = time.Duration(p.ChunkPauseMs) * time.Millisecond
	}
	if p.MaxRetries > 0 {
		params.MaxAttempts = p.MaxRetries
	}
	return params
}

// loadUser reads user profiles from dir/profiles.toml. A missing file
// is fine and returns nil.
func loadUser(dir string) (map[string]Profile, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path) // #nosec G304 - path built from the config dir
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}

	var f presetsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return f.Profiles, nil
}

// All returns merged built-in and user profiles.
func All(dir string) (map[string]Profile, error) {
	result := make(map[string]Profile, len(Builtin))
	for name, p := range Builtin {
		result[name] = p
	}
	user, err := loadUser(dir)
	if err != nil {
		return nil, err
	}
	for name, p := range user {
		result[name] = p
	}
	return result, nil
}

// Get looks up one profile by name, user profiles first.
func Get(dir, name string) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	all, err := All(dir)
	if err != nil {
		return Profile{}, err
	}
	p, ok := all[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(Names(all), ", "))
	}
	return p, nil
}

// Save adds or updates a user profile in dir/profiles.toml.
func Save(dir, name string, p Profile) error {
	user, err := loadUser(dir)
	if err != nil {
		return err
	}
	if user == nil {
		user = make(map[string]Profile)
	}
	user[strings.ToLower(strings.TrimSpace(name))] = p

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, FileName)) // #nosec G304 - path built from the config dir
	if err != nil {
		return fmt.Errorf("create %s: %w", FileName, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(presetsFile{Profiles: user}); err != nil {
		return fmt.Errorf("encode %s: %w", FileName, err)
	}
	return nil
}

// Names returns the sorted profile names.
func Names(all map[string]Profile) []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
