package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shearops/shear/internal/engine"
)

func TestApplySkipsUnsetFields(t *testing.T) {
	base := engine.Params{
		OlderThanDays: 45,
		BatchPercent:  25,
		ChunkSize:     50,
	}
	p := Profile{BatchPercent: 10, ChunkPauseMs: 500}

	got := p.Apply(base)
	if got.BatchPercent != 10 {
		t.Errorf("BatchPercent = %d, want 10", got.BatchPercent)
	}
	if got.ChunkPause != 500*time.Millisecond {
		t.Errorf("ChunkPause = %v, want 500ms", got.ChunkPause)
	}
	if got.OlderThanDays != 45 || got.ChunkSize != 50 {
		t.Errorf("unset fields changed: %+v", got)
	}
	if got.DeleteRequested || got.AutoContinue || got.BypassBatching {
		t.Errorf("booleans flipped without being set: %+v", got)
	}
}

func TestApplySetsEverything(t *testing.T) {
	p := Profile{
		OlderThanDays:   90,
		Library:         "Contracts",
		Delete:          true,
		BatchPercent:    100,
		MaxBatchMinutes: 30,
		AutoContinue:    true,
		NoBatching:      true,
		ChunkSize:       25,
		ChunkPauseMs:    100,
		MaxRetries:      3,
	}
	got := p.Apply(engine.Params{})
	want := engine.Params{
		OlderThanDays:   90,
		LibraryTitle:    "Contracts",
		DeleteRequested: true,
		BatchPercent:    100,
		MaxBatchMinutes: 30,
		AutoContinue:    true,
		BypassBatching:  true,
		ChunkSize:       25,
		ChunkPause:      100 * time.Millisecond,
		MaxAttempts:     3,
	}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestAllMergesUserOverBuiltin(t *testing.T) {
	dir := t.TempDir()
	content := `[profiles.gentle]
description = "tuned down further"
batch_percent = 5

[profiles.quarterly]
older_than_days = 120
delete = true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	all, err := All(dir)
	if err != nil {
		t.Fatal(err)
	}
	if all["gentle"].BatchPercent != 5 {
		t.Errorf("user profile did not override builtin: %+v", all["gentle"])
	}
	if all["quarterly"].OlderThanDays != 120 || !all["quarterly"].Delete {
		t.Errorf("user profile missing: %+v", all["quarterly"])
	}
	if _, ok := all["overnight"]; !ok {
		t.Error("builtin profile lost in merge")
	}
}

func TestAllWithoutFileReturnsBuiltins(t *testing.T) {
	all, err := All(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(Builtin) {
		t.Errorf("got %d profiles, want the %d builtins", len(all), len(Builtin))
	}
}

func TestGetUnknownNamesAvailable(t *testing.T) {
	_, err := Get(t.TempDir(), "nope")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "gentle") || !strings.Contains(err.Error(), "overnight") {
		t.Errorf("error does not list available profiles: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := Profile{Description: "march cleanup", OlderThanDays: 60, BatchPercent: 50}
	if err := Save(dir, "March", p); err != nil {
		t.Fatal(err)
	}

	got, err := Get(dir, "march")
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("Get() = %+v, want %+v", got, p)
	}

	// A second save keeps the first profile.
	if err := Save(dir, "april", Profile{BatchPercent: 20}); err != nil {
		t.Fatal(err)
	}
	all, err := All(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := all["march"]; !ok {
		t.Error("earlier profile lost on save")
	}
	if _, ok := all["april"]; !ok {
		t.Error("new profile missing")
	}
}

func TestCorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := All(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}
