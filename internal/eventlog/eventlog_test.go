package eventlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfoStaysOffTheConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	var console bytes.Buffer

	logger := New(Options{Path: path, Console: &console})
	logger.Info("run started")
	logger.Warn("delete refused")
	logger.Error("chunk failed")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	file := string(data)
	for _, msg := range []string{"run started", "delete refused", "chunk failed"} {
		if !strings.Contains(file, msg) {
			t.Errorf("file log missing %q", msg)
		}
	}

	out := console.String()
	if strings.Contains(out, "run started") {
		t.Error("info leaked to the console")
	}
	if !strings.Contains(out, "warning: delete refused") {
		t.Errorf("console missing the warning, got %q", out)
	}
	if !strings.Contains(out, "error: chunk failed") {
		t.Errorf("console missing the error, got %q", out)
	}
}

func TestQuietDropsWarningsButNotErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	var console bytes.Buffer

	logger := New(Options{Path: path, Quiet: true, Console: &console})
	logger.Warn("delete refused")
	logger.Error("chunk failed")

	out := console.String()
	if strings.Contains(out, "delete refused") {
		t.Error("quiet mode still mirrored the warning")
	}
	if !strings.Contains(out, "chunk failed") {
		t.Error("quiet mode swallowed the error")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "delete refused") {
		t.Error("quiet mode must not drop warnings from the file log")
	}
}

func TestNoPathDisablesFileOutput(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	logger := New(Options{Console: &console})
	logger.Info("run started")
	logger.Error("chunk failed")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected files created: %v", entries)
	}
	if !strings.Contains(console.String(), "chunk failed") {
		t.Error("console surfacing must stay on without a file")
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")

	logger := New(Options{Path: path, Verbose: true, Console: &bytes.Buffer{}})
	logger.Debug("page token advanced")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "page token advanced") {
		t.Error("verbose logger dropped the debug entry")
	}

	quietPath := filepath.Join(t.TempDir(), "events.log")
	logger = New(Options{Path: quietPath, Console: &bytes.Buffer{}})
	logger.Debug("page token advanced")

	if data, err := os.ReadFile(quietPath); err == nil && strings.Contains(string(data), "page token") {
		t.Error("default level logged debug entries")
	}
}
