package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shearops/shear/internal/engine"
	"github.com/shearops/shear/internal/store"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func sampleAction(msg string) engine.Action {
	return engine.Action{
		Time:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Mode:     engine.ModeDryRun,
		Library:  "Documents",
		ItemPath: "/sites/acme/Documents/report.docx",
		Version: store.Version{
			ID:      7,
			Label:   "2.0",
			Created: time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC),
		},
		Result:  engine.ResultPlanned,
		Message: msg,
	}
}

func TestActionLogWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.csv")

	l, err := OpenActionLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Record(sampleAction("")); err != nil {
		t.Fatal(err)
	}
	if err := l.Record(sampleAction("")); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	// A later run appends without repeating the header.
	l2, err := OpenActionLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l2.Record(sampleAction("second run")); err != nil {
		t.Fatal(err)
	}
	if err := l2.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], actionHeader) {
		t.Errorf("header = %v", rows[0])
	}
	for i, row := range rows[1:] {
		if len(row) != len(actionHeader) {
			t.Errorf("row %d has %d columns, want %d", i+1, len(row), len(actionHeader))
		}
	}
	if rows[1][0] != "2026-03-10T12:00:00Z" {
		t.Errorf("timestamp = %q, want RFC3339 UTC", rows[1][0])
	}
	if rows[1][1] != "DryRun" || rows[1][7] != "Planned" {
		t.Errorf("mode/result = %q/%q", rows[1][1], rows[1][7])
	}
	if rows[1][4] != "7" || rows[1][5] != "2.0" || rows[1][6] != "2026-01-01T08:30:00Z" {
		t.Errorf("version columns = %q/%q/%q", rows[1][4], rows[1][5], rows[1][6])
	}
	if rows[3][8] != "second run" {
		t.Errorf("message = %q", rows[3][8])
	}
}

func TestActionLogQuotesAwkwardFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.csv")

	l, err := OpenActionLog(path)
	if err != nil {
		t.Fatal(err)
	}
	a := sampleAction(`server said "locked", try later`)
	a.Library = "Sales, EMEA"
	if err := l.Record(a); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if rows[1][2] != "Sales, EMEA" {
		t.Errorf("library = %q", rows[1][2])
	}
	if rows[1][8] != `server said "locked", try later` {
		t.Errorf("message = %q", rows[1][8])
	}
}

func TestOpenActionLogCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trim", "actions.csv")

	l, err := OpenActionLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestSizeLogRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sizes.csv")

	l, err := OpenSizeLog(path)
	if err != nil {
		t.Fatal(err)
	}
	rec := engine.SizeRecord{
		Time:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		RunID:   "run-1",
		Site:    "https://acme.sharepoint.com/sites/ops",
		Library: "Documents",
		Phase:   engine.PhaseBefore,
		Bytes:   1_572_864, // 1.5 MB
	}
	if err := l.Snapshot(rec); err != nil {
		t.Fatal(err)
	}
	rec.Phase = engine.PhaseAfter
	rec.Bytes = 0
	if err := l.Snapshot(rec); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0], sizeHeader) {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"2026-03-10T12:00:00Z", "run-1", "https://acme.sharepoint.com/sites/ops", "Documents", "Before", "1572864", "1.50"}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
	if rows[2][4] != "After" || rows[2][5] != "0" || rows[2][6] != "0.00" {
		t.Errorf("after row = %v", rows[2])
	}
}
