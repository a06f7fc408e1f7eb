package namelist

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shearops/shear/internal/store"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libraries.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadPlainLines(t *testing.T) {
	path := writeTemp(t, `# curated trim targets
Documents

Site Assets
Documents
`)
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Documents", "Site Assets"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestReadQuotedTitles(t *testing.T) {
	path := writeTemp(t, "\"Sales, EMEA\",ignored-extra-column\nDocuments\n")
	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Sales, EMEA", "Documents"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestReadEmptyListErrors(t *testing.T) {
	path := writeTemp(t, "# nothing but comments\n")
	if _, err := Read(path); err == nil {
		t.Fatal("expected an error for a list with no names")
	}
}

func TestReadMissingFileErrors(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestWriteRoundTripsThroughRead(t *testing.T) {
	libs := []store.Library{
		{ID: "id-1", Title: "Documents", ItemCount: 12, ServerRelativeURL: "/sites/acme/Documents"},
		{ID: "id-2", Title: "Sales, EMEA", ItemCount: 3, Hidden: true, ServerRelativeURL: "/sites/acme/SalesEMEA"},
	}

	var buf bytes.Buffer
	if err := Write(&buf, libs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Title,ID,ItemCount,Hidden,ServerRelativeURL\n") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, `"Sales, EMEA",id-2,3,true,/sites/acme/SalesEMEA`) {
		t.Errorf("row not quoted as expected: %q", out)
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	names, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Documents", "Sales, EMEA"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("round trip = %v, want %v", names, want)
	}
}

func TestWriteFileCreatesExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := WriteFile(path, []store.Library{{ID: "id-1", Title: "Documents"}}); err != nil {
		t.Fatal(err)
	}
	names, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Documents" {
		t.Errorf("Read() = %v", names)
	}
}
