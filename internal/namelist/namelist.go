// Package namelist reads and writes library name lists: the files fed
// to --library-list and produced by `shear libraries export`.
package namelist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shearops/shear/internal/store"
)

var exportHeader = []string{"Title", "ID", "ItemCount", "Hidden", "ServerRelativeURL"}

// Read loads library titles from path. The file is parsed as CSV with
// the title in the first column, which also covers plain
// one-name-per-line files. An export header row, blank entries, and
// #-comment lines are skipped; duplicates collapse to the first
// occurrence.
func Read(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 - controlled path from caller
	if err != nil {
		return nil, fmt.Errorf("failed to open name list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true

	var names []string
	seen := make(map[string]bool)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse name list: %w", err)
		}
		title := rec[0]
		if title == "" || title == exportHeader[0] {
			continue
		}
		if seen[title] {
			continue
		}
		seen[title] = true
		names = append(names, title)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("name list %s contains no library names", path)
	}
	return names, nil
}

// Write exports libraries as CSV, title first so the file round-trips
// through Read.
func Write(w io.Writer, libs []store.Library) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, lib := range libs {
		row := []string{
			lib.Title,
			lib.ID,
			strconv.Itoa(lib.ItemCount),
			strconv.FormatBool(lib.Hidden),
			lib.ServerRelativeURL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile exports libraries to a new file at path.
func WriteFile(path string, libs []store.Library) error {
	f, err := os.Create(path) // #nosec G304 - controlled path from caller
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, libs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
