package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

// EnrolmentHeader is the canonical column order of an enrolment CSV
var EnrolmentHeader = []string{"date", "state", "district", "pincode", "age_0_5", "age_5_17", "age_18_greater"}

// WriteCSV writes header and rows to dir/name and returns the file path.
// A nil header writes an empty file.
func WriteCSV(t *testing.T, dir, name string, header []string, rows ...[]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture %s: %v", path, err)
	}
	defer f.Close()

	if header == nil {
		return path
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write fixture header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write fixture rows: %v", err)
	}
	return path
}

// TwoFileDataset creates the reference dataset: one file with two rows for state X and one
// empty file. Totals: 20 overall, 5 child, 15 adult, over two distinct dates.
func TwoFileDataset(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteCSV(t, dir, "a.csv", EnrolmentHeader,
		[]string{"01-01-2025", "X", "A", "1000", "2", "3", "5"},
		[]string{"02-01-2025", "X", "B", "1001", "0", "0", "10"},
	)
	WriteCSV(t, dir, "b.csv", nil)
	return dir
}

// MultiStateDataset creates a dataset spanning three states with an unparseable date row.
func MultiStateDataset(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteCSV(t, dir, "north.csv", EnrolmentHeader,
		[]string{"01-03-2025", "Punjab", "Amritsar", "143001", "10", "20", "30"},
		[]string{"01-03-2025", "Punjab", "Ludhiana", "141001", "5", "5", "40"},
		[]string{"02-03-2025", "Haryana", "Karnal", "132001", "1", "2", "3"},
	)
	WriteCSV(t, dir, "south.csv", EnrolmentHeader,
		[]string{"02-03-2025", "Kerala", "Kochi", "682001", "7", "8", "100"},
		[]string{"not-a-date", "Kerala", "Kollam", "691001", "0", "0", "25"},
		[]string{"03-03-2025", "Punjab", "Amritsar", "143002", "0", "10", "0"},
	)
	return dir
}
