package dataprocessing

import (
	"sort"

	"enrolpulse/pkg/contracts/domain"
)

// AllRegions is the selector value that keeps every row.
const AllRegions = "All"

// Table is an immutable set of normalised enrolment records together with
// the canonical columns that were present in the source files.
type Table struct {
	records []domain.EnrolmentRecord
	columns map[string]struct{}
}

// NewTable builds a table from records and the columns they came from.
// The records slice is copied.
func NewTable(records []domain.EnrolmentRecord, columns []string) *Table {
	t := &Table{
		records: make([]domain.EnrolmentRecord, len(records)),
		columns: make(map[string]struct{}, len(columns)),
	}
	copy(t.records, records)
	for _, c := range columns {
		t.columns[c] = struct{}{}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the rows.
func (t *Table) Records() []domain.EnrolmentRecord {
	out := make([]domain.EnrolmentRecord, t.Len())
	if t != nil {
		copy(out, t.records)
	}
	return out
}

// Each calls fn for every row in order.
func (t *Table) Each(fn func(domain.EnrolmentRecord)) {
	if t == nil {
		return
	}
	for _, r := range t.records {
		fn(r)
	}
}

// HasColumn reports whether a normalised column was present in any source file.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[name]
	return ok
}

// Columns returns the present columns in sorted order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	cols := make([]string, 0, len(t.columns))
	for c := range t.columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Filter returns the rows whose state equals region exactly.
// AllRegions returns the table itself.
func (t *Table) Filter(region string) *Table {
	if region == AllRegions || t == nil {
		return t
	}

	out := &Table{columns: t.columns}
	for _, r := range t.records {
		if r.State == region {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Regions returns AllRegions followed by the sorted distinct non-empty states.
func (t *Table) Regions() []string {
	seen := make(map[string]struct{})
	t.Each(func(r domain.EnrolmentRecord) {
		if r.State != "" {
			seen[r.State] = struct{}{}
		}
	})

	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return append([]string{AllRegions}, states...)
}

// HasRegion reports whether region is a valid selector value.
func (t *Table) HasRegion(region string) bool {
	if region == AllRegions {
		return true
	}
	found := false
	t.Each(func(r domain.EnrolmentRecord) {
		if r.State == region {
			found = true
		}
	})
	return found
}
