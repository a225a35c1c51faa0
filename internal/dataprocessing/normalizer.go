package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	apperrors "enrolpulse/internal/errors"
	"enrolpulse/pkg/contracts/domain"
)

// NormalizeStats counts the cells the normalizer had to coerce.
type NormalizeStats struct {
	Rows          int
	NullDates     int
	ZeroedNumeric int
}

// Normalize converts a string-typed frame with normalised labels into a Table.
// Unparseable dates become null with the row kept; missing or unparseable
// counts become 0. Identifier columns are recorded but not required here.
func Normalize(df dataframe.DataFrame) (*Table, NormalizeStats, error) {
	if df.Err != nil {
		return nil, NormalizeStats{}, apperrors.NewParsingError("cannot normalise frame", df.Err)
	}

	n := df.Nrow()
	names := df.Names()
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	stats := NormalizeStats{Rows: n}
	text := func(col string) []string {
		out := make([]string, n)
		if !present[col] {
			return out
		}
		s := df.Col(col)
		nan := s.IsNaN()
		for i, v := range s.Records() {
			if !nan[i] {
				out[i] = v
			}
		}
		return out
	}
	counts := func(col string) []int64 {
		out := make([]int64, n)
		if !present[col] {
			return out
		}
		s := df.Col(col)
		raw, nan := s.Records(), s.IsNaN()
		for i, v := range s.Float() {
			if math.IsNaN(v) && !nan[i] {
				v = parseCount(raw[i])
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				stats.ZeroedNumeric++
				continue
			}
			out[i] = int64(math.Round(v))
		}
		return out
	}

	dates := text(domain.ColumnDate)
	states := text(domain.ColumnState)
	districts := text(domain.ColumnDistrict)
	pincodes := text(domain.ColumnPincode)
	young := counts(domain.ColumnAge0To5)
	school := counts(domain.ColumnAge5To17)
	adult := counts(domain.ColumnAge18Up)

	records := make([]domain.EnrolmentRecord, n)
	for i := 0; i < n; i++ {
		r := domain.EnrolmentRecord{
			State:    states[i],
			District: districts[i],
			Pincode:  pincodes[i],
			Age0To5:  young[i],
			Age5To17: school[i],
			Age18Up:  adult[i],
		}
		r.Total = r.Age0To5 + r.Age5To17 + r.Age18Up
		if d, ok := ParseDate(dates[i]); ok {
			r.Date, r.HasDate = d, true
		} else {
			stats.NullDates++
		}
		records[i] = r
	}

	return &Table{records: records, columns: columnSet(names)}, stats, nil
}

// parseCount retries a cell gota could not read as a float, tolerating padding.
func parseCount(cell string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func columnSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
