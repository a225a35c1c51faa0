package dataprocessing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "enrolpulse/internal/errors"
	"enrolpulse/pkg/contracts/domain"
)

// ErrMissingColumn is returned when a grouping column is absent from the dataset.
var ErrMissingColumn = errors.New("required column missing")

const isoDate = "2006-01-02"

// Result is a derived value that may be undefined. The zero value is NoData.
type Result struct {
	Value float64
	OK    bool
}

// NoData is the undefined Result.
var NoData = Result{}

// Ok wraps a defined value.
func Ok(v float64) Result {
	return Result{Value: v, OK: true}
}

// Ratio returns num/den, or NoData when den is zero.
func Ratio(num, den float64) Result {
	if den == 0 {
		return NoData
	}
	return Ok(num / den)
}

// MarshalJSON encodes NoData as null.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(r.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON decodes null as NoData.
func (r *Result) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = NoData
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("result: %w", err)
	}
	*r = Ok(v)
	return nil
}

// Headline holds the KPI totals for a selection.
type Headline struct {
	Total         int64  `json:"total"`
	Child         int64  `json:"child"`
	Adult         int64  `json:"adult"`
	AdultShare    Result `json:"adult_share"`
	ChildShare    Result `json:"child_share"`
	DailyAverage  Result `json:"daily_average"`
	DistinctDates int    `json:"distinct_dates"`
	Rows          int    `json:"rows"`
}

// Ranking is a descending list of group totals truncated to n, with the
// complete ordering alongside.
type Ranking struct {
	Top  []domain.GroupTotal `json:"top"`
	Full []domain.GroupTotal `json:"-"`
}

// Groups returns the number of distinct keys.
func (r Ranking) Groups() int {
	return len(r.Full)
}

// Summarize computes the headline totals. Shares are NoData when the total is
// zero; the daily average is NoData when no row has a date.
func Summarize(t *Table) Headline {
	h := Headline{Rows: t.Len()}
	dates := make(map[time.Time]struct{})

	t.Each(func(r domain.EnrolmentRecord) {
		h.Total += r.Total
		h.Child += r.Child()
		h.Adult += r.Adult()
		if r.HasDate {
			dates[r.Date] = struct{}{}
		}
	})

	h.DistinctDates = len(dates)
	h.AdultShare = percent(h.Adult, h.Total)
	h.ChildShare = percent(h.Child, h.Total)
	h.DailyAverage = Ratio(float64(h.Total), float64(h.DistinctDates))
	return h
}

func percent(part, whole int64) Result {
	r := Ratio(float64(part), float64(whole))
	if r.OK {
		r.Value *= 100
	}
	return r
}

// Trend sums totals per date in ascending date order. Rows without a date are skipped.
func Trend(t *Table) ([]domain.TrendPoint, error) {
	sums := make(map[string]int64)
	t.Each(func(r domain.EnrolmentRecord) {
		if r.HasDate {
			sums[r.Date.Format(isoDate)] += r.Total
		}
	})
	if len(sums) == 0 {
		return []domain.TrendPoint{}, nil
	}

	keys, totals := columns(sums)
	df := dataframe.New(
		series.New(keys, series.String, "date"),
		series.New(totals, series.Int, "total"),
	).Arrange(dataframe.Sort("date"))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to order trend: %w", df.Err)
	}

	points := make([]domain.TrendPoint, 0, df.Nrow())
	ordered, err := df.Col("total").Int()
	if err != nil {
		return nil, fmt.Errorf("failed to read trend totals: %w", err)
	}
	for i, key := range df.Col("date").Records() {
		d, err := time.Parse(isoDate, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read trend date %q: %w", key, err)
		}
		points = append(points, domain.TrendPoint{Date: d, Total: int64(ordered[i])})
	}
	return points, nil
}

// RankStates returns the top n states by total.
func RankStates(t *Table, n int) (Ranking, error) {
	return rankBy(t, domain.ColumnState, n, func(r domain.EnrolmentRecord) string { return r.State })
}

// RankDistricts returns the top n districts by total, plus the full ranking.
func RankDistricts(t *Table, n int) (Ranking, error) {
	return rankBy(t, domain.ColumnDistrict, n, func(r domain.EnrolmentRecord) string { return r.District })
}

// RankPincodes returns the top n pincodes by total.
func RankPincodes(t *Table, n int) (Ranking, error) {
	return rankBy(t, domain.ColumnPincode, n, func(r domain.EnrolmentRecord) string { return r.Pincode })
}

// TopState returns the state with the largest total, ties broken alphabetically.
func TopState(t *Table) (string, bool) {
	r, err := RankStates(t, 1)
	if err != nil || len(r.Top) == 0 {
		return "", false
	}
	return r.Top[0].Key, true
}

// RequireColumn fails with ErrMissingColumn when column is absent from t.
func RequireColumn(t *Table, column string) error {
	if t.HasColumn(column) {
		return nil
	}
	return apperrors.NewSchemaError(
		fmt.Sprintf("column %q is required", column),
		fmt.Errorf("%w: %s", ErrMissingColumn, column),
	).WithContext("column", column)
}

func rankBy(t *Table, column string, n int, key func(domain.EnrolmentRecord) string) (Ranking, error) {
	if err := RequireColumn(t, column); err != nil {
		return Ranking{}, err
	}

	sums := make(map[string]int64)
	t.Each(func(r domain.EnrolmentRecord) {
		if k := key(r); k != "" {
			sums[k] += r.Total
		}
	})

	full, err := orderDescending(sums)
	if err != nil {
		return Ranking{}, fmt.Errorf("failed to rank %s: %w", column, err)
	}

	if n < 0 {
		n = 0
	}
	if n > len(full) {
		n = len(full)
	}
	return Ranking{Top: full[:n:n], Full: full}, nil
}

// orderDescending sorts groups by total descending, then key ascending.
func orderDescending(sums map[string]int64) ([]domain.GroupTotal, error) {
	if len(sums) == 0 {
		return []domain.GroupTotal{}, nil
	}

	keys, totals := columns(sums)
	df := dataframe.New(
		series.New(keys, series.String, "key"),
		series.New(totals, series.Int, "total"),
	).Arrange(dataframe.RevSort("total"), dataframe.Sort("key"))
	if df.Err != nil {
		return nil, df.Err
	}

	ordered, err := df.Col("total").Int()
	if err != nil {
		return nil, err
	}
	out := make([]domain.GroupTotal, df.Nrow())
	for i, k := range df.Col("key").Records() {
		out[i] = domain.GroupTotal{Key: k, Total: int64(ordered[i])}
	}
	return out, nil
}

// columns flattens sums into parallel slices sorted by key.
func columns(sums map[string]int64) ([]string, []int) {
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals := make([]int, len(keys))
	for i, k := range keys {
		totals[i] = int(sums[k])
	}
	return keys, totals
}
