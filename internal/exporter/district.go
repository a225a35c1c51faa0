package exporter

import (
	"enrolpulse/pkg/contracts/domain"
)

// DistrictRow is one line of a district ranking export.
type DistrictRow struct {
	Rank     int     `csv:"rank"`
	State    string  `csv:"state"`
	District string  `csv:"district"`
	Total    int64   `csv:"total_enrolments"`
	Share    float64 `csv:"share_pct"`
}

// DistrictHeaders is the column order shared by the CSV and XLSX exports.
var DistrictHeaders = []string{"rank", "state", "district", "total_enrolments", "share_pct"}

// DistrictRows numbers a full district ranking and adds each district's share
// of the state total, rounded to two decimals.
func DistrictRows(state string, ranking []domain.GroupTotal) []DistrictRow {
	var total int64
	for _, g := range ranking {
		total += g.Total
	}

	rows := make([]DistrictRow, len(ranking))
	for i, g := range ranking {
		rows[i] = DistrictRow{
			Rank:     i + 1,
			State:    state,
			District: g.Key,
			Total:    g.Total,
		}
		if total > 0 {
			rows[i].Share = roundShare(float64(g.Total) / float64(total) * 100)
		}
	}
	return rows
}

func (r DistrictRow) cells() []interface{} {
	return []interface{}{r.Rank, r.State, r.District, r.Total, r.Share}
}
