package domain

import (
	"time"
)

// DateLayout is the DD-MM-YYYY layout used by enrolment files.
const DateLayout = "02-01-2006"

// Canonical column labels after header normalisation.
const (
	ColumnDate     = "date"
	ColumnState    = "state"
	ColumnDistrict = "district"
	ColumnPincode  = "pincode"
	ColumnAge0To5  = "age_0_5"
	ColumnAge5To17 = "age_5_17"
	ColumnAge18Up  = "age_18_greater"
)

// AgeColumns lists the enrolment count columns in display order.
var AgeColumns = []string{ColumnAge0To5, ColumnAge5To17, ColumnAge18Up}

// EnrolmentRecord is one normalised row of enrolment data.
// Date is zero when the source value could not be parsed; HasDate reports which.
type EnrolmentRecord struct {
	Date     time.Time `json:"-"`
	HasDate  bool      `json:"-"`
	State    string    `json:"state"`
	District string    `json:"district"`
	Pincode  string    `json:"pincode"`
	Age0To5  int64     `json:"age_0_5"`
	Age5To17 int64     `json:"age_5_17"`
	Age18Up  int64     `json:"age_18_greater"`
	Total    int64     `json:"total_enrolments"`
}

// Child returns the enrolments under 18.
func (r EnrolmentRecord) Child() int64 {
	return r.Age0To5 + r.Age5To17
}

// Adult returns the enrolments aged 18 and over.
func (r EnrolmentRecord) Adult() int64 {
	return r.Age18Up
}

// DateString formats the record date, or returns "" for a null date.
func (r EnrolmentRecord) DateString() string {
	if !r.HasDate {
		return ""
	}
	return r.Date.Format(DateLayout)
}

// GroupTotal is a key with its summed total_enrolments.
type GroupTotal struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// TrendPoint is the total for one calendar date.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Total int64     `json:"total"`
}

// DatasetInfo describes a loaded dataset.
type DatasetInfo struct {
	Dir         string    `json:"dir"`
	Files       []string  `json:"files"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}
