package dashboard

import (
	"enrolpulse/internal/dataprocessing"
	"enrolpulse/pkg/contracts/domain"
)

// KPI labels in display order.
const (
	LabelTotal    = "Total Enrolments"
	LabelChild    = "Child Enrolments"
	LabelAdult    = "Adult Coverage"
	LabelDailyAvg = "Daily Avg"
)

// Request is the user's selection for one render.
type Request struct {
	Region   string `json:"region"`
	Insights bool   `json:"insights"`
}

// Limits bounds the rankings and the heat grid.
type Limits struct {
	States      int `json:"states"`
	Districts   int `json:"districts"`
	Pincodes    int `json:"pincodes"`
	HeatColumns int `json:"heat_columns"`
}

// DefaultLimits returns 10 states, 10 districts, 50 pincodes and a 10-column grid.
func DefaultLimits() Limits {
	return Limits{States: 10, Districts: 10, Pincodes: 50, HeatColumns: 10}
}

// KPI is one headline tile.
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Panels holds the section headings for a render.
type Panels struct {
	Trend     string `json:"trend"`
	States    string `json:"states"`
	Districts string `json:"districts,omitempty"`
	Heatmap   string `json:"heatmap,omitempty"`
	Insights  string `json:"insights"`
}

// ViewModel is everything a page needs to draw one dashboard state.
type ViewModel struct {
	Region        string                  `json:"region"`
	Regions       []string                `json:"regions"`
	StateSelected bool                    `json:"state_selected"`
	Headline      dataprocessing.Headline `json:"headline"`
	KPIs          []KPI                   `json:"kpis"`
	Trend         []domain.TrendPoint     `json:"trend"`
	States        []domain.GroupTotal     `json:"states"`
	Districts     []domain.GroupTotal     `json:"districts,omitempty"`
	DistrictTable []domain.GroupTotal     `json:"district_table,omitempty"`
	Pincodes      []domain.GroupTotal     `json:"pincodes,omitempty"`
	Heat          *HeatGrid               `json:"heat,omitempty"`
	Insights      []string                `json:"insights,omitempty"`
	Panels        Panels                  `json:"panels"`
}

// Empty reports whether the selection matched no rows.
func (v *ViewModel) Empty() bool {
	return v.Headline.Rows == 0
}
