// Package api contains API contract definitions for the enrolment dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"enrolpulse/pkg/contracts/domain"
)

// DashboardRequest selects what a dashboard render shows.
type DashboardRequest struct {
	State    string `json:"state" query:"state" validate:"omitempty,region"`
	Insights bool   `json:"insights" query:"insights"`
}

// ChartRequest selects one rendered chart.
type ChartRequest struct {
	Kind  string `json:"kind" param:"kind" validate:"required,oneof=trend states districts pincodes"`
	State string `json:"state" query:"state" validate:"omitempty,region"`
}

// ExportRequest selects the district ranking to export.
type ExportRequest struct {
	State  string `json:"state" query:"state" validate:"required,region,ne=All"`
	Format string `json:"format" param:"format" validate:"required,oneof=csv xlsx"`
}

// RegionsResponse lists the selectable regions, "All" first.
type RegionsResponse struct {
	Regions []string `json:"regions"`
	Default string   `json:"default"`
}

// DatasetResponse describes the dataset currently served.
type DatasetResponse struct {
	domain.DatasetInfo
	Cache CacheStats `json:"cache"`
}

// CacheStats reports dataset cache activity.
type CacheStats struct {
	Mode   string `json:"mode"`
	Hits   int64  `json:"hits"`
	Misses int64  `json:"misses"`
	Loads  int64  `json:"loads"`
}

// ReloadResponse is returned after an explicit dataset reload.
type ReloadResponse struct {
	Fingerprint string `json:"fingerprint"`
	Rows        int    `json:"rows"`
	Changed     bool   `json:"changed"`
}
