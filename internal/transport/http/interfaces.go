package http

import (
	"context"
	"io"

	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/services"
	apiv1 "enrolpulse/pkg/contracts/api/v1"
)

// DashboardServiceInterface is the dashboard surface the handlers need
type DashboardServiceInterface interface {
	Render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error)
	Regions(ctx context.Context) ([]string, error)
	Chart(ctx context.Context, kind, region string) ([]byte, error)
	ExportDistricts(ctx context.Context, region, format string, w io.Writer) (string, error)
	DatasetInfo(ctx context.Context) (apiv1.DatasetResponse, error)
	Reload(ctx context.Context) (apiv1.ReloadResponse, error)
}

// HealthServiceInterface is the health surface the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ DashboardServiceInterface = (*services.DashboardService)(nil)
	_ HealthServiceInterface    = (*services.HealthService)(nil)
)
