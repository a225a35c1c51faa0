package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/dataprocessing"
	"enrolpulse/internal/files"
	"enrolpulse/pkg/contracts"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func loadedDataset() *dataprocessing.Dataset {
	return &dataprocessing.Dataset{
		Files:    []files.FileInfo{{Name: "a.csv"}, {Name: "b.csv"}},
		Table:    dataprocessing.NewTable(nil, nil),
		LoadedAt: time.Now(),
	}
}

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", nil, nil, testLogger())

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

func TestHealthService_DefaultVersion(t *testing.T) {
	hs := NewHealthService("", nil, nil, nil)
	assert.Equal(t, contracts.Version, hs.HealthCheck(context.Background()).Version)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(src *MockDatasetSource, hub *MockWebSocketHub)
		wantStatus string
		wantData   string
	}{
		{
			name: "dataset loaded",
			setup: func(src *MockDatasetSource, hub *MockWebSocketHub) {
				src.On("Dataset", mock.Anything).Return(loadedDataset(), nil)
				hub.On("ClientCount").Return(3)
			},
			wantStatus: "ready",
			wantData:   "ready",
		},
		{
			name: "dataset unavailable",
			setup: func(src *MockDatasetSource, hub *MockWebSocketHub) {
				src.On("Dataset", mock.Anything).Return(nil, errors.New("no files"))
				hub.On("ClientCount").Return(0)
			},
			wantStatus: "not_ready",
			wantData:   "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &MockDatasetSource{}
			hub := &MockWebSocketHub{}
			tt.setup(src, hub)

			hs := NewHealthService("1.0.0", src, hub, testLogger())
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			data, ok := status.Services["data"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantData, data.Status)
			src.AssertExpectations(t)
			hub.AssertExpectations(t)
		})
	}
}

func TestHealthService_ReadinessReportsClients(t *testing.T) {
	src := &MockDatasetSource{}
	src.On("Dataset", mock.Anything).Return(loadedDataset(), nil)
	hub := &MockWebSocketHub{}
	hub.On("ClientCount").Return(2)

	hs := NewHealthService("1.0.0", src, hub, testLogger())
	status := hs.ReadinessCheck(context.Background())

	ws := status.Services["websocket"].(ServiceHealth)
	assert.Equal(t, "2 clients connected", ws.Message)
	data := status.Services["data"].(ServiceHealth)
	assert.Equal(t, "0 rows from 2 files", data.Message)
}

func TestHealthService_ReadinessWithoutSource(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, testLogger())
	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, testLogger())

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Equal(t, runtime.Version(), status.Runtime["go_version"])
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthServiceWithBuildInfo("1.0.0", "2025-01-01T00:00:00Z", nil, nil, testLogger())

	v := hs.Version()
	assert.Equal(t, "1.0.0", v["version"])
	assert.Equal(t, contracts.APIVersion, v["api_version"])
	assert.Equal(t, "EnrolPulse Aadhaar Dashboard v1.0.0", v["name"])
	assert.Equal(t, "2025-01-01T00:00:00Z", v["build_time"])
	assert.Equal(t, runtime.GOOS, v["os"])

	assert.NotContains(t, NewHealthService("1.0.0", nil, nil, testLogger()).Version(), "build_time")
}
