package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"enrolpulse/internal/config"
)

func testOTelLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *OTelConfig
		wantTracing bool
		wantMetrics bool
		wantErr     bool
	}{
		{
			name:        "tracing and metrics",
			cfg:         &OTelConfig{ServiceName: "test", TraceExporter: "stdout", MetricExporter: "prometheus", SampleRatio: 1},
			wantTracing: true,
			wantMetrics: true,
		},
		{
			name:        "metrics only",
			cfg:         OTelConfigFromTelemetry(config.Default().Telemetry),
			wantMetrics: true,
		},
		{
			name: "everything disabled",
			cfg:  &OTelConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "none"},
		},
		{
			name:    "unknown exporter",
			cfg:     &OTelConfig{ServiceName: "test", TraceExporter: "otlp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, testOTelLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			// no-op fallbacks are always present
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: "test", TraceExporter: "stdout", SampleRatio: 1}, testOTelLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "render")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	AddSpanEvent(ctx, "dataset.cache_hit", attribute.String("dir", "data"))
	RecordError(ctx, errors.New("boom"))
	assert.True(t, span.IsRecording())
}

func TestDashboardMetrics(t *testing.T) {
	providers, err := InitializeOTel(OTelConfigFromTelemetry(config.Default().Telemetry), testOTelLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRender(ctx, "All", 3*time.Millisecond, nil)
	metrics.RecordRender(ctx, "Kerala", time.Millisecond, errors.New("missing column"))
	metrics.RecordCacheLookup(ctx, true)
	metrics.RecordCacheLookup(ctx, false)
	metrics.RecordDatasetLoad(ctx, 2, 20)
	metrics.RecordChartRender(ctx, "trend")
	metrics.RecordWebSocketClient(ctx, 1)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "dashboard_renders_total")
	assert.Contains(t, string(body), "dataset_cache_hits_total")
	assert.Contains(t, string(body), "websocket_clients")
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var metrics *DashboardMetrics
	assert.NotPanics(t, func() {
		metrics.RecordRender(context.Background(), "All", time.Second, nil)
		metrics.RecordCacheLookup(context.Background(), true)
		metrics.RecordDatasetLoad(context.Background(), 1, 1)
		metrics.RecordChartRender(context.Background(), "states")
		metrics.RecordWebSocketClient(context.Background(), -1)
	})

	noop, err := CreateDashboardMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, noop.RendersTotal)
}
