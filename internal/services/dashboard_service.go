package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"enrolpulse/internal/charts"
	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/dataprocessing"
	apperrors "enrolpulse/internal/errors"
	"enrolpulse/internal/exporter"
	"enrolpulse/internal/infrastructure"
	apiv1 "enrolpulse/pkg/contracts/api/v1"
	"enrolpulse/pkg/contracts/events"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// UpdateBroadcaster pushes dataset changes to live sessions
type UpdateBroadcaster interface {
	BroadcastDataUpdate(payload events.DataUpdatePayload)
}

// DashboardOptions configures a DashboardService
type DashboardOptions struct {
	DataDir   string
	Limits    dashboard.Limits
	ChartSize charts.Size
	ChartTTL  time.Duration
}

// DashboardService answers every dashboard query against the cached dataset
type DashboardService struct {
	cache       *dataprocessing.DatasetCache
	opts        DashboardOptions
	chartCache  *gocache.Cache
	csvWriter   *exporter.CSVWriter
	xlsxWriter  *exporter.XLSXWriter
	broadcaster UpdateBroadcaster
	metrics     *infrastructure.DashboardMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewDashboardService creates a dashboard service over cache
func NewDashboardService(cache *dataprocessing.DatasetCache, opts DashboardOptions, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Limits == (dashboard.Limits{}) {
		opts.Limits = dashboard.DefaultLimits()
	}
	if opts.ChartSize == (charts.Size{}) {
		opts.ChartSize = charts.DefaultSize
	}
	if opts.ChartTTL <= 0 {
		opts.ChartTTL = 10 * time.Minute
	}

	logger = logger.With(slog.String("service", "dashboard"))
	logger.Info("DashboardService initialized",
		slog.String("data_dir", opts.DataDir),
		slog.String("cache_mode", cache.Mode()),
		slog.Duration("chart_ttl", opts.ChartTTL))

	return &DashboardService{
		cache:      cache,
		opts:       opts,
		chartCache: gocache.New(opts.ChartTTL, 2*opts.ChartTTL),
		csvWriter:  exporter.NewCSVWriter(logger),
		xlsxWriter: exporter.NewXLSXWriter(logger),
		tracer:     otel.Tracer(infrastructure.InstrumentationName),
		logger:     logger,
	}
}

// SetBroadcaster attaches the live session hub notified on reload
func (s *DashboardService) SetBroadcaster(b UpdateBroadcaster) {
	s.broadcaster = b
}

// SetMetrics attaches the application instruments
func (s *DashboardService) SetMetrics(m *infrastructure.DashboardMetrics) {
	s.metrics = m
}

// Dataset returns the current dataset, reloading it when the directory changed
func (s *DashboardService) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.dataset")
	defer span.End()

	ds, err := s.cache.Get(ctx, s.opts.DataDir)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("dataset.rows", ds.Table.Len()),
		attribute.String("dataset.fingerprint", ds.Fingerprint))
	return ds, nil
}

// Regions returns the selector options, "All" first
func (s *DashboardService) Regions(ctx context.Context) ([]string, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Table.Regions(), nil
}

// ValidateRegion fails with ErrUnknownRegion when region is not in the dataset.
// An empty region means all regions.
func (s *DashboardService) ValidateRegion(ctx context.Context, region string) error {
	if region == "" {
		return nil
	}
	ds, err := s.Dataset(ctx)
	if err != nil {
		return err
	}
	return checkRegion(ds.Table, region)
}

// Render builds the view model for req
func (s *DashboardService) Render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.render",
		trace.WithAttributes(
			attribute.String("region", req.Region),
			attribute.Bool("insights", req.Insights)))
	defer span.End()

	start := time.Now()
	vm, err := s.render(ctx, req)
	s.metrics.RecordRender(ctx, req.Region, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Dashboard render failed",
			slog.String("region", req.Region),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.DebugContext(ctx, "Dashboard rendered",
		slog.String("region", vm.Region),
		slog.Int("rows", vm.Headline.Rows),
		slog.Bool("insights", req.Insights),
		slog.Duration("duration", time.Since(start)))
	return vm, nil
}

func (s *DashboardService) render(ctx context.Context, req dashboard.Request) (*dashboard.ViewModel, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRegion(ds.Table, req.Region); err != nil {
		return nil, err
	}
	return dashboard.Render(ds.Table, req, s.opts.Limits)
}

// Chart returns the PNG for kind and region. Images are cached per dataset
// fingerprint, so a reload never serves a stale chart.
func (s *DashboardService) Chart(ctx context.Context, kind, region string) ([]byte, error) {
	if !isChartKind(kind) {
		return nil, apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("unknown chart %q", kind), ErrUnknownChart).WithContext("kind", kind)
	}
	if region == "" {
		region = dataprocessing.AllRegions
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.chart",
		trace.WithAttributes(
			attribute.String("chart.kind", kind),
			attribute.String("region", region)))
	defer span.End()

	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	key := strings.Join([]string{ds.Fingerprint, kind, region}, "|")
	if cached, ok := s.chartCache.Get(key); ok {
		span.SetAttributes(attribute.Bool("chart.cached", true))
		return cached.([]byte), nil
	}

	vm, err := s.Render(ctx, dashboard.Request{Region: region})
	if err != nil {
		return nil, err
	}

	png, err := s.rasterise(kind, vm)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to render %s chart: %w", kind, err)
	}

	s.chartCache.SetDefault(key, png)
	s.metrics.RecordChartRender(ctx, kind)
	return png, nil
}

func (s *DashboardService) rasterise(kind string, vm *dashboard.ViewModel) ([]byte, error) {
	size := s.opts.ChartSize

	switch kind {
	case charts.KindTrend:
		if len(vm.Trend) == 0 {
			return charts.Placeholder(dashboard.NoDataText, size)
		}
		return charts.Trend(vm.Trend, size)
	case charts.KindStates:
		if len(vm.States) == 0 {
			return charts.Placeholder(dashboard.NoDataText, size)
		}
		return charts.Bar(vm.States, size)
	case charts.KindDistricts:
		if !vm.StateSelected {
			return charts.Placeholder("Select a state", size)
		}
		if len(vm.Districts) == 0 {
			return charts.Placeholder(dashboard.NoDataText, size)
		}
		return charts.Bar(vm.Districts, size)
	default:
		if !vm.StateSelected {
			return charts.Placeholder("Select a state", size)
		}
		if vm.Heat == nil {
			return charts.Placeholder(dashboard.NoDataText, size)
		}
		return charts.Heatmap(vm.Heat, size)
	}
}

// ExportDistricts writes the full district ranking of a state in format and
// returns the suggested file name.
func (s *DashboardService) ExportDistricts(ctx context.Context, region, format string, w io.Writer) (string, error) {
	if region == "" || region == dataprocessing.AllRegions {
		return "", apperrors.NewAppError(apperrors.ErrTypeValidation, "district export needs a state", ErrStateRequired)
	}
	if format != FormatCSV && format != FormatXLSX {
		return "", apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("unknown export format %q", format), ErrUnknownFormat).WithContext("format", format)
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.export",
		trace.WithAttributes(
			attribute.String("region", region),
			attribute.String("format", format)))
	defer span.End()

	ds, err := s.Dataset(ctx)
	if err != nil {
		return "", err
	}
	if err := checkRegion(ds.Table, region); err != nil {
		return "", err
	}

	ranking, err := dataprocessing.RankDistricts(ds.Table.Filter(region), 0)
	if err != nil {
		return "", err
	}
	rows := exporter.DistrictRows(region, ranking.Full)

	// buffer so a failed encode never leaves a half-written response
	var buf bytes.Buffer
	switch format {
	case FormatCSV:
		err = s.csvWriter.WriteDistricts(&buf, rows, exporter.WriteOptions{BOMPrefix: true})
	default:
		err = s.xlsxWriter.WriteDistricts(&buf, rows)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return "", fmt.Errorf("failed to export districts: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "District ranking exported",
		slog.String("region", region),
		slog.String("format", format),
		slog.Int("districts", len(rows)))
	return exporter.Filename(region, format), nil
}

// DatasetInfo describes the dataset currently served
func (s *DashboardService) DatasetInfo(ctx context.Context) (apiv1.DatasetResponse, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return apiv1.DatasetResponse{}, err
	}
	return apiv1.DatasetResponse{
		DatasetInfo: ds.Info(),
		Cache:       s.cacheStats(),
	}, nil
}

// Reload drops every cached dataset and chart, loads the directory again and
// notifies live sessions.
func (s *DashboardService) Reload(ctx context.Context) (apiv1.ReloadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.reload")
	defer span.End()

	var previous string
	if ds, ok := s.cache.Peek(s.opts.DataDir); ok {
		previous = ds.Fingerprint
	}

	s.chartCache.Flush()
	ds, err := s.cache.Reload(ctx, s.opts.DataDir)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Dataset reload failed",
			slog.String("dir", s.opts.DataDir),
			slog.String("error", err.Error()))
		return apiv1.ReloadResponse{}, err
	}

	resp := apiv1.ReloadResponse{
		Fingerprint: ds.Fingerprint,
		Rows:        ds.Table.Len(),
		Changed:     ds.Fingerprint != previous,
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastDataUpdate(events.DataUpdatePayload{
			Fingerprint: ds.Fingerprint,
			Rows:        resp.Rows,
			LoadedAt:    ds.LoadedAt,
		})
	}

	s.logger.InfoContext(ctx, "Dataset reloaded",
		slog.String("fingerprint", resp.Fingerprint),
		slog.Int("rows", resp.Rows),
		slog.Bool("changed", resp.Changed))
	return resp, nil
}

func (s *DashboardService) cacheStats() apiv1.CacheStats {
	st := s.cache.Stats()
	return apiv1.CacheStats{Mode: st.Mode, Hits: st.Hits, Misses: st.Misses, Loads: st.Loads}
}

func checkRegion(t *dataprocessing.Table, region string) error {
	if region == "" || t.HasRegion(region) {
		return nil
	}
	return apperrors.NewAppError(apperrors.ErrTypeValidation,
		fmt.Sprintf("region %q is not in the dataset", region), ErrUnknownRegion).WithContext("region", region)
}

func isChartKind(kind string) bool {
	for _, k := range charts.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
