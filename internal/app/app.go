package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"enrolpulse/internal/charts"
	"enrolpulse/internal/config"
	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/dataprocessing"
	"enrolpulse/internal/infrastructure"
	"enrolpulse/internal/services"
	handlers "enrolpulse/internal/transport/http"
	ws "enrolpulse/internal/websocket"
	"enrolpulse/pkg/contracts"
)

// BuildTime is set at link time with -ldflags "-X enrolpulse/internal/app.BuildTime=..."
var BuildTime = ""

// Application holds every long-lived component of the dashboard server
type Application struct {
	Config        *config.Config
	Router        chi.Router
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	Cache         *dataprocessing.DatasetCache
	Dashboard     *services.DashboardService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
}

// NewApplication loads configuration (configFile may be empty to use the
// default search), initialises logging and builds the application.
func NewApplication(configFile string) (*Application, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	cfg.Data.Dir = paths.DataDir
	if cfg.Logging.Output == "file" || cfg.Logging.Output == "both" {
		if err := paths.EnsureLogsDir(); err != nil {
			return nil, err
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	return New(cfg, logger)
}

// New wires the application from cfg. The dataset is loaded once up front; a
// missing, empty or unreadable data directory is returned as an error.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("cache_mode", cfg.Data.CacheMode))

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}

	if err := app.initializeServices(); err != nil {
		providers.Shutdown(context.Background())
		return nil, err
	}

	app.Router = handlers.NewRouter(handlers.RouterDeps{
		Config:    cfg,
		Dashboard: app.Dashboard,
		Health:    app.HealthService,
		Hub:       app.WebSocketHub,
		Providers: providers,
		Metrics:   metrics,
		Logger:    logger,
	})
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	cache, err := dataprocessing.NewDatasetCache(dataprocessing.NewLoader(a.Logger), a.Config.Data.CacheMode, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create dataset cache: %w", err)
	}
	cache.SetObserver(a.Metrics)
	a.Cache = cache

	a.Dashboard = services.NewDashboardService(cache, services.DashboardOptions{
		DataDir: a.Config.Data.Dir,
		Limits: dashboard.Limits{
			States:      a.Config.Data.StateTopN,
			Districts:   a.Config.Data.DistrictTopN,
			Pincodes:    a.Config.Data.PincodeTopN,
			HeatColumns: a.Config.Data.HeatColumns,
		},
		ChartSize: charts.Size{Width: a.Config.Data.ChartWidth, Height: a.Config.Data.ChartHeight},
		ChartTTL:  a.Config.Data.ChartCacheTTL,
	}, a.Logger)
	a.Dashboard.SetMetrics(a.Metrics)

	// A dashboard with no data is a configuration error, not an empty page
	ds, err := a.Dashboard.Dataset(context.Background())
	if err != nil {
		a.Logger.Error("Initial dataset load failed",
			slog.String("data_dir", a.Config.Data.Dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	a.Logger.Info("Dataset loaded",
		slog.String("fingerprint", ds.Fingerprint),
		slog.Int("files", len(ds.Files)),
		slog.Int("rows", ds.Table.Len()))

	hub := ws.NewHub(a.Dashboard, a.Logger)
	hub.SetMetrics(a.Metrics)
	hub.SetKeepalive(a.Config.WebSocket.PingPeriod, a.Config.WebSocket.PongWait)
	a.Dashboard.SetBroadcaster(hub)
	a.WebSocketHub = hub

	a.HealthService = services.NewHealthServiceWithBuildInfo(contracts.Version, BuildTime, a.Dashboard, hub, a.Logger)
	return nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub and the HTTP listener. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", a.Config.Address()),
		slog.String("dashboard", fmt.Sprintf("http://%s/", displayAddress(a.Config))),
		slog.String("log_level", a.Config.Logging.Level))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(context.Background(), "Received shutdown signal")
	return a.Stop(context.Background())
}

func displayAddress(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, cfg.Server.Port)
}
