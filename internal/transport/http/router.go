package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"enrolpulse/internal/config"
	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/infrastructure"
	custommw "enrolpulse/internal/middleware"
	ws "enrolpulse/internal/websocket"
)

// RouterDeps carries everything the router mounts. Providers and Metrics may be nil.
type RouterDeps struct {
	Config    *config.Config
	Dashboard DashboardServiceInterface
	Health    HealthServiceInterface
	Hub       *ws.Hub
	Providers *infrastructure.OTelProviders
	Metrics   *infrastructure.DashboardMetrics
	Logger    *slog.Logger
}

// NewRouter builds the chi router with the full middleware stack
func NewRouter(deps RouterDeps) chi.Router {
	cfg := deps.Config
	logger := deps.Logger
	errorHandler := apierrors.NewErrorHandler(logger, cfg.Logging.Development)

	r := chi.NewRouter()
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Use(custommw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apierrors.NewErrorMiddleware(errorHandler, logger).Handler)
	r.Use(custommw.NewOTelMiddleware(deps.Providers, deps.Metrics).Handler)
	r.Use(custommw.SecurityHeaders)
	if cfg.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: cfg.Security.AllowedOrigins,
			Logger:         logger,
		}))
	}
	if cfg.Security.RateLimit.Enabled {
		r.Use(custommw.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger).Handler)
	}

	health := NewHealthHandler(deps.Health, logger)
	var sessions SessionStats
	if deps.Hub != nil {
		sessions = deps.Hub
	}
	metrics := NewMetricsHandler(prometheusHandler(deps.Providers), sessions)

	// Long-lived and unbounded by the request timeout
	if deps.Hub != nil {
		wsHandler := NewWebSocketHandler(deps.Hub, cfg.WebSocket, cfg.Security.AllowedOrigins, logger, errorHandler)
		r.With(custommw.WebSocketTraceMiddleware(logger)).Get(config.WebSocketEndpoint, wsHandler.ServeHTTP)
	}
	r.Method(http.MethodGet, config.MetricsEndpoint, metrics)

	r.Group(func(r chi.Router) {
		r.Use(custommw.Timeout(cfg.Server.RequestTimeout, logger))

		r.Method(http.MethodGet, "/", NewDashboardHandler(deps.Dashboard, cfg.Dashboard, logger, errorHandler))
		r.Mount("/charts", NewChartHandler(deps.Dashboard, logger, errorHandler).Routes())

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Mount("/health", health.Routes())
			r.Get("/version", health.Version)
			r.Get("/sessions", metrics.GetSessions)
			r.Mount("/", NewAPIHandler(deps.Dashboard, logger, errorHandler).Routes())
		})
	})

	return r
}

func prometheusHandler(p *infrastructure.OTelProviders) http.Handler {
	if p == nil {
		return nil
	}
	return p.PrometheusHTTP
}
