package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "enrolpulse/internal/errors"
	custommw "enrolpulse/internal/middleware"
	apiv1 "enrolpulse/pkg/contracts/api/v1"
)

// ChartHandler serves rendered chart images
type ChartHandler struct {
	service      DashboardServiceInterface
	validation   *custommw.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewChartHandler creates a new chart handler
func NewChartHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartHandler {
	return &ChartHandler{
		service:      service,
		validation:   custommw.NewValidationMiddleware(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "chart_handler")),
	}
}

// Routes returns the chart routes, mounted under /charts
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}.png", h.GetChart)
	return r
}

// GetChart handles GET /charts/{kind}.png?state=
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	req := apiv1.ChartRequest{
		Kind:  chi.URLParam(r, "kind"),
		State: r.URL.Query().Get("state"),
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	png, err := h.service.Chart(r.Context(), req.Kind, req.State)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(png); err != nil {
		h.logger.DebugContext(r.Context(), "chart write interrupted",
			slog.String("kind", req.Kind),
			slog.String("error", err.Error()))
	}
}
