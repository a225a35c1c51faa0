package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/dataprocessing"
	apierrors "enrolpulse/internal/errors"
	custommw "enrolpulse/internal/middleware"
	"enrolpulse/internal/services"
	apiv1 "enrolpulse/pkg/contracts/api/v1"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// APIHandler serves the JSON API and the district exports
type APIHandler struct {
	service      DashboardServiceInterface
	validation   *custommw.ValidationMiddleware
	query        *custommw.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *APIHandler {
	return &APIHandler{
		service:      service,
		validation:   custommw.NewValidationMiddleware(logger, errorHandler),
		query:        custommw.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "api_handler")),
	}
}

// Routes returns the API routes, mounted under /api
func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.validation.ValidateRequest)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/regions", h.GetRegions)
		r.Get("/dataset", h.GetDataset)
		r.Post("/dataset/reload", h.ReloadDataset)
	})

	r.Get("/export/districts.{format}", h.ExportDistricts)
	return r
}

func success(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// GetDashboard handles GET /api/dashboard?state=&insights=
func (h *APIHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	insights, ok := h.query.ValidateBool(w, r, "insights", false)
	if !ok {
		return
	}
	req := apiv1.DashboardRequest{State: r.URL.Query().Get("state"), Insights: insights}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	vm, err := h.service.Render(r.Context(), dashboard.Request{Region: req.State, Insights: req.Insights})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "dashboard rendered",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("region", vm.Region),
		slog.Int("rows", vm.Headline.Rows))
	success(w, r, vm)
}

// GetRegions handles GET /api/regions
func (h *APIHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	success(w, r, apiv1.RegionsResponse{Regions: regions, Default: dataprocessing.AllRegions})
}

// GetDataset handles GET /api/dataset
func (h *APIHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.DatasetInfo(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	success(w, r, info)
}

// ReloadDataset handles POST /api/dataset/reload
func (h *APIHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("fingerprint", resp.Fingerprint),
		slog.Int("rows", resp.Rows),
		slog.Bool("changed", resp.Changed))
	success(w, r, resp)
}

// ExportDistricts handles GET /api/export/districts.{csv,xlsx}?state=
func (h *APIHandler) ExportDistricts(w http.ResponseWriter, r *http.Request) {
	req := apiv1.ExportRequest{
		State:  r.URL.Query().Get("state"),
		Format: chi.URLParam(r, "format"),
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	filename, err := h.service.ExportDistricts(r.Context(), req.State, req.Format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	contentType := contentTypeCSV
	if req.Format == services.FormatXLSX {
		contentType = contentTypeXLSX
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
	}
}
