package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"enrolpulse/internal/config"
	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/dataprocessing"
	apierrors "enrolpulse/internal/errors"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"count": dashboard.FormatCount,
	"inc":   func(i int) int { return i + 1 },
	"chartURL": func(kind, region string) string {
		return "/charts/" + kind + ".png?" + url.Values{"state": {region}}.Encode()
	},
	"exportURL": func(format, region string) string {
		return "/api/export/districts." + format + "?" + url.Values{"state": {region}}.Encode()
	},
}

var dashboardTemplate = template.Must(
	template.New("dashboard.html").Funcs(pageFuncs).ParseFS(templateFS, "templates/dashboard.html"),
)

// pageError is the visible error panel
type pageError struct {
	Title  string
	Detail string
}

type pageData struct {
	Title         string
	Subtitle      string
	Footer        string
	Region        string
	Regions       []string
	VM            *dashboard.ViewModel
	Error         *pageError
	WebSocketPath string
}

// DashboardHandler serves the HTML dashboard
type DashboardHandler struct {
	service      DashboardServiceInterface
	text         config.DashboardConfig
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates the page handler with the configured page text
func NewDashboardHandler(service DashboardServiceInterface, text config.DashboardConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		text:         text,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
	}
}

// ServeHTTP handles GET /?state=&insights=. The insights flag only affects
// this render; the selector and the chart links carry the state alone.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region := r.URL.Query().Get("state")
	if region == "" {
		region = dataprocessing.AllRegions
	}
	insights, _ := strconv.ParseBool(r.URL.Query().Get("insights"))

	data := pageData{
		Title:         h.text.Title,
		Subtitle:      h.text.Subtitle,
		Footer:        h.text.Footer,
		Region:        region,
		WebSocketPath: config.WebSocketEndpoint,
	}
	status := http.StatusOK

	vm, err := h.service.Render(ctx, dashboard.Request{Region: region, Insights: insights})
	if err != nil {
		problem := h.errorHandler.ErrorToProblem(err, r)
		status = problem.Status
		data.Error = &pageError{Title: problem.Title, Detail: problem.Detail}
		h.logger.WarnContext(ctx, "dashboard render failed",
			slog.String("region", region),
			slog.Int("status", status),
			slog.String("error", err.Error()))

		// keep the selector usable when only the selection was bad
		if regions, rerr := h.service.Regions(ctx); rerr == nil {
			data.Regions = regions
		}
	} else {
		data.VM = vm
		data.Region = vm.Region
		data.Regions = vm.Regions
	}
	if len(data.Regions) == 0 {
		data.Regions = []string{dataprocessing.AllRegions}
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(ctx, "dashboard template failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
