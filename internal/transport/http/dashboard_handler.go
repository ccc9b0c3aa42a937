// Package http exposes the interactive dashboard over HTTP: the single-page
// UI, the filter/metrics/charts API and the export action.
package http

import (
	"embed"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"salespulse/internal/dataset"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/services"
)

//go:embed web/index.html
var webFS embed.FS

// DashboardHandler handles the dashboard HTTP requests
type DashboardHandler struct {
	service  *services.DashboardService
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *Metrics
	page     *template.Template
}

// NewDashboardHandler creates a dashboard handler over the given service
func NewDashboardHandler(service *services.DashboardService, metrics *Metrics, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "dashboard_handler")),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  metrics,
		page:     template.Must(template.ParseFS(webFS, "web/index.html")),
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/filters", h.GetFilters)
	r.Post("/filter", h.ApplyFilter)
	r.Post("/export", h.Export)
	r.Get("/health", h.Health)

	return r
}

// Index serves the single dashboard page
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, map[string]interface{}{
		"Title": "Retail Sales Analytics Dashboard",
	}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page",
			slog.String("error", err.Error()))
	}
}

// FilterRequest is the ApplyFilter request body. Empty dimension lists mean
// no restriction on that dimension.
type FilterRequest struct {
	SessionID string   `json:"session_id"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	Cities    []string `json:"cities"`
	Products  []string `json:"products"`
	Genders   []string `json:"genders"`
}

// MetricsResponse carries the headline metrics; AvgRating is null for an
// empty filtered row set (the mean of nothing is undefined, not zero).
type MetricsResponse struct {
	TotalSales    float64  `json:"total_sales"`
	GrossIncome   float64  `json:"gross_income"`
	TotalQuantity int      `json:"total_quantity"`
	AvgRating     *float64 `json:"avg_rating"`
	RowCount      int      `json:"row_count"`
}

// FilterResponse is the ApplyFilter response body
type FilterResponse struct {
	SessionID string            `json:"session_id"`
	Metrics   MetricsResponse   `json:"metrics"`
	Charts    services.ChartSet `json:"charts"`
}

// GetFilters handles GET /api/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Options())
}

// ApplyFilter handles POST /api/filter: it recomputes the session's derived
// view and responds with metrics and chart payloads. A filter matching zero
// rows is a valid result, not an error.
func (h *DashboardHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.renderError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.renderError(w, r, apierrors.ErrValidation("date_range", "start_date and end_date must be ISO-8601 dates"))
		return
	}

	criteria, err := req.toCriteria()
	if err != nil {
		h.renderError(w, r, apierrors.ErrValidation("date_range", err.Error()))
		return
	}

	sessionID, metrics, charts := h.service.ApplyFilter(req.SessionID, criteria)
	h.metrics.FilterRequests.Inc()

	h.logger.InfoContext(r.Context(), "filter applied",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("matched_rows", metrics.RowCount))

	render.JSON(w, r, FilterResponse{
		SessionID: sessionID,
		Metrics:   toMetricsResponse(metrics),
		Charts:    charts,
	})
}

// ExportRequest is the Export request body
type ExportRequest struct {
	SessionID string `json:"session_id"`
}

// ExportResponse is the Export response body; Status is empty when the
// session never applied a filter.
type ExportResponse struct {
	Status string `json:"status"`
}

// Export handles POST /api/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.renderError(w, r, apierrors.ErrInvalidRequest)
		return
	}

	status, err := h.service.Export(req.SessionID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()))
		h.renderError(w, r, apierrors.ErrExportFailed(err))
		return
	}
	if status != "" {
		h.metrics.Exports.Inc()
	}

	render.JSON(w, r, ExportResponse{Status: status})
}

// Health handles GET /api/health
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "healthy",
		"rows":   h.service.RowCount(),
	})
}

func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	if err := render.Render(w, r, apiErr); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render error response",
			slog.String("error", err.Error()))
	}
}

func (r FilterRequest) toCriteria() (services.FilterCriteria, error) {
	start, err := time.Parse(dataset.ISODate, r.StartDate)
	if err != nil {
		return services.FilterCriteria{}, err
	}
	end, err := time.Parse(dataset.ISODate, r.EndDate)
	if err != nil {
		return services.FilterCriteria{}, err
	}
	return services.FilterCriteria{
		StartDate: start,
		EndDate:   end,
		Cities:    r.Cities,
		Products:  r.Products,
		Genders:   r.Genders,
	}, nil
}

func toMetricsResponse(m services.Metrics) MetricsResponse {
	resp := MetricsResponse{
		TotalSales:    m.TotalSales,
		GrossIncome:   m.GrossIncome,
		TotalQuantity: m.TotalQuantity,
		RowCount:      m.RowCount,
	}
	if !math.IsNaN(m.AvgRating) {
		rating := m.AvgRating
		resp.AvgRating = &rating
	}
	return resp
}
