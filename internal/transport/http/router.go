package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the dashboard router: the page at the root, the API
// under /api and the prometheus scrape endpoint at /metrics.
func NewRouter(handler *DashboardHandler, metrics *Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", handler.Index)
	r.Mount("/api", handler.Routes())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
