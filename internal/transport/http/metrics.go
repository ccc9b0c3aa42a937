package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's prometheus instrumentation. Scraping is
// ambient observability; it never affects the pipeline or the dashboard.
type Metrics struct {
	registry       *prometheus.Registry
	FilterRequests prometheus.Counter
	Exports        prometheus.Counter
	DatasetRows    prometheus.Gauge
}

// NewMetrics creates and registers the dashboard metrics on a private
// registry, keeping the process-global default registry untouched.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		FilterRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salespulse_filter_requests_total",
			Help: "Number of dashboard filter applications.",
		}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "salespulse_exports_total",
			Help: "Number of filtered data exports written.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "salespulse_dataset_rows",
			Help: "Rows in the loaded cleaned table.",
		}),
	}
	registry.MustRegister(m.FilterRequests, m.Exports, m.DatasetRows)
	return m
}

// Handler returns the scrape endpoint handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
