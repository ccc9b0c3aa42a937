// Package report renders the static chart images from the cleaned table.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salespulse/internal/dataset"
	apperrors "salespulse/internal/errors"
)

// Output file names inside the visualizations directory
const (
	TrendChartFile   = "sales_trend_over_time.png"
	HeatmapChartFile = "sales_heatmap_region_product.png"
	MonthChartFile   = "sales_by_month.png"
)

// Renderer produces the static charts. The charts are independent,
// order-insensitive units of work and render concurrently; on failure the
// files already written stay on disk.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer with the given logger
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger.With(slog.String("component", "renderer"))}
}

// Render writes the three static charts into outputDir, creating it if
// absent, and returns the paths actually written. A chart that cannot be
// constructed (for example from an empty grouping) yields a RenderError;
// other charts may still have completed and their files are kept.
func (r *Renderer) Render(records []dataset.Record, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, apperrors.NewRenderError("output directory", err)
	}

	charts := []struct {
		name string
		fn   func([]dataset.Record, string) error
	}{
		{TrendChartFile, renderSalesTrend},
		{HeatmapChartFile, renderRegionProductHeatmap},
		{MonthChartFile, renderSalesByMonth},
	}

	var (
		mu      sync.Mutex
		written []string
		g       errgroup.Group
	)
	for _, c := range charts {
		g.Go(func() error {
			path := filepath.Join(outputDir, c.name)
			if err := c.fn(records, path); err != nil {
				r.logger.Error("chart rendering failed",
					slog.String("chart", c.name),
					slog.String("error", err.Error()))
				return apperrors.NewRenderError(c.name, err)
			}
			mu.Lock()
			written = append(written, path)
			mu.Unlock()
			r.logger.Info("chart saved", slog.String("path", path))
			return nil
		})
	}

	err := g.Wait()
	sort.Strings(written)
	return written, err
}

// sumByDate groups total sales by calendar date, returned in date order
func sumByDate(records []dataset.Record) ([]time.Time, []float64) {
	sums := make(map[time.Time]float64)
	for _, rec := range records {
		sums[rec.Date] += rec.Total
	}
	dates := make([]time.Time, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([]float64, len(dates))
	for i, d := range dates {
		values[i] = sums[d]
	}
	return dates, values
}

// sumByMonth groups total sales by month name in calendar order, months
// with no sales omitted.
func sumByMonth(records []dataset.Record) ([]string, []float64) {
	sums := make(map[string]float64)
	for _, rec := range records {
		sums[rec.Month] += rec.Total
	}

	var months []string
	var values []float64
	for m := time.January; m <= time.December; m++ {
		if v, ok := sums[m.String()]; ok {
			months = append(months, m.String())
			values = append(values, v)
		}
	}
	return months, values
}

func errEmptyGrouping(dimension string) error {
	return fmt.Errorf("empty grouping: no %s values to plot", dimension)
}
