package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"salespulse/internal/dataset"
)

// renderSalesTrend draws total sales summed by date as a line chart
func renderSalesTrend(records []dataset.Record, path string) error {
	dates, values := sumByDate(records)
	if len(dates) == 0 {
		return errEmptyGrouping("date")
	}

	graph := chart.Chart{
		Title:  "Sales Trend Over Time",
		Width:  1200,
		Height: 600,
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(dataset.ISODate),
		},
		YAxis: chart.YAxis{
			Name: "Total Sales",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total",
				XValues: dates,
				YValues: values,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
		},
	}

	return renderToFile(graph.Render, path)
}

// renderSalesByMonth draws total sales per month as a bar chart, bars in
// calendar order.
func renderSalesByMonth(records []dataset.Record, path string) error {
	months, values := sumByMonth(records)
	if len(months) == 0 {
		return errEmptyGrouping("month")
	}

	barStyle := chart.Style{
		FillColor:   drawing.ColorFromHex("ffa500"),
		StrokeColor: drawing.ColorFromHex("ffa500"),
	}
	bars := make([]chart.Value, len(months))
	for i, m := range months {
		bars[i] = chart.Value{Label: m, Value: values[i], Style: barStyle}
	}

	graph := chart.BarChart{
		Title:      "Total Sales by Month",
		Width:      1200,
		Height:     600,
		BarWidth:   50,
		BarSpacing: 30,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}

	return renderToFile(graph.Render, path)
}

// pivotGrid is the city (rows) by product line (columns) sales pivot.
// Cells with no matching rows hold NaN and render blank.
type pivotGrid struct {
	cities   []string
	products []string
	z        [][]float64
}

func (g pivotGrid) Dims() (c, r int)   { return len(g.products), len(g.cities) }
func (g pivotGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g pivotGrid) X(c int) float64    { return float64(c) }
func (g pivotGrid) Y(r int) float64    { return float64(r) }

// renderRegionProductHeatmap draws the city x product line sales pivot as
// an annotated heatmap.
func renderRegionProductHeatmap(records []dataset.Record, path string) error {
	grid := buildPivot(records)
	if len(grid.cities) == 0 || len(grid.products) == 0 {
		return errEmptyGrouping("city/product")
	}

	p := plot.New()
	p.Title.Text = "Sales Heatmap by Region and Product Line"
	p.X.Label.Text = "Product Line"
	p.Y.Label.Text = "City"

	heatmap := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(heatmap)

	// annotate each populated cell with its sales total
	var labels plotter.XYLabels
	for row := range grid.cities {
		for col := range grid.products {
			v := grid.z[row][col]
			if math.IsNaN(v) {
				continue
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(col), Y: float64(row)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.1f", v))
		}
	}
	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	p.Add(annotations)

	p.NominalX(grid.products...)
	p.NominalY(grid.cities...)

	return p.Save(12*vg.Inch, 8*vg.Inch, path)
}

// buildPivot sums total sales per city/product combination, axes sorted
// alphabetically, absent combinations as NaN.
func buildPivot(records []dataset.Record) pivotGrid {
	citySet := make(map[string]bool)
	productSet := make(map[string]bool)
	sums := make(map[[2]string]float64)
	seen := make(map[[2]string]bool)
	for _, rec := range records {
		citySet[rec.City] = true
		productSet[rec.ProductLine] = true
		key := [2]string{rec.City, rec.ProductLine}
		sums[key] += rec.Total
		seen[key] = true
	}

	grid := pivotGrid{
		cities:   sortedKeys(citySet),
		products: sortedKeys(productSet),
	}
	grid.z = make([][]float64, len(grid.cities))
	for row, city := range grid.cities {
		grid.z[row] = make([]float64, len(grid.products))
		for col, product := range grid.products {
			key := [2]string{city, product}
			if seen[key] {
				grid.z[row][col] = sums[key]
			} else {
				grid.z[row][col] = math.NaN()
			}
		}
	}
	return grid
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderToFile runs a go-chart render function against a freshly created
// file, removing the file again when rendering fails mid-write.
func renderToFile(render func(chart.RendererProvider, io.Writer) error, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(chart.PNG, file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
