// Package services implements the dashboard's derived state as an explicit
// pure-function pipeline: filter the table, compute metrics, build chart
// payloads. The request handler composes the three; there is no hidden
// recomputation order.
package services

import (
	"math"
	"sort"
	"time"

	"salespulse/internal/dataset"
)

// FilterCriteria restricts the cleaned table to a date range and optional
// dimension selections. Nil or empty slices mean no restriction on that
// dimension.
type FilterCriteria struct {
	StartDate time.Time
	EndDate   time.Time
	Cities    []string
	Products  []string
	Genders   []string
}

// FilterRows returns the rows of table matching the criteria: Date within
// [StartDate, EndDate] and membership in each provided dimension list.
func FilterRows(table []dataset.Record, c FilterCriteria) []dataset.Record {
	cities := toSet(c.Cities)
	products := toSet(c.Products)
	genders := toSet(c.Genders)

	var rows []dataset.Record
	for _, r := range table {
		if r.Date.Before(c.StartDate) || r.Date.After(c.EndDate) {
			continue
		}
		if cities != nil && !cities[r.City] {
			continue
		}
		if products != nil && !products[r.ProductLine] {
			continue
		}
		if genders != nil && !genders[r.Gender] {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Metrics are the headline numbers over a filtered row set
type Metrics struct {
	TotalSales    float64
	GrossIncome   float64
	TotalQuantity int
	// AvgRating is NaN for an empty row set; the transport layer maps NaN
	// to null so the page can show a placeholder.
	AvgRating float64
	RowCount  int
}

// ComputeMetrics computes the headline metrics over rows. An empty row set
// yields zero sums and a NaN mean rating.
func ComputeMetrics(rows []dataset.Record) Metrics {
	m := Metrics{RowCount: len(rows)}
	var ratingSum float64
	for _, r := range rows {
		m.TotalSales += r.Total
		m.GrossIncome += r.GrossIncome
		m.TotalQuantity += r.Quantity
		ratingSum += r.Rating
	}
	if len(rows) == 0 {
		m.AvgRating = math.NaN()
	} else {
		m.AvgRating = ratingSum / float64(len(rows))
	}
	return m
}

// Point is one label/value pair of a chart series
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// GenderCount is one customer-type count within a gender group
type GenderCount struct {
	CustomerType string `json:"customer_type"`
	Gender       string `json:"gender"`
	Count        int    `json:"count"`
}

// ChartSet holds the dashboard chart payloads, each an ordered series ready
// for the page's chart library. All series are empty, never nil maps or
// errors, for an empty row set.
type ChartSet struct {
	SalesTrend    []Point       `json:"sales_trend"`
	ProductSales  []Point       `json:"product_sales"`
	PaymentShare  []Point       `json:"payment_share"`
	CustomerTypes []GenderCount `json:"customer_types"`
	HourlySales   []Point       `json:"hourly_sales"`
}

// BuildChartSet derives every dashboard chart from the filtered row set
func BuildChartSet(rows []dataset.Record) ChartSet {
	return ChartSet{
		SalesTrend:    salesTrend(rows),
		ProductSales:  sumBy(rows, func(r dataset.Record) string { return r.ProductLine }),
		PaymentShare:  countBy(rows, func(r dataset.Record) string { return r.Payment }),
		CustomerTypes: customerTypesByGender(rows),
		HourlySales:   hourlySales(rows),
	}
}

// salesTrend sums total sales by date, points in date order
func salesTrend(rows []dataset.Record) []Point {
	sums := make(map[time.Time]float64)
	for _, r := range rows {
		sums[r.Date] += r.Total
	}
	dates := make([]time.Time, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]Point, len(dates))
	for i, d := range dates {
		points[i] = Point{Label: d.Format(dataset.ISODate), Value: sums[d]}
	}
	return points
}

// sumBy sums total sales per key, entries sorted by key
func sumBy(rows []dataset.Record, key func(dataset.Record) string) []Point {
	sums := make(map[string]float64)
	for _, r := range rows {
		sums[key(r)] += r.Total
	}
	return sortedPoints(sums)
}

// countBy counts rows per key, entries sorted by key
func countBy(rows []dataset.Record, key func(dataset.Record) string) []Point {
	counts := make(map[string]float64)
	for _, r := range rows {
		counts[key(r)]++
	}
	return sortedPoints(counts)
}

func customerTypesByGender(rows []dataset.Record) []GenderCount {
	type group struct{ customerType, gender string }
	counts := make(map[group]int)
	for _, r := range rows {
		counts[group{r.CustomerType, r.Gender}]++
	}

	out := make([]GenderCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, GenderCount{CustomerType: g.customerType, Gender: g.gender, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerType != out[j].CustomerType {
			return out[i].CustomerType < out[j].CustomerType
		}
		return out[i].Gender < out[j].Gender
	})
	return out
}

// hourlySales sums total sales by hour of day, hours in ascending order
func hourlySales(rows []dataset.Record) []Point {
	sums := make(map[int]float64)
	for _, r := range rows {
		sums[r.Hour] += r.Total
	}
	hours := make([]int, 0, len(sums))
	for h := range sums {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	points := make([]Point, len(hours))
	for i, h := range hours {
		points[i] = Point{Label: formatHour(h), Value: sums[h]}
	}
	return points
}

func formatHour(h int) string {
	return time.Date(0, 1, 1, h, 0, 0, 0, time.UTC).Format("15:00")
}

func sortedPoints(values map[string]float64) []Point {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]Point, len(keys))
	for i, k := range keys {
		points[i] = Point{Label: k, Value: values[k]}
	}
	return points
}
