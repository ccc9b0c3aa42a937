// Package analysis computes the fixed set of descriptive aggregates over
// the cleaned sales table.
package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"salespulse/internal/dataset"
)

// topCustomerLimit caps the customer-type frequency ranking
const topCustomerLimit = 5

// CustomerTypeCount is one entry of the customer-type frequency ranking
type CustomerTypeCount struct {
	CustomerType string `json:"customer_type"`
	Count        int    `json:"count"`
}

// AnalysisResult holds the descriptive aggregates of one cleaned table.
// The grouped sums are mappings, not sequences; callers that need an order
// (chronological months, sorted cities) sort explicitly.
type AnalysisResult struct {
	TotalSales float64 `json:"total_sales"`
	// AverageSales is NaN for an empty table. The mean of nothing is
	// undefined and must not masquerade as zero.
	AverageSales        float64             `json:"average_sales"`
	SalesByRegion       map[string]float64  `json:"sales_by_region"`
	SalesByProduct      map[string]float64  `json:"sales_by_product"`
	SalesByMonth        map[string]float64  `json:"sales_by_month"`
	TopCustomers        []CustomerTypeCount `json:"top_customers"`
	PaymentDistribution map[string]float64  `json:"payment_distribution"`
}

// Analyzer computes aggregates. It is stateless; the struct only carries
// the injected logger.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer with the given logger
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Analyze computes all aggregates over the cleaned table. It is a pure
// function of its input apart from logging and never fails for a table
// satisfying the cleaned-table invariants.
func (a *Analyzer) Analyze(records []dataset.Record) AnalysisResult {
	a.logger.Info("starting data analysis", slog.Int("rows", len(records)))

	result := AnalysisResult{
		SalesByRegion:       make(map[string]float64),
		SalesByProduct:      make(map[string]float64),
		SalesByMonth:        make(map[string]float64),
		PaymentDistribution: make(map[string]float64),
	}

	paymentCounts := make(map[string]int)
	customerCounts := make(map[string]int)
	var customerOrder []string

	for _, r := range records {
		result.TotalSales += r.Total
		result.SalesByRegion[r.City] += r.Total
		result.SalesByProduct[r.ProductLine] += r.Total
		result.SalesByMonth[r.Month] += r.Total
		paymentCounts[r.Payment]++
		if customerCounts[r.CustomerType] == 0 {
			customerOrder = append(customerOrder, r.CustomerType)
		}
		customerCounts[r.CustomerType]++
	}

	if len(records) == 0 {
		result.AverageSales = math.NaN()
	} else {
		result.AverageSales = result.TotalSales / float64(len(records))
		for method, count := range paymentCounts {
			result.PaymentDistribution[method] = float64(count) / float64(len(records))
		}
	}

	result.TopCustomers = rankCustomers(customerCounts, customerOrder)

	a.logger.Info("total sales calculated", slog.Float64("total_sales", result.TotalSales))
	a.logger.Info("average sales calculated", slog.Float64("average_sales", result.AverageSales))
	a.logger.Info("sales by region calculated", slog.Int("regions", len(result.SalesByRegion)))
	a.logger.Info("sales by product line calculated", slog.Int("product_lines", len(result.SalesByProduct)))
	a.logger.Info("sales by month calculated", slog.Int("months", len(result.SalesByMonth)))
	a.logger.Info("top customer types identified", slog.Int("entries", len(result.TopCustomers)))
	a.logger.Info("payment method distribution calculated", slog.Int("methods", len(result.PaymentDistribution)))
	a.logger.Info("data analysis completed")

	return result
}

// rankCustomers orders customer types by descending frequency, ties broken
// by first-encountered order, capped at topCustomerLimit entries.
func rankCustomers(counts map[string]int, order []string) []CustomerTypeCount {
	ranked := make([]CustomerTypeCount, 0, len(order))
	for _, ct := range order {
		ranked = append(ranked, CustomerTypeCount{CustomerType: ct, Count: counts[ct]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topCustomerLimit {
		ranked = ranked[:topCustomerLimit]
	}
	return ranked
}

// WriteSummary prints the aggregates as a human-readable block, one line
// per metric, grouped values sorted by key for stable output.
func (r AnalysisResult) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Total Sales: $%.2f\n", r.TotalSales)
	if math.IsNaN(r.AverageSales) {
		fmt.Fprintln(w, "Average Sales: n/a (empty table)")
	} else {
		fmt.Fprintf(w, "Average Sales: $%.2f\n", r.AverageSales)
	}

	writeGroup(w, "Sales by Region", r.SalesByRegion, "$%.2f")
	writeGroup(w, "Sales by Product Line", r.SalesByProduct, "$%.2f")
	writeGroup(w, "Sales by Month", r.SalesByMonth, "$%.2f")

	fmt.Fprintln(w, "Top Customer Types:")
	for _, entry := range r.TopCustomers {
		fmt.Fprintf(w, "  %s: %d\n", entry.CustomerType, entry.Count)
	}

	writeGroup(w, "Payment Method Distribution", r.PaymentDistribution, "%.4f")
}

func writeGroup(w io.Writer, title string, values map[string]float64, format string) {
	fmt.Fprintf(w, "%s:\n", title)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: "+format+"\n", k, values[k])
	}
}
