package services

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"salespulse/internal/dataset"
	"salespulse/internal/exporter"
)

// Export file base names inside the outputs directory
const (
	ExportCSVFile   = "exported_data.csv"
	ExportExcelFile = "exported_data.xlsx"
)

// FilterOptions describes the selectable filter values of the loaded table
type FilterOptions struct {
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Cities    []string `json:"cities"`
	Products  []string `json:"products"`
	Genders   []string `json:"genders"`
}

// session is the per-client derived state: the last applied criteria and
// the filtered row set they produced. Sessions are never shared between
// clients and never persisted.
type session struct {
	criteria FilterCriteria
	filtered []dataset.Record
	applied  bool
}

// DashboardService serves the dashboard's filter, metrics, chart and export
// operations over the read-only cleaned table held in memory.
type DashboardService struct {
	table      []dataset.Record
	outputsDir string
	logger     *slog.Logger
	csv        *exporter.CSVWriter
	excel      *exporter.ExcelWriter

	mu       sync.Mutex
	sessions map[string]*session
}

// NewDashboardService creates a dashboard service over the cleaned table.
// The table is treated as immutable for the lifetime of the service.
func NewDashboardService(table []dataset.Record, outputsDir string, logger *slog.Logger) *DashboardService {
	logger = logger.With(slog.String("component", "dashboard"))
	return &DashboardService{
		table:      table,
		outputsDir: outputsDir,
		logger:     logger,
		csv:        exporter.NewCSVWriter(logger),
		excel:      exporter.NewExcelWriter(logger),
		sessions:   make(map[string]*session),
	}
}

// RowCount returns the size of the loaded cleaned table
func (s *DashboardService) RowCount() int {
	return len(s.table)
}

// Options returns the selectable filter values: the full date range of the
// table and the distinct cities, product lines and genders in sorted order.
func (s *DashboardService) Options() FilterOptions {
	opts := FilterOptions{
		Cities:   distinct(s.table, func(r dataset.Record) string { return r.City }),
		Products: distinct(s.table, func(r dataset.Record) string { return r.ProductLine }),
		Genders:  distinct(s.table, func(r dataset.Record) string { return r.Gender }),
	}
	if min, max, ok := s.DateRange(); ok {
		opts.StartDate = min.Format(dataset.ISODate)
		opts.EndDate = max.Format(dataset.ISODate)
	}
	return opts
}

// DateRange returns the min and max date of the table; ok is false for an
// empty table.
func (s *DashboardService) DateRange() (min, max time.Time, ok bool) {
	if len(s.table) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = s.table[0].Date, s.table[0].Date
	for _, r := range s.table[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true
}

// ApplyFilter recomputes the session's derived view for the given criteria
// and returns the session ID (a fresh one when sessionID is unknown or
// empty) with the metrics and chart payloads of the filtered row set.
func (s *DashboardService) ApplyFilter(sessionID string, criteria FilterCriteria) (string, Metrics, ChartSet) {
	rows := FilterRows(s.table, criteria)
	metrics := ComputeMetrics(rows)
	charts := BuildChartSet(rows)

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sessionID = uuid.NewString()
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.criteria = criteria
	sess.filtered = rows
	sess.applied = true
	s.mu.Unlock()

	s.logger.Info("filter applied",
		slog.String("session_id", sessionID),
		slog.Int("matched_rows", len(rows)))

	return sessionID, metrics, charts
}

// Export writes the session's current filtered row set to the outputs
// directory as CSV and Excel and returns a status message. A session that
// never applied a filter gets an empty status and no files.
func (s *DashboardService) Export(sessionID string) (string, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	var rows []dataset.Record
	applied := false
	if ok {
		rows = sess.filtered
		applied = sess.applied
	}
	s.mu.Unlock()

	if !applied {
		return "", nil
	}

	headers, records := exportRows(rows)
	csvPath := filepath.Join(s.outputsDir, ExportCSVFile)
	if err := s.csv.Write(csvPath, exporter.WriteOptions{Headers: headers, Records: records}); err != nil {
		return "", err
	}
	if err := s.excel.Write(filepath.Join(s.outputsDir, ExportExcelFile), headers, records); err != nil {
		return "", err
	}

	s.logger.Info("filtered data exported",
		slog.String("session_id", sessionID),
		slog.Int("rows", len(rows)))

	return fmt.Sprintf("Data exported to %s", csvPath), nil
}

// exportRows serializes records with the cleaned CSV schema
func exportRows(rows []dataset.Record) ([]string, [][]string) {
	headers := append(append([]string{}, dataset.RequiredColumns...),
		dataset.ColHour, dataset.ColDayOfWeek, dataset.ColMonth, dataset.ColQuarter)

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.InvoiceID, r.Branch, r.City, r.CustomerType, r.Gender, r.ProductLine,
			strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
			strconv.Itoa(r.Quantity),
			strconv.FormatFloat(r.Tax, 'f', -1, 64),
			strconv.FormatFloat(r.Total, 'f', -1, 64),
			r.Date.Format(dataset.ISODate),
			r.Time,
			r.Payment,
			strconv.FormatFloat(r.COGS, 'f', -1, 64),
			strconv.FormatFloat(r.GrossIncome, 'f', -1, 64),
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
			strconv.Itoa(r.Hour),
			r.DayOfWeek,
			r.Month,
			strconv.Itoa(r.Quarter),
		}
	}
	return headers, records
}

func distinct(rows []dataset.Record, key func(dataset.Record) string) []string {
	set := make(map[string]bool)
	for _, r := range rows {
		set[key(r)] = true
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
