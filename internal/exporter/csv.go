// Package exporter writes filtered slices of the cleaned table to flat
// output files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "salespulse/internal/errors"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // add UTF-8 BOM for Excel compatibility
}

// Write writes data to a CSV file, creating parent directories as needed.
// Failures surface as ExportError.
func (w *CSVWriter) Write(path string, options WriteOptions) error {
	w.logger.Info("writing CSV export",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewExportError(path, fmt.Errorf("failed to create directory: %w", err))
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewExportError(path, err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewExportError(path, fmt.Errorf("failed to write BOM: %w", err))
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewExportError(path, fmt.Errorf("failed to write headers: %w", err))
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewExportError(path, fmt.Errorf("failed to write record %d: %w", i, err))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewExportError(path, err)
	}
	return nil
}
