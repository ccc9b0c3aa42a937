package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
)

// sheetName is the worksheet the export lands on
const sheetName = "Filtered Data"

// ExcelWriter provides Excel export functionality
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_writer"))}
}

// Write writes headers and records to an xlsx workbook at path with a bold
// header row. Failures surface as ExportError.
func (w *ExcelWriter) Write(path string, headers []string, records [][]string) error {
	w.logger.Info("writing Excel export",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewExportError(path, fmt.Errorf("failed to create directory: %w", err))
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return apperrors.NewExportError(path, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewExportError(path, err)
	}

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return apperrors.NewExportError(path, err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(headers) > 0 {
		endCell, cellErr := excelize.CoordinatesToCellName(len(headers), 1)
		if cellErr == nil {
			f.SetCellStyle(sheetName, "A1", endCell, boldStyle)
		}
	}

	for i, record := range records {
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewExportError(path, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return apperrors.NewExportError(path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewExportError(path, err)
	}
	return nil
}
