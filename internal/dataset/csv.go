package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
)

// ISODate is the date layout of the cleaned CSV
const ISODate = "2006-01-02"

// cleanedHeader is the cleaned CSV column order: the raw column set followed
// by the derived columns.
var cleanedHeader = append(append([]string{}, RequiredColumns...),
	ColHour, ColDayOfWeek, ColMonth, ColQuarter)

// ReadRaw parses the raw sales CSV at path into rows keyed by column name.
// It fails with a LoadError when the file is unreadable or the header lacks
// a required column. Columns outside the required set are ignored. An input
// with a valid header and zero data rows yields an empty, valid table.
func ReadRaw(path string) ([]RawRow, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewLoadError(path, fmt.Errorf("missing header row"))
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(RawRow, len(RequiredColumns))
		for col, i := range index {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCleaned writes the cleaned table to path as CSV with a header row,
// dates in ISO-8601 and the derived columns appended.
func WriteCleaned(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(cleanedHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range records {
		row := []string{
			r.InvoiceID,
			r.Branch,
			r.City,
			r.CustomerType,
			r.Gender,
			r.ProductLine,
			formatFloat(r.UnitPrice),
			strconv.Itoa(r.Quantity),
			formatFloat(r.Tax),
			formatFloat(r.Total),
			r.Date.Format(ISODate),
			r.Time,
			r.Payment,
			formatFloat(r.COGS),
			formatFloat(r.GrossIncome),
			formatFloat(r.Rating),
			strconv.Itoa(r.Hour),
			r.DayOfWeek,
			r.Month,
			strconv.Itoa(r.Quarter),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// ReadCleaned loads a cleaned CSV produced by WriteCleaned. The cleaned
// table is canonical, so malformed cells here are load errors rather than
// values to impute.
func ReadCleaned(path string) ([]Record, error) {
	rows, err := readAll(path)
	if err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewLoadError(path, fmt.Errorf("missing header row"))
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, col := range cleanedHeader {
		if _, ok := index[col]; !ok {
			return nil, apperrors.NewLoadError(path, fmt.Errorf("missing required column %q", col))
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for n, rec := range rows[1:] {
		if len(rec) < len(cleanedHeader) {
			return nil, apperrors.NewLoadError(path,
				fmt.Errorf("row %d: expected %d fields, got %d", n+1, len(cleanedHeader), len(rec)))
		}
		cell := func(col string) string { return rec[index[col]] }

		r := Record{
			InvoiceID:    cell(ColInvoiceID),
			Branch:       cell(ColBranch),
			City:         cell(ColCity),
			CustomerType: cell(ColCustomerType),
			Gender:       cell(ColGender),
			ProductLine:  cell(ColProductLine),
			Time:         cell(ColTime),
			Payment:      cell(ColPayment),
			DayOfWeek:    cell(ColDayOfWeek),
			Month:        cell(ColMonth),
		}

		var parseErr error
		parse := func(col string, dst *float64) {
			if parseErr != nil {
				return
			}
			v, err := strconv.ParseFloat(cell(col), 64)
			if err != nil {
				parseErr = fmt.Errorf("row %d column %q: %w", n+1, col, err)
				return
			}
			*dst = v
		}
		parseInt := func(col string, dst *int) {
			if parseErr != nil {
				return
			}
			v, err := strconv.Atoi(cell(col))
			if err != nil {
				parseErr = fmt.Errorf("row %d column %q: %w", n+1, col, err)
				return
			}
			*dst = v
		}

		parse(ColUnitPrice, &r.UnitPrice)
		parseInt(ColQuantity, &r.Quantity)
		parse(ColTax, &r.Tax)
		parse(ColTotal, &r.Total)
		parse(ColCOGS, &r.COGS)
		parse(ColGrossIncome, &r.GrossIncome)
		parse(ColRating, &r.Rating)
		parseInt(ColHour, &r.Hour)
		parseInt(ColQuarter, &r.Quarter)
		if parseErr != nil {
			return nil, apperrors.NewLoadError(path, parseErr)
		}

		date, err := time.Parse(ISODate, cell(ColDate))
		if err != nil {
			return nil, apperrors.NewLoadError(path, fmt.Errorf("row %d column %q: %w", n+1, ColDate, err))
		}
		r.Date = date

		records = append(records, r)
	}
	return records, nil
}

// readAll reads a whole CSV file, tolerating a UTF-8 BOM and ragged rows.
func readAll(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content = stripBOM(content)

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func stripBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	// keep only the columns the pipeline knows about
	known := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		known[col] = index[col]
	}
	return known, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
