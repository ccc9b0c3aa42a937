// Package cleaning turns raw sales rows into the canonical cleaned table:
// missing values imputed, duplicates dropped, categorical text normalized,
// dates parsed and calendar attributes derived.
package cleaning

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"salespulse/internal/dataset"
	apperrors "salespulse/internal/errors"
)

// UnknownCategory substitutes a categorical column that has no non-missing
// values to impute from.
const UnknownCategory = "Unknown"

var (
	dateLayouts = []string{"2006-01-02", "1/2/2006"}
	timeLayouts = []string{"15:04:05", "15:04"}
)

// Cleaner runs the cleaning pipeline. Each step logs its counts; logging is
// informational only and never affects control flow.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a Cleaner with the given logger
func NewCleaner(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Clean applies the cleaning steps in strict order: missing-value scan,
// numeric and categorical imputation, dedupe by invoice ID, text
// normalization, then date/time parsing with derived calendar fields.
// Later steps assume the invariants established by earlier ones. An empty
// input produces an empty cleaned table. A date or time that still fails to
// parse after imputation is a fatal ParseError.
func (c *Cleaner) Clean(rows []dataset.RawRow) ([]dataset.Record, error) {
	working := make([]dataset.RawRow, len(rows))
	for i, row := range rows {
		working[i] = row.Clone()
	}

	c.scanMissing(working)
	c.imputeNumeric(working)
	c.imputeCategorical(working)
	working = c.dedupe(working)
	c.normalize(working)
	return c.finalize(working)
}

// scanMissing logs per-column missing value counts without acting on them.
// Numeric columns use the same missing definition as imputeNumeric, so the
// counts here match what the imputation step will fill.
func (c *Cleaner) scanMissing(rows []dataset.RawRow) {
	total := 0
	for _, col := range dataset.RequiredColumns {
		missingFn := isMissing
		if numericColumn[col] {
			missingFn = isMissingNumeric
		}
		count := 0
		for _, row := range rows {
			if missingFn(row, col) {
				count++
			}
		}
		if count > 0 {
			c.logger.Info("missing values found",
				slog.String("column", col),
				slog.Int("count", count))
			total += count
		}
	}
	if total == 0 {
		c.logger.Info("no missing values found")
	}
}

// imputeNumeric fills missing numeric cells with the per-column median of
// the non-missing values in this load. Unparseable numeric cells count as
// missing. The Quantity column stays integral, its median is rounded.
func (c *Cleaner) imputeNumeric(rows []dataset.RawRow) {
	for _, col := range dataset.NumericColumns {
		var present []float64
		missing := 0
		for _, row := range rows {
			if isMissingNumeric(row, col) {
				missing++
				continue
			}
			v, _ := strconv.ParseFloat(row[col], 64)
			present = append(present, v)
		}
		if missing == 0 {
			continue
		}

		med, ok := median(present)
		if !ok {
			// no values to take a median from; zero is the fill of last resort
			med = 0
			c.logger.Warn("numeric column entirely missing, filling zero",
				slog.String("column", col))
		}
		fill := strconv.FormatFloat(med, 'f', -1, 64)
		if col == dataset.ColQuantity {
			fill = strconv.Itoa(int(math.Round(med)))
		}
		for _, row := range rows {
			if isMissingNumeric(row, col) {
				row[col] = fill
			}
		}
		c.logger.Info("filled missing values in numeric column",
			slog.String("column", col),
			slog.Int("count", missing),
			slog.String("median", fill))
	}
}

// imputeCategorical fills missing categorical cells with the per-column
// mode, or "Unknown" when a column has no non-missing values at all.
func (c *Cleaner) imputeCategorical(rows []dataset.RawRow) {
	for _, col := range dataset.CategoricalColumns {
		var present []string
		missing := 0
		for _, row := range rows {
			if isMissing(row, col) {
				missing++
				continue
			}
			present = append(present, row[col])
		}
		if missing == 0 {
			continue
		}

		fill, ok := mode(present)
		if !ok {
			fill = UnknownCategory
		}
		for _, row := range rows {
			if isMissing(row, col) {
				row[col] = fill
			}
		}
		c.logger.Info("filled missing values in categorical column",
			slog.String("column", col),
			slog.Int("count", missing),
			slog.String("mode", fill))
	}
}

// dedupe drops rows that repeat an earlier invoice ID, preserving order
func (c *Cleaner) dedupe(rows []dataset.RawRow) []dataset.RawRow {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	removed := 0
	for _, row := range rows {
		id := row[dataset.ColInvoiceID]
		if seen[id] {
			removed++
			continue
		}
		seen[id] = true
		out = append(out, row)
	}
	if removed > 0 {
		c.logger.Info("duplicate rows removed",
			slog.String("key", dataset.ColInvoiceID),
			slog.Int("count", removed))
	} else {
		c.logger.Info("no duplicate rows found")
	}
	return out
}

// normalize title-cases customer type, gender and product line; product
// line is trimmed of surrounding whitespace first.
func (c *Cleaner) normalize(rows []dataset.RawRow) {
	// cases.Caser carries state, so it stays local to one pass
	caser := cases.Title(language.English)
	for _, row := range rows {
		row[dataset.ColCustomerType] = caser.String(row[dataset.ColCustomerType])
		row[dataset.ColGender] = caser.String(row[dataset.ColGender])
		row[dataset.ColProductLine] = caser.String(strings.TrimSpace(row[dataset.ColProductLine]))
	}
	if len(rows) > 0 {
		c.logger.Info("categorical data standardized", slog.Int("rows", len(rows)))
	}
}

// finalize parses every row into a Record, deriving hour, day of week,
// month name and quarter from the date and time columns.
func (c *Cleaner) finalize(rows []dataset.RawRow) ([]dataset.Record, error) {
	records := make([]dataset.Record, 0, len(rows))
	for _, row := range rows {
		date, err := parseAny(row[dataset.ColDate], dateLayouts)
		if err != nil {
			return nil, apperrors.NewParseError(dataset.ColDate, row[dataset.ColDate], err)
		}
		clock, err := parseAny(row[dataset.ColTime], timeLayouts)
		if err != nil {
			return nil, apperrors.NewParseError(dataset.ColTime, row[dataset.ColTime], err)
		}

		records = append(records, dataset.Record{
			InvoiceID:    row[dataset.ColInvoiceID],
			Branch:       row[dataset.ColBranch],
			City:         row[dataset.ColCity],
			CustomerType: row[dataset.ColCustomerType],
			Gender:       row[dataset.ColGender],
			ProductLine:  row[dataset.ColProductLine],
			UnitPrice:    mustFloat(row[dataset.ColUnitPrice]),
			Quantity:     int(math.Round(mustFloat(row[dataset.ColQuantity]))),
			Tax:          mustFloat(row[dataset.ColTax]),
			Total:        mustFloat(row[dataset.ColTotal]),
			Date:         date,
			Time:         clock.Format("15:04:05"),
			Payment:      row[dataset.ColPayment],
			COGS:         mustFloat(row[dataset.ColCOGS]),
			GrossIncome:  mustFloat(row[dataset.ColGrossIncome]),
			Rating:       mustFloat(row[dataset.ColRating]),
			Hour:         clock.Hour(),
			DayOfWeek:    date.Weekday().String(),
			Month:        date.Month().String(),
			Quarter:      int(date.Month()-1)/3 + 1,
		})
	}
	c.logger.Info("date and time columns processed", slog.Int("rows", len(records)))
	return records, nil
}

// numericColumn marks the median-imputed columns
var numericColumn = func() map[string]bool {
	set := make(map[string]bool, len(dataset.NumericColumns))
	for _, col := range dataset.NumericColumns {
		set[col] = true
	}
	return set
}()

func isMissing(row dataset.RawRow, col string) bool {
	return strings.TrimSpace(row[col]) == ""
}

// isMissingNumeric treats an unparseable cell as missing, the same cells
// imputeNumeric fills
func isMissingNumeric(row dataset.RawRow, col string) bool {
	_, err := strconv.ParseFloat(row[col], 64)
	return err != nil
}

func parseAny(value string, layouts []string) (time.Time, error) {
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// mustFloat converts a cell that imputation has already guaranteed numeric
func mustFloat(value string) float64 {
	v, _ := strconv.ParseFloat(value, 64)
	return v
}
