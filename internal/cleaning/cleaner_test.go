package cleaning

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/dataset"
	apperrors "salespulse/internal/errors"
)

func testCleaner() *Cleaner {
	return NewCleaner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func baseRow() dataset.RawRow {
	return dataset.RawRow{
		dataset.ColInvoiceID:    "750-67-8428",
		dataset.ColBranch:       "A",
		dataset.ColCity:         "Yangon",
		dataset.ColCustomerType: "Member",
		dataset.ColGender:       "Female",
		dataset.ColProductLine:  "health and beauty",
		dataset.ColUnitPrice:    "74.69",
		dataset.ColQuantity:     "7",
		dataset.ColTax:          "26.1415",
		dataset.ColTotal:        "548.9715",
		dataset.ColDate:         "1/5/2019",
		dataset.ColTime:         "13:08",
		dataset.ColPayment:      "Ewallet",
		dataset.ColCOGS:         "522.83",
		dataset.ColGrossIncome:  "26.1415",
		dataset.ColRating:       "9.1",
	}
}

func rowWith(overrides map[string]string) dataset.RawRow {
	row := baseRow()
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func TestCleanDerivesCalendarFields(t *testing.T) {
	records, err := testCleaner().Clean([]dataset.RawRow{baseRow()})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "Health And Beauty", got.ProductLine)
	assert.Equal(t, "January", got.Month)
	assert.Equal(t, 13, got.Hour)
	assert.Equal(t, "Saturday", got.DayOfWeek)
	assert.Equal(t, 1, got.Quarter)
	assert.Equal(t, "13:08:00", got.Time)
}

func TestCleanNormalizesCategoricalText(t *testing.T) {
	records, err := testCleaner().Clean([]dataset.RawRow{rowWith(map[string]string{
		dataset.ColCustomerType: "MEMBER",
		dataset.ColGender:       "female",
		dataset.ColProductLine:  "  sports and travel  ",
	})})
	require.NoError(t, err)

	assert.Equal(t, "Member", records[0].CustomerType)
	assert.Equal(t, "Female", records[0].Gender)
	assert.Equal(t, "Sports And Travel", records[0].ProductLine)
}

func TestCleanDeduplicatesByInvoiceID(t *testing.T) {
	first := rowWith(map[string]string{dataset.ColInvoiceID: "100-00-0001", dataset.ColCity: "Yangon"})
	second := rowWith(map[string]string{dataset.ColInvoiceID: "100-00-0001", dataset.ColCity: "Mandalay"})
	third := rowWith(map[string]string{dataset.ColInvoiceID: "100-00-0002"})

	records, err := testCleaner().Clean([]dataset.RawRow{first, second, third})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// first occurrence wins, original order preserved
	assert.Equal(t, "100-00-0001", records[0].InvoiceID)
	assert.Equal(t, "Yangon", records[0].City)
	assert.Equal(t, "100-00-0002", records[1].InvoiceID)
}

func TestCleanImputesNumericMedian(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColUnitPrice: "10"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColUnitPrice: ""}),
		rowWith(map[string]string{dataset.ColInvoiceID: "3", dataset.ColUnitPrice: "30"}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// median of the present values {10, 30} is 20
	assert.Equal(t, 20.0, records[1].UnitPrice)
	assert.Equal(t, 10.0, records[0].UnitPrice)
	assert.Equal(t, 30.0, records[2].UnitPrice)
}

func TestCleanImputesQuantityAsInteger(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColQuantity: "2"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColQuantity: ""}),
		rowWith(map[string]string{dataset.ColInvoiceID: "3", dataset.ColQuantity: "5"}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)

	// median 3.5 rounds to the nearest whole quantity
	assert.Equal(t, 4, records[1].Quantity)
}

func TestCleanImputesMissingRating(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColRating: "10"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColRating: ""}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// the missing rating takes the median of the present ratings, never zero
	assert.Equal(t, 10.0, records[0].Rating)
	assert.Equal(t, 10.0, records[1].Rating)
}

func TestCleanImputesUnparseableNumeric(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColUnitPrice: "10"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColUnitPrice: "not-a-number"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "3", dataset.ColUnitPrice: "30"}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)
	assert.Equal(t, 20.0, records[1].UnitPrice)
}

func TestScanMissingCountsUnparseableNumerics(t *testing.T) {
	var buf bytes.Buffer
	cleaner := NewCleaner(slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := cleaner.Clean([]dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColUnitPrice: "garbage"}),
	})
	require.NoError(t, err)

	// the scan reports the unparseable cell the imputation step will fill
	assert.Contains(t, buf.String(), `column="Unit price" count=1`)
}

func TestCleanNumericColumnEntirelyMissing(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColTax: ""}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColTax: ""}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)

	// no values to take a median from; the column fills with zero
	assert.Equal(t, 0.0, records[0].Tax)
	assert.Equal(t, 0.0, records[1].Tax)
}

func TestCleanImputesCategoricalMode(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColPayment: "Cash"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColPayment: ""}),
		rowWith(map[string]string{dataset.ColInvoiceID: "3", dataset.ColPayment: "Cash"}),
		rowWith(map[string]string{dataset.ColInvoiceID: "4", dataset.ColPayment: "Ewallet"}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)
	assert.Equal(t, "Cash", records[1].Payment)
}

func TestCleanCategoricalUnknownFallback(t *testing.T) {
	rows := []dataset.RawRow{
		rowWith(map[string]string{dataset.ColInvoiceID: "1", dataset.ColBranch: ""}),
		rowWith(map[string]string{dataset.ColInvoiceID: "2", dataset.ColBranch: "  "}),
	}

	records, err := testCleaner().Clean(rows)
	require.NoError(t, err)
	assert.Equal(t, UnknownCategory, records[0].Branch)
	assert.Equal(t, UnknownCategory, records[1].Branch)
}

func TestCleanEmptyTable(t *testing.T) {
	records, err := testCleaner().Clean(nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCleanISODatesAccepted(t *testing.T) {
	records, err := testCleaner().Clean([]dataset.RawRow{rowWith(map[string]string{
		dataset.ColDate: "2019-03-08",
		dataset.ColTime: "10:29:33",
	})})
	require.NoError(t, err)

	assert.Equal(t, "March", records[0].Month)
	assert.Equal(t, 10, records[0].Hour)
	assert.Equal(t, 1, records[0].Quarter)
}

func TestCleanMalformedDateIsFatal(t *testing.T) {
	_, err := testCleaner().Clean([]dataset.RawRow{rowWith(map[string]string{
		dataset.ColDate: "not-a-date",
	})})
	require.Error(t, err)

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, dataset.ColDate, parseErr.Column)
}

func TestCleanMalformedTimeIsFatal(t *testing.T) {
	_, err := testCleaner().Clean([]dataset.RawRow{rowWith(map[string]string{
		dataset.ColTime: "99:99",
	})})

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, dataset.ColTime, parseErr.Column)
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	row := rowWith(map[string]string{dataset.ColProductLine: "  food and beverages  "})
	_, err := testCleaner().Clean([]dataset.RawRow{row})
	require.NoError(t, err)

	assert.Equal(t, "  food and beverages  ", row[dataset.ColProductLine])
}

func TestCleanIdempotent(t *testing.T) {
	raw := []dataset.RawRow{
		baseRow(),
		rowWith(map[string]string{dataset.ColInvoiceID: "226-31-3081", dataset.ColProductLine: "electronic accessories", dataset.ColDate: "3/8/2019"}),
	}

	cleaner := testCleaner()
	once, err := cleaner.Clean(raw)
	require.NoError(t, err)

	// feed the cleaned output back through as raw rows
	again := make([]dataset.RawRow, len(once))
	for i, r := range once {
		again[i] = dataset.RawRow{
			dataset.ColInvoiceID:    r.InvoiceID,
			dataset.ColBranch:       r.Branch,
			dataset.ColCity:         r.City,
			dataset.ColCustomerType: r.CustomerType,
			dataset.ColGender:       r.Gender,
			dataset.ColProductLine:  r.ProductLine,
			dataset.ColUnitPrice:    "74.69",
			dataset.ColQuantity:     "7",
			dataset.ColTax:          "26.1415",
			dataset.ColTotal:        "548.9715",
			dataset.ColDate:         r.Date.Format(dataset.ISODate),
			dataset.ColTime:         r.Time,
			dataset.ColPayment:      r.Payment,
			dataset.ColCOGS:         "522.83",
			dataset.ColGrossIncome:  "26.1415",
			dataset.ColRating:       "9.1",
		}
	}

	twice, err := cleaner.Clean(again)
	require.NoError(t, err)
	require.Len(t, twice, len(once))

	for i := range once {
		assert.Equal(t, once[i].InvoiceID, twice[i].InvoiceID)
		assert.Equal(t, once[i].ProductLine, twice[i].ProductLine)
		assert.Equal(t, once[i].Month, twice[i].Month)
		assert.Equal(t, once[i].Hour, twice[i].Hour)
		assert.Equal(t, once[i].Quarter, twice[i].Quarter)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		ok     bool
	}{
		{"odd count", []float64{3, 1, 2}, 2, true},
		{"even count", []float64{10, 30}, 20, true},
		{"single", []float64{7}, 7, true},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := median(tt.values)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestModeFirstSeenTieBreak(t *testing.T) {
	got, ok := mode([]string{"Cash", "Ewallet", "Ewallet", "Cash"})
	require.True(t, ok)
	assert.Equal(t, "Cash", got)

	_, ok = mode(nil)
	assert.False(t, ok)
}
