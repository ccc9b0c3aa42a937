package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
)

const rawHeader = "Invoice ID,Branch,City,Customer type,Gender,Product line,Unit price,Quantity,Tax 5%,Total,Date,Time,Payment,cogs,gross income,Rating"

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleRecord() Record {
	return Record{
		InvoiceID:    "750-67-8428",
		Branch:       "A",
		City:         "Yangon",
		CustomerType: "Member",
		Gender:       "Female",
		ProductLine:  "Health And Beauty",
		UnitPrice:    74.69,
		Quantity:     7,
		Tax:          26.1415,
		Total:        548.9715,
		Date:         time.Date(2019, time.January, 5, 0, 0, 0, 0, time.UTC),
		Time:         "13:08:00",
		Payment:      "Ewallet",
		COGS:         522.83,
		GrossIncome:  26.1415,
		Rating:       9.1,
		Hour:         13,
		DayOfWeek:    "Saturday",
		Month:        "January",
		Quarter:      1,
	}
}

func TestReadRaw(t *testing.T) {
	content := rawHeader + "\n" +
		"750-67-8428,A,Yangon,Member,Female,health and beauty,74.69,7,26.1415,548.9715,1/5/2019,13:08,Ewallet,522.83,26.1415,9.1\n" +
		"226-31-3081,C,Naypyitaw,Normal,Female,electronic accessories,15.28,5,3.82,80.22,3/8/2019,10:29,Cash,76.4,3.82,9.6\n"

	rows, err := ReadRaw(writeTempCSV(t, content))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "750-67-8428", rows[0][ColInvoiceID])
	assert.Equal(t, "health and beauty", rows[0][ColProductLine])
	assert.Equal(t, "1/5/2019", rows[0][ColDate])
	assert.Equal(t, "Cash", rows[1][ColPayment])
}

func TestReadRawBOMAndShortRows(t *testing.T) {
	content := "\xEF\xBB\xBF" + rawHeader + "\n" +
		"100-00-0001,A,Yangon,Member,Female,sports and travel,10,1,0.5,10.5,1/1/2019,09:00\n"

	rows, err := ReadRaw(writeTempCSV(t, content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100-00-0001", rows[0][ColInvoiceID])
	// columns past the end of a short row read as missing
	assert.Equal(t, "", rows[0][ColRating])
}

func TestReadRawEmptyTable(t *testing.T) {
	rows, err := ReadRaw(writeTempCSV(t, rawHeader+"\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRawMissingColumn(t *testing.T) {
	content := "Invoice ID,Branch,City\n1,A,Yangon\n"

	_, err := ReadRaw(writeTempCSV(t, content))
	require.Error(t, err)

	var loadErr *apperrors.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "missing required column")
}

func TestReadRawMissingFile(t *testing.T) {
	_, err := ReadRaw(filepath.Join(t.TempDir(), "absent.csv"))

	var loadErr *apperrors.LoadError
	require.True(t, errors.As(err, &loadErr))
}

func TestWriteCleanedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "cleaned_sales_data.csv")
	want := []Record{sampleRecord()}

	require.NoError(t, WriteCleaned(path, want))

	got, err := ReadCleaned(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want[0], got[0])
}

func TestWriteCleanedISODates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, WriteCleaned(path, []Record{sampleRecord()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2019-01-05")
	assert.Contains(t, string(data), "Day_of_week")
}

func TestWriteCleanedEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, WriteCleaned(path, nil))

	got, err := ReadCleaned(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCleanedMalformedNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, WriteCleaned(path, []Record{sampleRecord()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	corrupted := strings.Replace(string(data), "74.69", "not-a-number", 1)
	require.NoError(t, os.WriteFile(path, []byte(corrupted), 0o644))

	_, err = ReadCleaned(path)
	var loadErr *apperrors.LoadError
	require.True(t, errors.As(err, &loadErr))
}
