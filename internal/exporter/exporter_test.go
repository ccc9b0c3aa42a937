package exporter

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCSVWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "exported_data.csv")

	err := NewCSVWriter(discardLogger()).Write(path, WriteOptions{
		Headers: []string{"Invoice ID", "City", "Total"},
		Records: [][]string{
			{"750-67-8428", "Yangon", "548.9715"},
			{"226-31-3081", "Naypyitaw", "80.22"},
		},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Invoice ID,City,Total\n750-67-8428,Yangon,548.9715\n226-31-3081,Naypyitaw,80.22\n",
		string(data))
}

func TestCSVWriterBOMPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported_data.csv")

	err := NewCSVWriter(discardLogger()).Write(path, WriteOptions{
		Headers:   []string{"City"},
		Records:   [][]string{{"Yangon"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
}

func TestCSVWriterEmptyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported_data.csv")

	err := NewCSVWriter(discardLogger()).Write(path, WriteOptions{
		Headers: []string{"City", "Total"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "City,Total\n", string(data))
}

func TestCSVWriterUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := NewCSVWriter(discardLogger()).Write(filepath.Join(blocker, "out.csv"), WriteOptions{})
	require.Error(t, err)

	var exportErr *apperrors.ExportError
	assert.True(t, errors.As(err, &exportErr))
}

func TestExcelWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outputs", "exported_data.xlsx")

	err := NewExcelWriter(discardLogger()).Write(path,
		[]string{"Invoice ID", "City", "Total"},
		[][]string{
			{"750-67-8428", "Yangon", "548.9715"},
		})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Filtered Data")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Invoice ID", "City", "Total"}, rows[0])
	assert.Equal(t, []string{"750-67-8428", "Yangon", "548.9715"}, rows[1])
}

func TestExcelWriterEmptyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported_data.xlsx")

	err := NewExcelWriter(discardLogger()).Write(path, []string{"City"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Filtered Data")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
