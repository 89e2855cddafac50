package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func headerMapping() models.CsvMapping {
	return models.CsvMapping{
		DateColumn:        "Date",
		DescriptionColumn: "Description",
		AmountMode:        models.AmountModeSigned,
		AmountColumn:      "Amount",
		DateFormat:        models.DateFormatUSSlash,
		HasHeaderRow:      true,
	}
}

func TestParseFull(t *testing.T) {
	path := writeCSV(t, "tx.csv", "Date,Description,Amount\n1/15/2024,Coffee,-4.50\n1/16/2024,Salary,2000.00\n")

	result, err := ParseFull(path, headerMapping())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Description", "Amount"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Coffee", result.Rows[0]["Description"])
	assert.Equal(t, "2000.00", result.Rows[1]["Amount"])
	assert.Equal(t, 2, result.TotalRows)
	assert.False(t, result.Truncated)
}

func TestPreviewStopsAtLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Description,Amount\n")
	for i := 0; i < 20; i++ {
		b.WriteString("1/15/2024,Row,1.00\n")
	}
	path := writeCSV(t, "many.csv", b.String())

	result, err := Preview(path, headerMapping())
	require.NoError(t, err)

	assert.Len(t, result.Rows, PreviewRowCount)
	assert.True(t, result.Truncated)
}

func TestPreviewShortFileNotTruncated(t *testing.T) {
	path := writeCSV(t, "short.csv", "Date,Description,Amount\n1/15/2024,Coffee,-4.50\n")

	result, err := Preview(path, headerMapping())
	require.NoError(t, err)

	assert.Len(t, result.Rows, 1)
	assert.False(t, result.Truncated)
}

func TestParseRejectsNonCSVExtension(t *testing.T) {
	path := writeCSV(t, "tx.xlsx", "Date,Description,Amount\n")

	_, err := ParseFull(path, headerMapping())
	var typeErr *parsererror.UnsupportedFileTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, ".xlsx", typeErr.Extension)
}

func TestParseRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	_, err = ParseFull(path, headerMapping())
	var sizeErr *parsererror.FileTooLargeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, MaxFileSize+1, sizeErr.Size)
}

func TestParseMissingFile(t *testing.T) {
	_, err := ParseFull(filepath.Join(t.TempDir(), "absent.csv"), headerMapping())
	var readErr *parsererror.ReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestParseBlankLinesSkipped(t *testing.T) {
	path := writeCSV(t, "gaps.csv", "Date,Description,Amount\n\n1/15/2024,Coffee,-4.50\n\n")

	result, err := ParseFull(path, headerMapping())
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
}

func TestParseBlankHeaderGetsPlaceholder(t *testing.T) {
	path := writeCSV(t, "blankhdr.csv", "Date,,Amount\n1/15/2024,Coffee,-4.50\n")

	result, err := ParseFull(path, headerMapping())
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "column_2", "Amount"}, result.Columns)
	assert.Equal(t, "Coffee", result.Rows[0]["column_2"])
}

func TestParseHeaderWhitespaceTrimmed(t *testing.T) {
	path := writeCSV(t, "padhdr.csv", "Date , Description ,Amount\n1/15/2024,Coffee,-4.50\n")

	result, err := ParseFull(path, headerMapping())
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, result.Columns)
}

func TestParseDuplicateHeaderKeepsFirstValue(t *testing.T) {
	path := writeCSV(t, "dup.csv", "Date,Amount,Amount\n1/15/2024,-4.50,99.99\n")

	result, err := ParseFull(path, headerMapping())
	require.NoError(t, err)
	assert.Equal(t, "-4.50", result.Rows[0]["Amount"])
}

func TestParseWithoutHeaderRow(t *testing.T) {
	mapping := models.CsvMapping{
		DateColumn:        "column_1",
		DescriptionColumn: "column_2",
		AmountMode:        models.AmountModeSigned,
		AmountColumn:      "column_3",
		DateFormat:        models.DateFormatUSSlash,
		HasHeaderRow:      false,
	}
	path := writeCSV(t, "nohdr.csv", "1/15/2024,Coffee,-4.50\n1/16/2024,Lunch,-12.00\n")

	result, err := ParseFull(path, mapping)
	require.NoError(t, err)

	assert.Equal(t, []string{"column_1", "column_2", "column_3"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Coffee", result.Rows[0]["column_2"])
}

func TestParseShortRowLeavesColumnsAbsent(t *testing.T) {
	path := writeCSV(t, "short_row.csv", "Date,Description,Amount\n1/15/2024,Coffee\n")

	result, err := ParseFull(path, headerMapping())
	require.NoError(t, err)

	_, ok := result.Rows[0]["Amount"]
	assert.False(t, ok)
}

func TestParseRowCountCeiling(t *testing.T) {
	if testing.Short() {
		t.Skip("skips large file in short mode")
	}
	var b strings.Builder
	b.WriteString("Date,Description,Amount\n")
	for i := 0; i <= MaxRowCount; i++ {
		b.WriteString("1/1/2024,x,1\n")
	}
	path := writeCSV(t, "huge.csv", b.String())

	_, err := ParseFull(path, headerMapping())
	var rowErr *parsererror.RowCountExceededError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, MaxRowCount, rowErr.Limit)
}
