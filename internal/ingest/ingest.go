// Package ingest reads bank CSV export files into raw row maps that the
// row mapper can consume. It enforces the file-level guardrails (size,
// extension, row count) before any row reaches the rest of the pipeline.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"ledgerline/bankimport/internal/fileutils"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/parsererror"
)

var log = logrus.New()

// SetLogger sets the logger for the ingest package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

const (
	// MaxFileSize is the largest CSV file the ingestor will accept.
	MaxFileSize int64 = 10 * 1024 * 1024

	// MaxRowCount is the largest number of data rows a single file may carry.
	MaxRowCount = 50000

	// PreviewRowCount is how many data rows Preview returns at most.
	PreviewRowCount = 5
)

// Result holds the rows read from a CSV file along with the resolved
// column names, in file order.
type Result struct {
	// Columns are the header names in their original column order.
	Columns []string

	// Rows maps column name to cell value, one entry per data row.
	Rows []map[string]string

	// TotalRows counts the data rows read (for Preview this can exceed
	// the number of returned rows only when truncation happened; Preview
	// stops reading after its limit, so TotalRows equals len(Rows)).
	TotalRows int

	// Truncated reports whether Preview stopped before end of file.
	Truncated bool
}

// Preview reads at most PreviewRowCount data rows from the file so a
// caller can inspect the shape of the data before a full import.
func Preview(filePath string, mapping models.CsvMapping) (*Result, error) {
	return parse(filePath, mapping, PreviewRowCount)
}

// ParseFull reads every data row in the file, subject to MaxRowCount.
func ParseFull(filePath string, mapping models.CsvMapping) (*Result, error) {
	return parse(filePath, mapping, 0)
}

func parse(filePath string, mapping models.CsvMapping, limit int) (*Result, error) {
	if err := checkFile(filePath); err != nil {
		return nil, err
	}

	file, err := fileutils.OpenFile(filePath)
	if err != nil {
		return nil, &parsererror.ReadError{FilePath: filePath, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close CSV file")
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &parsererror.ReadError{FilePath: filePath, Err: err}
		}
		if isBlankRecord(record) {
			continue
		}

		if result.Columns == nil {
			result.Columns = resolveColumns(record, mapping.HasHeaderRow)
			if mapping.HasHeaderRow {
				continue
			}
		}

		if limit > 0 && len(result.Rows) >= limit {
			result.Truncated = true
			break
		}

		result.Rows = append(result.Rows, recordToRow(result.Columns, record))
		result.TotalRows++
		if result.TotalRows > MaxRowCount {
			return nil, &parsererror.RowCountExceededError{FilePath: filePath, Limit: MaxRowCount}
		}
	}

	log.WithFields(logrus.Fields{
		"file": filePath,
		"rows": result.TotalRows,
	}).Debug("Read CSV file")
	return result, nil
}

func checkFile(filePath string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext != ".csv" {
		return &parsererror.UnsupportedFileTypeError{FilePath: filePath, Extension: ext}
	}

	size, err := fileutils.FileSize(filePath)
	if err != nil {
		return &parsererror.ReadError{FilePath: filePath, Err: err}
	}
	if size > MaxFileSize {
		return &parsererror.FileTooLargeError{FilePath: filePath, Size: size, Limit: MaxFileSize}
	}
	return nil
}

// resolveColumns turns the first non-blank record into column names.
// With a header row, blank cells get positional placeholders and every
// name is trimmed. Without one, all names are synthesized positionally.
func resolveColumns(record []string, hasHeader bool) []string {
	columns := make([]string, len(record))
	for i, cell := range record {
		name := ""
		if hasHeader {
			name = strings.TrimSpace(cell)
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		columns[i] = name
	}
	return columns
}

// recordToRow maps cell values to column names. Rows shorter than the
// header leave the trailing columns absent; extra cells beyond the
// header are dropped. A duplicated header name keeps its first value.
func recordToRow(columns []string, record []string) map[string]string {
	row := make(map[string]string, len(columns))
	for i, name := range columns {
		if i >= len(record) {
			break
		}
		if _, seen := row[name]; seen {
			continue
		}
		row[name] = record[i]
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
