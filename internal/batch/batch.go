// Package batch provides directory-level staging: every CSV file in a
// directory is staged through the import pipeline in a stable order.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ledgerline/bankimport/internal/importer"
	"ledgerline/bankimport/internal/logging"
	"ledgerline/bankimport/internal/models"
)

// DateRange is the span of staged dates in one file's batch.
type DateRange struct {
	Start string // ISO yyyy-MM-dd, empty when no row carried a date
	End   string
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD".
func (dr DateRange) String() string {
	if dr.Start == "" || dr.End == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s", dr.Start, dr.End)
}

// Merge combines this date range with another, returning the overall range.
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if start == "" || (other.Start != "" && other.Start < start) {
		start = other.Start
	}
	if end == "" || (other.End != "" && other.End > end) {
		end = other.End
	}
	return DateRange{Start: start, End: end}
}

// FileResult is the staging outcome for one file in a directory run.
type FileResult struct {
	File      string
	Result    *models.ImportResult
	DateRange DateRange
	Err       error
}

// Processor stages every CSV file in a directory against one book.
type Processor struct {
	pipeline *importer.Pipeline
	logger   logging.Logger
}

// NewProcessor creates a directory batch processor.
func NewProcessor(pipeline *importer.Pipeline, logger logging.Logger) *Processor {
	return &Processor{pipeline: pipeline, logger: logger}
}

// FindCSVFiles returns the CSV files in a directory, sorted by name so
// statement files stage in a deterministic order.
func FindCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ProcessDirectory stages every CSV file in the directory. A file that fails
// with a batch-fatal error records the error and does not stop the others.
func (p *Processor) ProcessDirectory(ctx context.Context, bookID, dir string, mapping models.CsvMapping) ([]FileResult, error) {
	files, err := FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		fileResult := FileResult{File: file}

		result, err := p.pipeline.Run(ctx, bookID, file, mapping)
		if err != nil {
			p.logger.WithError(err).Error("Failed to stage file",
				logging.Field{Key: logging.FieldFile, Value: file})
			fileResult.Err = err
			results = append(results, fileResult)
			continue
		}

		fileResult.Result = result
		fileResult.DateRange = stagedRange(result.Transactions)
		p.logger.Info("Staged file",
			logging.Field{Key: logging.FieldFile, Value: file},
			logging.Field{Key: logging.FieldBatch, Value: result.BatchID},
			logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)})
		results = append(results, fileResult)
	}
	return results, nil
}

// OverallRange merges the date ranges of all successfully staged files.
func OverallRange(results []FileResult) DateRange {
	overall := DateRange{}
	for _, r := range results {
		if r.Err == nil {
			overall = overall.Merge(r.DateRange)
		}
	}
	return overall
}

func stagedRange(transactions []models.ProcessedTransaction) DateRange {
	dr := DateRange{}
	for i := range transactions {
		date := transactions[i].Date
		if date == "" {
			continue
		}
		if dr.Start == "" || date < dr.Start {
			dr.Start = date
		}
		if dr.End == "" || date > dr.End {
			dr.End = date
		}
	}
	return dr
}
