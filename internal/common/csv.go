// Package common provides shared CSV output functionality for the staging
// report consumed by reviewers before a batch is committed.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"

	"ledgerline/bankimport/internal/currencyutils"
	"ledgerline/bankimport/internal/fileutils"
	"ledgerline/bankimport/internal/models"
)

var log = logrus.New()

// Global CSV delimiter - can be configured via centralized config or environment variable
var Delimiter rune = ','

func init() {
	// Fallback to environment variable for backward compatibility
	if val := os.Getenv("CSV_DELIMITER"); val != "" {
		// Use first rune only
		SetDelimiter([]rune(val)[0])
	}
}

// SetDelimiter allows setting the delimiter for CSV output
func SetDelimiter(delim rune) {
	Delimiter = delim
	gocsv.TagSeparator = fmt.Sprintf("%c", delim)
}

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger == nil {
		return // Don't change the logger if nil is passed
	}
	log = logger
}

// ReportRow is the CSV shape of one staged transaction in the review report.
type ReportRow struct {
	Row           int    `csv:"Row"`
	Date          string `csv:"Date"`
	Amount        string `csv:"Amount"`
	Description   string `csv:"Description"`
	Status        string `csv:"Status"`
	Fingerprint   string `csv:"Fingerprint"`
	DuplicateOfID string `csv:"Duplicate Of"`
	FuzzyMatchIDs string `csv:"Fuzzy Matches"`
	Errors        string `csv:"Errors"`
}

// BuildReportRows converts processed transactions into report rows.
func BuildReportRows(transactions []models.ProcessedTransaction) []ReportRow {
	rows := make([]ReportRow, len(transactions))
	for i := range transactions {
		tx := &transactions[i]
		row := ReportRow{
			Row:           tx.RowIndex + 1,
			Date:          tx.Date,
			Description:   tx.Description,
			Status:        string(tx.Status),
			Fingerprint:   tx.Fingerprint,
			DuplicateOfID: tx.DuplicateOfID,
			Errors:        strings.Join(tx.ErrorMessages(), "; "),
		}
		if tx.Amount != nil {
			row.Amount = currencyutils.FormatCents(*tx.Amount)
		}
		if len(tx.FuzzyMatches) > 0 {
			ids := make([]string, len(tx.FuzzyMatches))
			for j, match := range tx.FuzzyMatches {
				ids[j] = match.ID
			}
			row.FuzzyMatchIDs = strings.Join(ids, "; ")
		}
		rows[i] = row
	}
	return rows
}

// WriteReportToCSV writes the staging report for a batch to a CSV file.
func WriteReportToCSV(transactions []models.ProcessedTransaction, csvFile string) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	log.WithFields(logrus.Fields{
		"file":  csvFile,
		"count": len(transactions),
	}).Info("Writing staging report to CSV file")

	file, err := fileutils.CreateFile(csvFile)
	if err != nil {
		log.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := BuildReportRows(transactions)

	// Configure CSV writer with custom delimiter
	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter

	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		log.WithError(err).Error("Failed to marshal report to CSV")
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	log.WithFields(logrus.Fields{
		"file":  csvFile,
		"count": len(rows),
	}).Info("Successfully wrote staging report")

	return nil
}
