// Package report renders the outcome of an import batch in machine-readable
// formats for downstream tooling.
package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/sirupsen/logrus"

	"ledgerline/bankimport/internal/currencyutils"
	"ledgerline/bankimport/internal/models"
)

// BatchReport is the serializable accounting of one staged import batch.
type BatchReport struct {
	XMLName         xml.Name     `json:"-" xml:"batch_report"`
	BatchID         string       `json:"batch_id" xml:"batch_id"`
	Total           int          `json:"total" xml:"total"`
	New             int          `json:"new" xml:"new"`
	Duplicates      int          `json:"duplicates" xml:"duplicates"`
	FuzzyDuplicates int          `json:"fuzzy_duplicates" xml:"fuzzy_duplicates"`
	Errors          int          `json:"errors" xml:"errors"`
	LockValid       bool         `json:"lock_valid" xml:"lock_valid"`
	LockedDates     []string     `json:"locked_dates,omitempty" xml:"locked_dates>date,omitempty"`
	Warnings        []string     `json:"warnings,omitempty" xml:"warnings>warning,omitempty"`
	Rows            []ReportItem `json:"rows" xml:"rows>row"`
}

// ReportItem is one staged row in the batch report.
type ReportItem struct {
	Row         int      `json:"row" xml:"row"`
	Date        string   `json:"date,omitempty" xml:"date,omitempty"`
	Amount      string   `json:"amount,omitempty" xml:"amount,omitempty"`
	Description string   `json:"description,omitempty" xml:"description,omitempty"`
	Status      string   `json:"status" xml:"status"`
	DuplicateOf string   `json:"duplicate_of,omitempty" xml:"duplicate_of,omitempty"`
	Errors      []string `json:"errors,omitempty" xml:"errors>error,omitempty"`
}

// Generator renders batch reports in json or xml.
type Generator struct {
	logger *logrus.Logger
}

// NewGenerator creates a new report generator.
func NewGenerator(logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Generator{logger: logger}
}

// Build converts an import result into its report shape.
func Build(result *models.ImportResult) *BatchReport {
	summary := result.Summarize()
	report := &BatchReport{
		BatchID:         result.BatchID,
		Total:           summary.Total,
		New:             summary.New,
		Duplicates:      summary.Duplicates,
		FuzzyDuplicates: summary.FuzzyDuplicates,
		Errors:          summary.Errors,
		LockValid:       result.Lock.Valid,
		LockedDates:     result.Lock.LockedDates,
		Warnings:        result.Lock.Warnings,
	}

	report.Rows = make([]ReportItem, len(result.Transactions))
	for i := range result.Transactions {
		tx := &result.Transactions[i]
		item := ReportItem{
			Row:         tx.RowIndex + 1,
			Date:        tx.Date,
			Description: tx.Description,
			Status:      string(tx.Status),
			DuplicateOf: tx.DuplicateOfID,
			Errors:      tx.ErrorMessages(),
		}
		if tx.Amount != nil {
			item.Amount = currencyutils.FormatCents(*tx.Amount)
		}
		report.Rows[i] = item
	}
	return report
}

// Generate renders the import result in the specified format (json or xml).
func (g *Generator) Generate(result *models.ImportResult, format string) ([]byte, error) {
	report := Build(result)
	switch format {
	case "json":
		return g.generateJSON(report)
	case "xml":
		return g.generateXML(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *Generator) generateJSON(report *BatchReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.Errorf("Failed to marshal JSON report: %v", err)
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (g *Generator) generateXML(report *BatchReport) ([]byte, error) {
	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.Errorf("Failed to marshal XML report: %v", err)
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	return []byte(xml.Header + string(data)), nil
}
