// Package mapper applies a column-mapping configuration to raw CSV rows,
// producing staged transactions. Field-level failures accumulate on the row;
// they never abort the batch.
package mapper

import (
	"fmt"
	"strings"

	"ledgerline/bankimport/internal/currencyutils"
	"ledgerline/bankimport/internal/dateutils"
	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/textutils"
)

// MapRow converts one raw row into a StagedTransaction under the given
// mapping. The mapping must already have passed Validate; MapRow still
// verifies that every required column exists as a key in the row, so
// downstream code never probes an unvalidated map.
//
// All failures are accumulated, not short-circuited: a row with a bad date
// and a bad amount reports both.
func MapRow(rawRow map[string]string, mapping models.CsvMapping, rowIndex int) models.StagedTransaction {
	staged := models.StagedTransaction{
		RawRow:   rawRow,
		RowIndex: rowIndex,
	}

	// Column presence is checked once, up front, for every column the
	// active amount mode requires.
	missing := map[string]bool{}
	for _, col := range mapping.RequiredColumns() {
		if _, ok := rawRow[col]; !ok {
			missing[col] = true
			staged.Errors = append(staged.Errors, models.RowError{
				Code:    models.ErrCodeMissingColumnMapping,
				Field:   col,
				Message: fmt.Sprintf("column '%s' not found in row", col),
			})
		}
	}

	if !missing[mapping.DateColumn] {
		mapDate(&staged, rawRow[mapping.DateColumn], mapping.DateFormat)
	}
	mapAmount(&staged, rawRow, mapping, missing)
	if !missing[mapping.DescriptionColumn] {
		mapDescription(&staged, rawRow[mapping.DescriptionColumn])
	}

	return staged
}

func mapDate(staged *models.StagedTransaction, raw, format string) {
	if strings.TrimSpace(raw) == "" {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeDateParse,
			Field:   "date",
			Message: "date value is empty",
		})
		return
	}

	iso, err := dateutils.NormalizeDate(raw, format)
	if err != nil {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeDateParse,
			Field:   "date",
			Message: err.Error(),
		})
		return
	}
	staged.Date = iso
}

func mapAmount(staged *models.StagedTransaction, rawRow map[string]string, mapping models.CsvMapping, missing map[string]bool) {
	switch mapping.AmountMode {
	case models.AmountModeSigned:
		if missing[mapping.AmountColumn] {
			return
		}
		mapSignedAmount(staged, rawRow[mapping.AmountColumn])
	case models.AmountModeSeparate:
		if missing[mapping.InflowColumn] || missing[mapping.OutflowColumn] {
			return
		}
		mapSeparateAmount(staged, rawRow[mapping.InflowColumn], rawRow[mapping.OutflowColumn])
	}
}

func mapSignedAmount(staged *models.StagedTransaction, raw string) {
	if strings.TrimSpace(raw) == "" {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeAmountParse,
			Field:   "amount",
			Message: "amount value is empty",
		})
		return
	}

	cents, err := currencyutils.ParseCents(raw)
	if err != nil {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeAmountParse,
			Field:   "amount",
			Message: err.Error(),
		})
		return
	}
	staged.Amount = &cents
}

// mapSeparateAmount merges inflow/outflow columns into one signed amount:
// a present, non-zero inflow wins; otherwise the outflow is negated.
func mapSeparateAmount(staged *models.StagedTransaction, inflowRaw, outflowRaw string) {
	inflow, inflowOK := parseOptionalCents(staged, "inflow", inflowRaw)
	if inflowOK && inflow != nil && *inflow != 0 {
		staged.Amount = inflow
		return
	}

	outflow, outflowOK := parseOptionalCents(staged, "outflow", outflowRaw)
	if outflowOK && outflow != nil && *outflow != 0 {
		cents := *outflow
		if cents > 0 {
			cents = -cents
		}
		staged.Amount = &cents
		return
	}

	if inflowOK && outflowOK {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeAmountParse,
			Field:   "amount",
			Message: "missing amount in both inflow and outflow columns",
		})
	}
}

// parseOptionalCents parses a possibly-blank amount cell. A blank cell is
// not an error (nil, true); an unparseable one records an error and returns
// ok=false.
func parseOptionalCents(staged *models.StagedTransaction, field, raw string) (*int64, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}

	cents, err := currencyutils.ParseCents(raw)
	if err != nil {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeAmountParse,
			Field:   field,
			Message: err.Error(),
		})
		return nil, false
	}
	return &cents, true
}

func mapDescription(staged *models.StagedTransaction, raw string) {
	sanitized := textutils.SanitizeDescription(raw)
	if sanitized == "" {
		staged.Errors = append(staged.Errors, models.RowError{
			Code:    models.ErrCodeEmptyDescription,
			Field:   "description",
			Message: "description is empty after sanitization",
		})
		return
	}
	staged.Description = sanitized
}
