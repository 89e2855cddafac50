package models

import (
	"fmt"

	"ledgerline/bankimport/internal/parsererror"
)

// validDateFormats is the closed set of date patterns a mapping may name.
var validDateFormats = map[string]bool{
	DateFormatUSSlash: true,
	DateFormatEUSlash: true,
	DateFormatISO:     true,
	DateFormatUSDash:  true,
}

// IsValidDateFormat reports whether format is one of the supported patterns.
func IsValidDateFormat(format string) bool {
	return validDateFormats[format]
}

// Validate checks that the mapping names every column its amount mode
// requires and uses a supported date format. A mapping that fails validation
// must be rejected before row parsing begins.
func (m CsvMapping) Validate() error {
	if m.DateColumn == "" {
		return &parsererror.MappingError{Reason: "date column is not configured"}
	}
	if m.DescriptionColumn == "" {
		return &parsererror.MappingError{Reason: "description column is not configured"}
	}
	if !IsValidDateFormat(m.DateFormat) {
		return &parsererror.MappingError{
			Reason: fmt.Sprintf("unsupported date format '%s'", m.DateFormat),
		}
	}

	switch m.AmountMode {
	case AmountModeSigned:
		if m.AmountColumn == "" {
			return &parsererror.MappingError{Reason: "amount column is required in signed mode"}
		}
	case AmountModeSeparate:
		if m.InflowColumn == "" || m.OutflowColumn == "" {
			return &parsererror.MappingError{Reason: "inflow and outflow columns are required in separate mode"}
		}
	default:
		return &parsererror.MappingError{
			Reason: fmt.Sprintf("unknown amount mode '%s'", m.AmountMode),
		}
	}

	return nil
}

// RequiredColumns returns the logical column names the mapping reads,
// in a stable order.
func (m CsvMapping) RequiredColumns() []string {
	cols := []string{m.DateColumn, m.DescriptionColumn}
	switch m.AmountMode {
	case AmountModeSigned:
		cols = append(cols, m.AmountColumn)
	case AmountModeSeparate:
		cols = append(cols, m.InflowColumn, m.OutflowColumn)
	}
	return cols
}
