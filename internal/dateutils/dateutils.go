// Package dateutils provides date normalization for the import pipeline.
// Raw statement dates are converted to canonical ISO yyyy-MM-dd strings.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"ledgerline/bankimport/internal/models"
)

// DateLayoutISO is the canonical layout every date normalizes to.
const DateLayoutISO = "2006-01-02"

// formatLayouts maps the supported mapping patterns to Go time layouts.
// The non-padded layouts accept one- or two-digit day and month components,
// so "1/15/2024" parses under MM/dd/yyyy.
var formatLayouts = map[string]string{
	models.DateFormatUSSlash: "1/2/2006",
	models.DateFormatEUSlash: "2/1/2006",
	models.DateFormatISO:     "2006-1-2",
	models.DateFormatUSDash:  "1-2-2006",
}

var spacePattern = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses internal whitespace in a raw date.
func CleanDateString(dateStr string) string {
	return spacePattern.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// NormalizeDate parses a raw date string using the named format pattern and
// returns it as an ISO yyyy-MM-dd string. Invalid calendar dates (day 32,
// month 13) fail; they are never clamped or wrapped.
func NormalizeDate(raw string, format string) (string, error) {
	layout, ok := formatLayouts[format]
	if !ok {
		return "", fmt.Errorf("unsupported date format: %s", format)
	}

	cleaned := CleanDateString(raw)
	if cleaned == "" {
		return "", fmt.Errorf("empty date")
	}

	t, err := time.Parse(layout, cleaned)
	if err != nil {
		return "", fmt.Errorf("unable to parse date '%s' as %s: %w", raw, format, err)
	}

	return t.Format(DateLayoutISO), nil
}

// ParseISO parses a canonical ISO yyyy-MM-dd string.
func ParseISO(date string) (time.Time, error) {
	t, err := time.Parse(DateLayoutISO, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO date '%s': %w", date, err)
	}
	return t, nil
}

// AddDays shifts an ISO date string by a number of days (negative moves
// backwards).
func AddDays(date string, days int) (string, error) {
	t, err := ParseISO(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayoutISO), nil
}

// DaysApart returns the absolute difference in calendar days between two
// ISO date strings.
func DaysApart(a, b string) (int, error) {
	ta, err := ParseISO(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseISO(b)
	if err != nil {
		return 0, err
	}

	days := int(ta.Sub(tb).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days, nil
}
