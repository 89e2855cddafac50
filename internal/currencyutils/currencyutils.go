// Package currencyutils provides currency-safe parsing of raw amount strings
// into integer cents.
package currencyutils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ParseCents parses a raw amount string into integer cents.
//
// Rules, applied in order: trim; treat a fully parenthesized value "(X)" as a
// negative-amount marker and strip the parentheses; strip currency symbols
// and thousands separators ($ and ,); parse the remainder as a decimal;
// shift two places and round half away from zero (decimal.Round semantics);
// re-apply the sign if the parenthesis marker was present.
//
// Parentheses take precedence only when the string both starts with "(" and
// ends with ")"; a value carrying both a leading "-" and parentheses is not
// double-negated. A value with no decimal point is whole currency units.
func ParseCents(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	// Accounting notation: (50.00) means -50.00
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	amount, err := decimal.NewFromString(s)
	if err != nil {
		log.WithField("amount", raw).Debug("Failed to parse amount")
		return 0, fmt.Errorf("failed to parse amount '%s': %w", raw, err)
	}

	// The parenthesis marker wins over any inner sign, so "(-50)" is not
	// double-negated.
	if negative {
		amount = amount.Abs().Neg()
	}

	// Shift to cents and round half away from zero.
	return amount.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders integer cents as a plain decimal string with two
// decimal places, e.g. 123456 -> "1234.56".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
