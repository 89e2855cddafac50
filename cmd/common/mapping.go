// Package common provides helpers shared by the staging commands.
package common

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerline/bankimport/internal/models"
	"ledgerline/bankimport/internal/profiles"
)

// MappingFlags holds the ad-hoc column mapping flags, used when no bank
// profile fits the input file.
type MappingFlags struct {
	DateColumn        string
	DescriptionColumn string
	AmountMode        string
	AmountColumn      string
	InflowColumn      string
	OutflowColumn     string
	DateFormat        string
	NoHeader          bool
}

// Register adds the mapping flags to a command.
func (f *MappingFlags) Register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.DateColumn, "date-column", "", "Column holding the transaction date")
	flags.StringVar(&f.DescriptionColumn, "description-column", "", "Column holding the description")
	flags.StringVar(&f.AmountMode, "amount-mode", string(models.AmountModeSigned), "Amount mode: signed or separate")
	flags.StringVar(&f.AmountColumn, "amount-column", "", "Signed amount column (amount-mode signed)")
	flags.StringVar(&f.InflowColumn, "inflow-column", "", "Inflow column (amount-mode separate)")
	flags.StringVar(&f.OutflowColumn, "outflow-column", "", "Outflow column (amount-mode separate)")
	flags.StringVar(&f.DateFormat, "date-format", models.DateFormatUSSlash, "Date format pattern, e.g. MM/dd/yyyy")
	flags.BoolVar(&f.NoHeader, "no-header", false, "Input file has no header row")
}

// Set reports whether any ad-hoc mapping flag was provided.
func (f *MappingFlags) Set() bool {
	return f.DateColumn != "" || f.DescriptionColumn != "" ||
		f.AmountColumn != "" || f.InflowColumn != "" || f.OutflowColumn != ""
}

// Build converts the flags into a validated column mapping.
func (f *MappingFlags) Build() (models.CsvMapping, error) {
	mapping := models.CsvMapping{
		DateColumn:        f.DateColumn,
		DescriptionColumn: f.DescriptionColumn,
		AmountMode:        models.AmountMode(f.AmountMode),
		AmountColumn:      f.AmountColumn,
		InflowColumn:      f.InflowColumn,
		OutflowColumn:     f.OutflowColumn,
		DateFormat:        f.DateFormat,
		HasHeaderRow:      !f.NoHeader,
	}
	if err := mapping.Validate(); err != nil {
		return models.CsvMapping{}, err
	}
	return mapping, nil
}

// ResolveMapping picks the column mapping for a command run: ad-hoc flags
// take precedence over the named bank profile.
func ResolveMapping(flags *MappingFlags, registry *profiles.Registry, profileName string) (models.CsvMapping, error) {
	if flags.Set() {
		return flags.Build()
	}
	if profileName == "" {
		return models.CsvMapping{}, fmt.Errorf("a bank profile (--profile) or mapping flags are required")
	}
	mapping, ok := registry.Lookup(profileName)
	if !ok {
		return models.CsvMapping{}, fmt.Errorf("unknown bank profile: %q", profileName)
	}
	return mapping, nil
}
