// Package profiles provides named column-mapping presets for common banks.
// The registry is an explicit value constructed at startup and passed by
// reference to whatever needs lookups; there is no package-level mutable
// table, so tests cannot leak profiles into each other.
package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"ledgerline/bankimport/internal/models"
)

// Registry holds immutable bank profiles, looked up by case-sensitive name.
type Registry struct {
	profiles map[string]models.CsvMapping
}

// NewRegistry creates a registry pre-loaded with the built-in bank profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]models.CsvMapping)}
	for name, mapping := range builtinProfiles() {
		r.profiles[name] = mapping
	}
	return r
}

// Lookup returns the mapping registered under name. The second return value
// reports whether the profile exists.
func (r *Registry) Lookup(name string) (models.CsvMapping, bool) {
	mapping, ok := r.profiles[name]
	return mapping, ok
}

// Names returns all registered profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a profile. The mapping must validate.
func (r *Registry) Register(name string, mapping models.CsvMapping) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := mapping.Validate(); err != nil {
		return fmt.Errorf("profile '%s': %w", name, err)
	}
	r.profiles[name] = mapping
	return nil
}

// LoadFromYAML merges user-defined profiles from a YAML file into the
// registry. The file maps profile names to mappings. A missing file is not
// an error; invalid mappings are.
func (r *Registry) LoadFromYAML(path string) error {
	resolved, err := resolveProfileFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error resolving profile file: %w", err)
	}

	data, err := os.ReadFile(resolved) // #nosec G304 -- CLI tool reads user-provided config paths
	if err != nil {
		return fmt.Errorf("error reading profile file: %w", err)
	}

	var loaded map[string]models.CsvMapping
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("error parsing profile file %s: %w", resolved, err)
	}

	for name, mapping := range loaded {
		if err := r.Register(name, mapping); err != nil {
			return err
		}
	}
	return nil
}

// resolveProfileFile looks for a profile file in standard locations:
// as given, under ./config/, and under $HOME/.bankimport/.
func resolveProfileFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".bankimport", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// builtinProfiles is the static preset table for common institutions.
// Column names match each bank's stock CSV export headers.
func builtinProfiles() map[string]models.CsvMapping {
	return map[string]models.CsvMapping{
		"chase": {
			DateColumn:        "Transaction Date",
			DescriptionColumn: "Description",
			AmountMode:        models.AmountModeSigned,
			AmountColumn:      "Amount",
			DateFormat:        models.DateFormatUSSlash,
			HasHeaderRow:      true,
		},
		"bofa": {
			DateColumn:        "Date",
			DescriptionColumn: "Description",
			AmountMode:        models.AmountModeSigned,
			AmountColumn:      "Amount",
			DateFormat:        models.DateFormatUSSlash,
			HasHeaderRow:      true,
		},
		"wellsfargo": {
			DateColumn:        "Date",
			DescriptionColumn: "Description",
			AmountMode:        models.AmountModeSigned,
			AmountColumn:      "Amount",
			DateFormat:        models.DateFormatUSSlash,
			HasHeaderRow:      false,
		},
		"amex": {
			DateColumn:        "Date",
			DescriptionColumn: "Description",
			AmountMode:        models.AmountModeSigned,
			AmountColumn:      "Amount",
			DateFormat:        models.DateFormatUSSlash,
			HasHeaderRow:      true,
		},
		"capitalone": {
			DateColumn:        "Transaction Date",
			DescriptionColumn: "Description",
			AmountMode:        models.AmountModeSeparate,
			InflowColumn:      "Credit",
			OutflowColumn:     "Debit",
			DateFormat:        models.DateFormatISO,
			HasHeaderRow:      true,
		},
		"usbank": {
			DateColumn:        "Date",
			DescriptionColumn: "Name",
			AmountMode:        models.AmountModeSigned,
			AmountColumn:      "Amount",
			DateFormat:        models.DateFormatISO,
			HasHeaderRow:      true,
		},
	}
}
