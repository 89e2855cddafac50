// Package models provides the data structures used throughout the application.
package models

// AmountMode selects how the amount is represented in the source file:
// a single signed column, or separate inflow/outflow columns.
type AmountMode string

const (
	AmountModeSigned   AmountMode = "signed"
	AmountModeSeparate AmountMode = "separate"
)

// Supported date-format patterns for CsvMapping.DateFormat.
const (
	DateFormatUSSlash = "MM/dd/yyyy"
	DateFormatEUSlash = "dd/MM/yyyy"
	DateFormatISO     = "yyyy-MM-dd"
	DateFormatUSDash  = "MM-dd-yyyy"
)

// CsvMapping describes how to read one bank's CSV layout into the canonical
// transaction shape. Exactly the columns required by the active AmountMode
// must be configured; Validate enforces this before any row is parsed.
type CsvMapping struct {
	DateColumn        string     `yaml:"date_column" mapstructure:"date_column"`
	DescriptionColumn string     `yaml:"description_column" mapstructure:"description_column"`
	AmountMode        AmountMode `yaml:"amount_mode" mapstructure:"amount_mode"`
	AmountColumn      string     `yaml:"amount_column,omitempty" mapstructure:"amount_column"`
	InflowColumn      string     `yaml:"inflow_column,omitempty" mapstructure:"inflow_column"`
	OutflowColumn     string     `yaml:"outflow_column,omitempty" mapstructure:"outflow_column"`
	DateFormat        string     `yaml:"date_format" mapstructure:"date_format"`
	HasHeaderRow      bool       `yaml:"has_header_row" mapstructure:"has_header_row"`
}

// RowErrorCode identifies a class of row-level parse failure.
type RowErrorCode string

const (
	ErrCodeMissingColumnMapping RowErrorCode = "missing_column_mapping"
	ErrCodeDateParse            RowErrorCode = "date_parse_error"
	ErrCodeAmountParse          RowErrorCode = "amount_parse_error"
	ErrCodeEmptyDescription     RowErrorCode = "empty_description"
)

// RowError is a structured row-level failure. Row errors accumulate; they
// never abort the batch.
type RowError struct {
	Code    RowErrorCode
	Field   string
	Message string
}

func (e RowError) Error() string {
	if e.Field != "" {
		return string(e.Code) + " (" + e.Field + "): " + e.Message
	}
	return string(e.Code) + ": " + e.Message
}

// StagedTransaction is one parsed-but-not-yet-committed row from an import
// file. When IsValid reports true, Date, Amount and Description are all set.
type StagedTransaction struct {
	Date        string // ISO yyyy-MM-dd, empty if the date failed to parse
	Amount      *int64 // integer cents, nil if the amount failed to parse
	Description string
	Errors      []RowError
	RawRow      map[string]string
	RowIndex    int
}

// IsValid reports whether the row parsed cleanly. A row is valid exactly when
// it accumulated no errors.
func (t *StagedTransaction) IsValid() bool {
	return len(t.Errors) == 0
}

// ErrorMessages renders the accumulated row errors as plain strings for
// display in the staging review.
func (t *StagedTransaction) ErrorMessages() []string {
	if len(t.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(t.Errors))
	for i, e := range t.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// Status is the duplicate-classification outcome of a processed transaction.
type Status string

const (
	StatusNew            Status = "new"
	StatusDuplicate      Status = "duplicate"
	StatusFuzzyDuplicate Status = "fuzzy_duplicate"
	StatusError          Status = "error"
)

// ExistingTransaction is a committed ledger transaction, read-only to the
// import pipeline. It is fetched in bulk before fuzzy matching.
type ExistingTransaction struct {
	ID          string
	Date        string // ISO yyyy-MM-dd
	AmountCents int64
	Description string
}

// ProcessedTransaction is a staged row after fingerprinting and duplicate
// classification. It is created once per input row and not mutated after the
// pipeline completes.
type ProcessedTransaction struct {
	StagedTransaction

	Fingerprint   string
	Status        Status
	DuplicateOfID string                // set iff Status == StatusDuplicate
	FuzzyMatches  []ExistingTransaction // set iff Status == StatusFuzzyDuplicate
}

// LockVerdict is the period-lock gate's batch-level result. Valid is true iff
// no transaction date fell inside a locked period. LockedDates preserves
// input order and duplicates so the user sees every violating row.
type LockVerdict struct {
	Valid       bool
	LockedDates []string
	Warnings    []string
}

// ImportResult is the full accounting of one import batch: every input row's
// outcome plus the advisory lock-gate verdict. A caller must refuse to commit
// a batch whose verdict is not valid.
type ImportResult struct {
	BatchID      string
	Transactions []ProcessedTransaction
	Lock         LockVerdict
}

// Summary holds per-status counts for an import batch.
type Summary struct {
	Total           int
	New             int
	Duplicates      int
	FuzzyDuplicates int
	Errors          int
}

// Summarize tallies the batch by status.
func (r *ImportResult) Summarize() Summary {
	s := Summary{Total: len(r.Transactions)}
	for i := range r.Transactions {
		switch r.Transactions[i].Status {
		case StatusNew:
			s.New++
		case StatusDuplicate:
			s.Duplicates++
		case StatusFuzzyDuplicate:
			s.FuzzyDuplicates++
		case StatusError:
			s.Errors++
		}
	}
	return s
}
