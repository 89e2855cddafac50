// Package parsererror defines the batch-fatal error taxonomy for the import
// pipeline. These errors are raised before any row is processed and abort the
// whole batch; per-row failures are accumulated on the staged row instead.
package parsererror

import "fmt"

// FileTooLargeError reports an input file over the byte-size ceiling.
type FileTooLargeError struct {
	FilePath string
	Size     int64
	Limit    int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s is %d bytes (limit %d)",
		e.FilePath, e.Size, e.Limit)
}

// UnsupportedFileTypeError reports an input file without the required extension.
type UnsupportedFileTypeError struct {
	FilePath  string
	Extension string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type for %s: got '%s', expected '.csv'",
		e.FilePath, e.Extension)
}

// RowCountExceededError reports a full parse over the data-row ceiling.
type RowCountExceededError struct {
	FilePath string
	Limit    int
}

func (e *RowCountExceededError) Error() string {
	return fmt.Sprintf("too many rows in %s: exceeds limit of %d data rows",
		e.FilePath, e.Limit)
}

// MappingError reports an invalid column-mapping configuration, detected
// before any row parsing is attempted.
type MappingError struct {
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("invalid column mapping: %s", e.Reason)
}

// ReadError wraps a failure while reading tabular data from the input.
type ReadError struct {
	FilePath string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("error reading %s: %v", e.FilePath, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
