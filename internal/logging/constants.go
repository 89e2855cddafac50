package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across the pipeline stages,
// making logs easier to filter when reviewing an import batch.
const (
	FieldFile        = "file_path"
	FieldBook        = "book_id"
	FieldBatch       = "batch_id"
	FieldProfile     = "profile"
	FieldRow         = "row_index"
	FieldStatus      = "status"
	FieldFingerprint = "fingerprint"
	FieldDate        = "date"
	FieldCount       = "count"
	FieldDelimiter   = "delimiter"
	FieldOutputFile  = "output_file"
)
