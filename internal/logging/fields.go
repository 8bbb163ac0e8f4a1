// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldOutput     = "output"
	FieldScratch    = "scratch"
	FieldWorkingDir = "working_dir"
	FieldCommand    = "command"

	// Configuration fields.
	FieldConfig   = "config"
	FieldEditor   = "editor"
	FieldPager    = "pager"
	FieldLogLevel = "log_level"

	// Container fields.
	FieldObject     = "object"
	FieldObjects    = "objects"
	FieldOffset     = "offset"
	FieldLength     = "length"
	FieldGeneration = "generation"
	FieldTable      = "table_offset"
	FieldDigest     = "digest"

	// Statistics fields.
	FieldCount        = "count"
	FieldOverlays     = "overlays"
	FieldBytesWritten = "bytes_written"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
