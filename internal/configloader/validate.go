package configloader

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/yaklabco/pdfobjedit/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "backups.mode").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownLogLevels lists valid log level values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// knownBackupModes lists valid backup mode values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	"sidecar": true,
	"none":    true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	validateCommand(result, "editor", cfg.Editor)
	validateCommand(result, "pager", cfg.Pager)
	validateSuffix(result, "output_suffix", cfg.OutputSuffix)
	validateSuffix(result, "scratch_suffix", cfg.ScratchSuffix)

	if cfg.OutputSuffix != "" && cfg.OutputSuffix == cfg.ScratchSuffix {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "scratch_suffix",
			Value:   cfg.ScratchSuffix,
			Message: "scratch_suffix must differ from output_suffix",
		})
	}

	if cfg.Color != "" && !cfg.Color.IsValid() {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "color",
			Value:   cfg.Color,
			Message: fmt.Sprintf("invalid color mode %q; must be one of: auto, always, never", cfg.Color),
		})
	}

	if cfg.LogLevel != "" && !knownLogLevels[cfg.LogLevel] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel),
		})
	}

	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "backups.mode",
			Value:   cfg.Backups.Mode,
			Message: fmt.Sprintf("invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode),
		})
	}

	if cfg.Jobs < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "jobs",
			Value:   cfg.Jobs,
			Message: fmt.Sprintf("jobs must not be negative, got %d", cfg.Jobs),
		})
	}

	if cfg.Backups.Enabled && cfg.Backups.Mode == "none" {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "backups",
			Message: "backups.enabled is set but backups.mode is none; no backups will be kept",
		})
	}

	return result
}

// validateCommand checks that a command line splits into at least one word.
func validateCommand(result *ValidationResult, field, command string) {
	words, err := shlex.Split(command)
	switch {
	case err != nil:
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   command,
			Message: fmt.Sprintf("cannot split command: %v", err),
		})
	case len(words) == 0:
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   command,
			Message: field + " must name a program",
		})
	}
}

// validateSuffix checks that a path suffix is non-empty and stays in the
// source file's directory.
func validateSuffix(result *ValidationResult, field, suffix string) {
	switch {
	case suffix == "":
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Message: field + " must not be empty",
		})
	case strings.ContainsAny(suffix, `/\`):
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   suffix,
			Message: field + " must not contain path separators",
		})
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidLogLevel returns true if the log level string is valid.
func IsValidLogLevel(s string) bool {
	return knownLogLevels[s]
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return knownBackupModes[mode]
}
