package cli

import (
	"errors"

	"github.com/yaklabco/pdfobjedit/internal/repl"
	"github.com/yaklabco/pdfobjedit/pkg/fsutil"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// Exit codes for pdfobjedit, following sysexits(3).
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a failure with no more specific code.
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitDataError indicates a malformed container.
	ExitDataError = 65

	// ExitNoInput indicates a missing input file.
	ExitNoInput = 66

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 78
)

// ExitCodeFromError maps a command error to an exit code.
func ExitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInvalidFlag), errors.Is(err, repl.ErrBadRange), errors.Is(err, xref.ErrRange):
		return ExitInvalidUsage
	case errors.Is(err, xref.ErrFormat), errors.Is(err, xref.ErrSizeLimit):
		return ExitDataError
	case errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrIsDirectory):
		return ExitNoInput
	case errors.Is(err, xref.ErrIO):
		return ExitIOError
	default:
		return ExitFailure
	}
}
