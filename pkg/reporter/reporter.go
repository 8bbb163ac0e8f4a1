// Package reporter renders index table listings as styled text or JSON.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
)

// Listing is an index table prepared for reporting.
type Listing struct {
	// Path is the container the table was loaded from.
	Path string

	// TableOffset is the position of the table in the container.
	TableOffset int64

	// Rows holds one row per object number.
	Rows []pretty.IndexRow
}

// Reporter formats and writes listings.
type Reporter interface {
	Report(ctx context.Context, listing *Listing) error
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	// Default writer to stdout if not specified
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
