package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/pdfobjedit/internal/ui/pretty"
)

// TextReporter formats listings as styled terminal tables.
type TextReporter struct {
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)
	return &TextReporter{
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, colorEnabled),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, listing *Listing) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if listing == nil {
		return nil
	}

	fmt.Fprintln(r.bw, r.styles.FormatFileHeader(listing.Path, len(listing.Rows)))
	fmt.Fprint(r.bw, r.formatter.FormatIndexTable(listing.Rows))
	fmt.Fprintln(r.bw, r.formatter.FormatTableSummary(listing.Rows, listing.TableOffset))
	return nil
}
