package pretty

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	summaryDividerWidth = 40
	wordObject          = "object"
	wordObjects         = "objects"
)

// ExportStats describes a finished export for display.
type ExportStats struct {
	Output       string
	Objects      int
	Edited       int
	BytesWritten int64
	TableOffset  int64
}

func plural(n int) string {
	if n == 1 {
		return wordObject
	}
	return wordObjects
}

// FormatExportOneLine formats export statistics as a single line.
// Example: "wrote 12 objects (2 edited, 40312 bytes) to in.pdf.modified.pdf".
func (s *Styles) FormatExportOneLine(stats ExportStats) string {
	detail := fmt.Sprintf("%d bytes", stats.BytesWritten)
	if stats.Edited > 0 {
		detail = s.Success.Render(fmt.Sprintf("%d edited", stats.Edited)) + ", " + detail
	}
	return fmt.Sprintf("wrote %d %s (%s) to %s\n",
		stats.Objects, plural(stats.Objects), detail, s.FilePath.Render(stats.Output))
}

// FormatExportSummary formats export statistics as a summary block.
func (s *Styles) FormatExportSummary(stats ExportStats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Export"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Output:        " + s.FilePath.Render(stats.Output) + "\n")
	builder.WriteString("  Objects:       " + s.SummaryValue.Render(strconv.Itoa(stats.Objects)) + "\n")
	if stats.Edited > 0 {
		builder.WriteString("  Edited:        " + s.Success.Render(strconv.Itoa(stats.Edited)) + "\n")
	}
	builder.WriteString("  Bytes written: " + s.SummaryValue.Render(strconv.FormatInt(stats.BytesWritten, 10)) + "\n")
	builder.WriteString("  Index table:   " + s.Offset.Render(strconv.FormatInt(stats.TableOffset, 10)) + "\n")

	return builder.String()
}
