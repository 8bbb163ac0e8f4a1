package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 6 // OBJ, OFFSET, LENGTH, GEN, USE, STATE
	minObjectWidth   = 3
	minOffsetWidth   = 10
	minLengthWidth   = 6
	generationWidth  = 5
	useWidth         = 3
	minStateWidth    = 6
	heavySeparator   = "="
)

// RowState is the overlay state shown in the STATE column.
type RowState string

const (
	StateOriginal RowState = ""
	StateLoaded   RowState = "loaded"
	StateEdited   RowState = "edited"
)

// IndexRow is one line of the index table listing.
type IndexRow struct {
	Object int
	Entry  xref.Entry
	State  RowState
}

// TableFormatter formats index tables as styled text.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool) *TableFormatter {
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
	}
}

type columnWidths struct {
	object int
	offset int
	length int
	state  int
}

// FormatIndexTable formats rows as an aligned table with a legend.
func (t *TableFormatter) FormatIndexTable(rows []IndexRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

func (t *TableFormatter) calculateColumnWidths(rows []IndexRow) columnWidths {
	widths := columnWidths{
		object: minObjectWidth,
		offset: minOffsetWidth,
		length: minLengthWidth,
		state:  minStateWidth,
	}

	for _, row := range rows {
		widths.object = max(widths.object, len(strconv.Itoa(row.Object)))
		widths.offset = max(widths.offset, len(strconv.FormatInt(row.Entry.Offset, 10)))
		widths.length = max(widths.length, len(strconv.FormatInt(row.Entry.Length, 10)))
		widths.state = max(widths.state, len(row.State))
	}

	return widths
}

func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.object + widths.offset + widths.length + generationWidth + useWidth + widths.state +
		tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %*s  %*s  %*s  %*s  %-*s  %-*s",
		widths.object, "OBJ",
		widths.offset, "OFFSET",
		widths.length, "LENGTH",
		generationWidth, "GEN",
		useWidth, "USE",
		widths.state, "STATE",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, t.calculateTotalWidth(widths)))
}

func (t *TableFormatter) formatRow(row IndexRow, widths columnWidths) string {
	offset := strconv.FormatInt(row.Entry.Offset, 10)
	if !row.Entry.InUse() {
		// The offset field of a free entry is its free-list link.
		offset = "->" + strconv.FormatInt(row.Entry.NextFree, 10)
	}

	content := fmt.Sprintf(" %*d  %*s  %*d  %*d  %-*s  %-*s",
		widths.object, row.Object,
		widths.offset, offset,
		widths.length, row.Entry.Length,
		generationWidth, row.Entry.Generation,
		useWidth, row.Entry.Use.String(),
		widths.state, row.State,
	)

	return t.getRowStyle(row).Render(content)
}

func (t *TableFormatter) getRowStyle(row IndexRow) lipgloss.Style {
	switch {
	case row.State == StateEdited:
		return t.styles.TableEditedRow
	case row.State == StateLoaded:
		return t.styles.TableLoadedRow
	case !row.Entry.InUse():
		return t.styles.TableFreeRow
	default:
		return lipgloss.NewStyle()
	}
}

func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: n = in use | f = free (offset is the next free object)")
	}

	freeSample := t.styles.TableFreeRow.Render(" free ")
	loadedSample := t.styles.TableLoadedRow.Render(" loaded ")
	editedSample := t.styles.TableEditedRow.Render(" edited ")

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s %s %s", freeSample, loadedSample, editedSample),
	)
}

// FormatTableSummary formats a summary line for an index table listing.
func (t *TableFormatter) FormatTableSummary(rows []IndexRow, tableOffset int64) string {
	var inUse, free, edited int
	for _, row := range rows {
		if row.Entry.InUse() {
			inUse++
		} else {
			free++
		}
		if row.State == StateEdited {
			edited++
		}
	}

	parts := []string{
		fmt.Sprintf("%d %s", len(rows), plural(len(rows))),
		fmt.Sprintf("%d in use", inUse),
		t.styles.Dim.Render(fmt.Sprintf("%d free", free)),
	}
	if edited > 0 {
		parts = append(parts, t.styles.TableEditedRow.Render(fmt.Sprintf("%d edited", edited)))
	}
	parts = append(parts, t.styles.Dim.Render("table at "+strconv.FormatInt(tableOffset, 10)))

	return " " + strings.Join(parts, " | ")
}
