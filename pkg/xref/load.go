package xref

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const (
	// TrailerWindow is how far back from end of file the end marker is searched.
	TrailerWindow = 4096

	// maxHeaderLine bounds the "xref" and subsection header lines.
	maxHeaderLine = 256

	eofMarker    = "%%EOF"
	tableKeyword = "xref"
)

// Load locates the index table of the container in src and parses it.
// size is the total length of the container in bytes.
func Load(src io.ReaderAt, size int64) (*Table, error) {
	tableOffset, pointerField, err := FindPointer(src, size)
	if err != nil {
		return nil, err
	}

	table, err := parseTable(src, size, tableOffset)
	if err != nil {
		return nil, err
	}
	table.PointerFieldOffset = pointerField

	if err := DeriveLengths(table.Entries, table.TableOffset); err != nil {
		return nil, err
	}

	return table, nil
}

// FindPointer scans the trailing window for the end marker and returns the
// table offset named on the line before it, along with the file position of
// that value's first digit.
func FindPointer(src io.ReaderAt, size int64) (tableOffset, pointerField int64, err error) {
	if size <= 0 {
		return 0, 0, fmt.Errorf("%w: empty container", ErrFormat)
	}

	windowStart := max(size-TrailerWindow, 0)
	buf := make([]byte, size-windowStart)
	if err := readFull(src, buf, windowStart); err != nil {
		return 0, 0, fmt.Errorf("read trailing window: %w", err)
	}

	end := trimTrailingSpace(buf, len(buf))
	lineStart, ok := lineStartBefore(buf, end, windowStart == 0)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s not found in last %d bytes", ErrFormat, eofMarker, len(buf))
	}
	if string(buf[lineStart:end]) != eofMarker {
		return 0, 0, fmt.Errorf("%w: %s not found in last %d bytes", ErrFormat, eofMarker, len(buf))
	}

	end = trimTrailingSpace(buf, lineStart)
	lineStart, ok = lineStartBefore(buf, end, windowStart == 0)
	if !ok || lineStart == end {
		return 0, 0, fmt.Errorf("%w: missing pointer line before %s", ErrFormat, eofMarker)
	}

	digits := buf[lineStart:end]
	value, err := parseDigits(digits)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: pointer %q is not numeric", ErrFormat, digits)
	}
	if value >= size {
		return 0, 0, fmt.Errorf("%w: pointer %d beyond end of file (%d bytes)", ErrFormat, value, size)
	}

	return value, windowStart + int64(lineStart), nil
}

func parseTable(src io.ReaderAt, size, tableOffset int64) (*Table, error) {
	head := make([]byte, min(2*maxHeaderLine, size-tableOffset))
	if err := readFull(src, head, tableOffset); err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}

	keyword, rest, ok := cutLine(head)
	if !ok || string(keyword) != tableKeyword {
		return nil, fmt.Errorf("%w: expected %q at offset %d", ErrFormat, tableKeyword, tableOffset)
	}

	subsection, _, ok := cutLine(rest)
	if !ok {
		return nil, fmt.Errorf("%w: unterminated subsection header", ErrFormat)
	}
	start, count, err := parseSubsection(subsection)
	if err != nil {
		return nil, err
	}

	recordsAt := tableOffset + int64(len(head)-len(rest)) + int64(lineLen(rest))
	need := count * RecordSize
	if count > (size-recordsAt)/RecordSize {
		return nil, fmt.Errorf("%w: table declares %d records but only %d bytes remain",
			ErrFormat, count, size-recordsAt)
	}

	// Every addressable object needs at least one byte before the table.
	if start+count > tableOffset+1 {
		return nil, fmt.Errorf("%w: subsection %d+%d addresses more objects than the %d bytes before the table",
			ErrFormat, start, count, tableOffset)
	}

	records := make([]byte, need)
	if err := readFull(src, records, recordsAt); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	entries := make([]Entry, start+count)
	for i := range start {
		entries[i] = Entry{Length: Unset, Use: UseFree}
	}
	for i := range count {
		rec := records[i*RecordSize : (i+1)*RecordSize]
		entry, err := ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", start+i, err)
		}
		entries[start+i] = entry
	}

	return &Table{
		Entries:       entries,
		TrailerOffset: recordsAt + need,
		TableOffset:   tableOffset,
	}, nil
}

// parseSubsection parses "<start> <count>", allowing spaces or tabs around the
// two numbers and nothing else.
func parseSubsection(line []byte) (start, count int64, err error) {
	fields := bytes.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: subsection header %q", ErrFormat, line)
	}

	start, err = parseDigits(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: subsection start %q", ErrFormat, fields[0])
	}
	count, err = parseDigits(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: subsection count %q", ErrFormat, fields[1])
	}
	if start > MaxObjectSize || count > MaxObjectSize {
		return 0, 0, fmt.Errorf("%w: subsection %d+%d too large", ErrFormat, start, count)
	}

	return start, count, nil
}

// cutLine splits b after the first LF. The returned line has trailing CR/LF
// removed.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return nil, nil, false
	}
	return bytes.TrimRight(b[:i], "\r\n"), b[i+1:], true
}

// lineLen returns the length of the first line of b including its LF.
func lineLen(b []byte) int {
	return bytes.IndexByte(b, '\n') + 1
}

// trimTrailingSpace returns the end of buf[:end] with trailing whitespace removed.
func trimTrailingSpace(buf []byte, end int) int {
	for end > 0 {
		switch buf[end-1] {
		case ' ', '\t', '\r', '\n':
			end--
		default:
			return end
		}
	}
	return end
}

// lineStartBefore returns the start of the line ending at end. A line that
// runs into the beginning of the buffer only counts when the buffer starts at
// the beginning of the file.
func lineStartBefore(buf []byte, end int, atFileStart bool) (int, bool) {
	i := bytes.LastIndexByte(buf[:end], '\n')
	if i < 0 {
		return 0, atFileStart
	}
	return i + 1, true
}

func readFull(src io.ReaderAt, buf []byte, off int64) error {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: read %d of %d bytes at offset %d: %w", ErrIO, n, len(buf), off, err)
}

// FormatPointer renders the trailing pointer value and end marker.
func FormatPointer(tableOffset int64) []byte {
	return []byte(strconv.FormatInt(tableOffset, 10) + "\n" + eofMarker + "\n")
}
