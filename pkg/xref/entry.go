package xref

import (
	"bytes"
	"fmt"
	"strconv"
)

// RecordSize is the width of one index record in bytes.
const RecordSize = 20

// Unset marks an offset or length that has not been determined.
const Unset int64 = -1

const (
	offsetDigits     = 10
	generationDigits = 5
	maxGeneration    = 99999
	maxRecordOffset  = 9999999999
)

// Use is the single-character use flag of an index record.
type Use byte

const (
	// UseFree marks an entry on the free list.
	UseFree Use = 'f'

	// UseInUse marks an entry that locates a live object.
	UseInUse Use = 'n'
)

// String returns the flag character.
func (u Use) String() string {
	return string(rune(u))
}

// Entry is one object's location record.
type Entry struct {
	// Offset is the byte offset of the object, or Unset.
	Offset int64

	// Length is the derived byte span of the object in the container.
	Length int64

	// Generation is the object's revision counter.
	Generation uint32

	// Use is the in-use/free flag.
	Use Use

	// NextFree is the raw offset field of a free entry, which links to the next
	// free object number.
	NextFree int64
}

// InUse reports whether the entry locates a live object.
func (e Entry) InUse() bool {
	return e.Use == UseInUse
}

// recordTerminators are the only valid trailing byte pairs of a record.
//
//nolint:gochecknoglobals // Read-only lookup table.
var recordTerminators = [][]byte{[]byte(" \r"), []byte(" \n"), []byte("\r\n")}

// ParseRecord decodes one fixed-width 20-byte record:
// "nnnnnnnnnn ggggg u" followed by " \r", " \n" or "\r\n".
func ParseRecord(rec []byte) (Entry, error) {
	if len(rec) != RecordSize {
		return Entry{}, fmt.Errorf("%w: record is %d bytes, want %d", ErrFormat, len(rec), RecordSize)
	}

	if !hasTerminator(rec[18:20]) {
		return Entry{}, fmt.Errorf("%w: bad record terminator %q", ErrFormat, rec[18:20])
	}

	offset, err := parseDigits(rec[0:offsetDigits])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: offset field %q", ErrFormat, rec[0:offsetDigits])
	}
	if rec[10] != ' ' {
		return Entry{}, fmt.Errorf("%w: expected space after offset, got %q", ErrFormat, rec[10])
	}

	gen, err := parseDigits(rec[11 : 11+generationDigits])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: generation field %q", ErrFormat, rec[11:11+generationDigits])
	}
	if rec[16] != ' ' {
		return Entry{}, fmt.Errorf("%w: expected space after generation, got %q", ErrFormat, rec[16])
	}

	use := Use(rec[17])
	if use != UseFree && use != UseInUse {
		return Entry{}, fmt.Errorf("%w: invalid use flag %q", ErrFormat, rec[17])
	}

	entry := Entry{
		Offset:     offset,
		Length:     Unset,
		Generation: uint32(gen),
		Use:        use,
	}
	if use == UseFree {
		entry.NextFree = offset
	}

	return entry, nil
}

// AppendRecord appends the 20-byte record for offset, generation and use to dst.
// Records are terminated with " \n".
func AppendRecord(dst []byte, offset int64, generation uint32, use Use) ([]byte, error) {
	if offset < 0 || offset > maxRecordOffset {
		return dst, fmt.Errorf("%w: offset %d does not fit a record", ErrFormat, offset)
	}
	if generation > maxGeneration {
		return dst, fmt.Errorf("%w: generation %d does not fit a record", ErrFormat, generation)
	}
	if use != UseFree && use != UseInUse {
		return dst, fmt.Errorf("%w: invalid use flag %q", ErrFormat, byte(use))
	}

	return fmt.Appendf(dst, "%010d %05d %c \n", offset, generation, byte(use)), nil
}

// Record returns the record for the entry relocated to offset. The use flag
// and generation are kept; free entries are relocated like any other.
func (e Entry) Record(offset int64) ([]byte, error) {
	return AppendRecord(make([]byte, 0, RecordSize), offset, e.Generation, e.Use)
}

func hasTerminator(b []byte) bool {
	for _, t := range recordTerminators {
		if bytes.Equal(b, t) {
			return true
		}
	}
	return false
}

// parseDigits parses a field that must consist of ASCII digits only.
func parseDigits(field []byte) (int64, error) {
	for _, c := range field {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(string(field), 10, 64)
}
