package xref

import "errors"

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrFormat indicates a malformed end marker, pointer, table header or record.
	ErrFormat = errors.New("malformed container")

	// ErrRange indicates an object number outside the table.
	ErrRange = errors.New("object number out of range")

	// ErrIO indicates a short read or write, or a failed seek.
	ErrIO = errors.New("i/o error")

	// ErrSizeLimit indicates a declared object length above MaxObjectSize.
	ErrSizeLimit = errors.New("object exceeds size limit")
)

// MaxObjectSize is the largest object span that will be read into memory.
// Corrupt tables would otherwise drive unbounded allocations.
const MaxObjectSize = 1 << 30
