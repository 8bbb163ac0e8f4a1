// Package xref reads the classic plain-text cross-reference table of a
// PDF-like container.
//
// A container ends with
//
//	startxref
//	<offset>
//	%%EOF
//
// where <offset> locates an index table of fixed-width 20-byte records, one per
// object number. The format never records how many bytes an object occupies, so
// [Load] derives each in-use entry's span from the gap to the next recorded
// offset (see [DeriveLengths]).
//
// Only a single table section is supported. Cross-reference streams, incremental
// updates and encrypted containers are rejected or ignored.
package xref
