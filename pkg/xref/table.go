package xref

import (
	"fmt"
	"sort"
)

// Table is a loaded index table together with the positions needed to rebuild
// the container around it.
type Table struct {
	// Entries holds one entry per object number.
	Entries []Entry

	// TrailerOffset is the position right after the last record, where the
	// trailer text begins.
	TrailerOffset int64

	// PointerFieldOffset is the position of the first digit of the trailing
	// pointer value.
	PointerFieldOffset int64

	// TableOffset is the position of the "xref" line.
	TableOffset int64
}

// Len returns the number of object numbers in the table.
func (t *Table) Len() int {
	return len(t.Entries)
}

// Entry returns the entry for object number n.
func (t *Table) Entry(n int) (Entry, error) {
	if n < 0 || n >= len(t.Entries) {
		return Entry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrRange, n, len(t.Entries))
	}
	return t.Entries[n], nil
}

// InUse returns the number of in-use entries.
func (t *Table) InUse() int {
	count := 0
	for _, e := range t.Entries {
		if e.InUse() {
			count++
		}
	}
	return count
}

type offsetRef struct {
	offset int64
	num    int
}

// DeriveLengths computes every entry's Length from the gaps between offsets.
//
// The tiling set holds all in-use entries plus object 0 when it is free, whose
// offset is forced to 0 so the file header is attributed to it. The set is
// sorted by offset and each member receives the distance to the next distinct
// offset; the last member extends to tableOffset. Every other entry gets 0.
func DeriveLengths(entries []Entry, tableOffset int64) error {
	if len(entries) > 0 && entries[0].Use == UseFree {
		entries[0].Offset = 0
	}

	refs := make([]offsetRef, 0, len(entries))
	for i := range entries {
		entries[i].Length = 0
		if entries[i].InUse() || (i == 0 && entries[i].Use == UseFree) {
			if entries[i].Offset < 0 || entries[i].Offset > tableOffset {
				return fmt.Errorf("%w: object %d offset %d outside [0, %d]",
					ErrFormat, i, entries[i].Offset, tableOffset)
			}
			refs = append(refs, offsetRef{offset: entries[i].Offset, num: i})
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].offset != refs[j].offset {
			return refs[i].offset < refs[j].offset
		}
		return refs[i].num < refs[j].num
	})

	next := tableOffset
	for i := len(refs) - 1; i >= 0; i-- {
		cur := refs[i].offset
		if i+1 < len(refs) && refs[i+1].offset != cur {
			next = refs[i+1].offset
		}
		entries[refs[i].num].Length = next - cur
	}

	return nil
}
