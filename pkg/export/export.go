// Package export writes a container from its original bytes and the overlays
// shadowing them, rebuilding the index table with the new offsets.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/yaklabco/pdfobjedit/pkg/fsutil"
	"github.com/yaklabco/pdfobjedit/pkg/overlay"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// MaxTrailerSize bounds the trailer span copied from the original container.
const MaxTrailerSize = 16384

// Result describes a finished export.
type Result struct {
	// Offsets holds the new offset of every object number.
	Offsets []int64

	// TableOffset is the output position of the rebuilt index table.
	TableOffset int64

	// BytesWritten is the total size of the output.
	BytesWritten int64
}

// countingWriter tracks the output position.
type countingWriter struct {
	w   io.Writer
	pos int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.pos += int64(n)
	if err != nil {
		return n, fmt.Errorf("%w: write at offset %d: %w", xref.ErrIO, c.pos, err)
	}
	return n, nil
}

// Export writes every object 0..N-1 of table to w, loading objects without an
// overlay from src on demand. Overlays that are still clean after being
// written are dropped so memory stays bounded; dirty overlays are kept.
//
// On error the output written so far is unusable, but the store still holds
// every edit, so the export can be retried.
func Export(ctx context.Context, w io.Writer, store *overlay.Store, table *xref.Table, src io.ReaderAt) (*Result, error) {
	if err := checkTrailer(table); err != nil {
		return nil, err
	}

	out := &countingWriter{w: w}
	offsets := make([]int64, table.Len())

	for n, entry := range table.Entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}

		offsets[n] = out.pos

		if _, err := store.LoadIfAbsent(n, entry, src); err != nil {
			return nil, fmt.Errorf("load object %d: %w", n, err)
		}

		data, dirty, _ := store.Raw(n)
		if _, err := out.Write(data); err != nil {
			return nil, fmt.Errorf("write object %d: %w", n, err)
		}

		if !dirty {
			store.Discard(n)
		}
	}

	tableOffset := out.pos
	if err := writeTable(out, table, offsets); err != nil {
		return nil, err
	}

	if err := copyTrailer(out, table, src); err != nil {
		return nil, err
	}

	if _, err := out.Write(xref.FormatPointer(tableOffset)); err != nil {
		return nil, fmt.Errorf("write pointer: %w", err)
	}

	return &Result{
		Offsets:      offsets,
		TableOffset:  tableOffset,
		BytesWritten: out.pos,
	}, nil
}

// ToFile exports into path through a temp file that is renamed into place
// only after the whole container was written.
func ToFile(ctx context.Context, path string, store *overlay.Store, table *xref.Table, src io.ReaderAt) (*Result, error) {
	var result *Result
	err := fsutil.WriteAtomicFunc(ctx, path, fsutil.DefaultFileMode, func(w io.Writer) error {
		var err error
		result, err = Export(ctx, w, store, table, src)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func writeTable(out io.Writer, table *xref.Table, offsets []int64) error {
	header := "xref\n0 " + strconv.Itoa(table.Len()) + "\n"
	if _, err := io.WriteString(out, header); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	records := make([]byte, 0, table.Len()*xref.RecordSize)
	for n, entry := range table.Entries {
		rec, err := entry.Record(offsets[n])
		if err != nil {
			return fmt.Errorf("object %d: %w", n, err)
		}
		records = append(records, rec...)
	}

	if _, err := out.Write(records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// checkTrailer validates the trailer span before anything is written.
func checkTrailer(table *xref.Table) error {
	if table.TrailerOffset < 0 || table.PointerFieldOffset < 0 || table.TableOffset < 0 {
		return fmt.Errorf("%w: trailer positions unset", xref.ErrFormat)
	}
	if table.TrailerOffset > table.PointerFieldOffset {
		return fmt.Errorf("%w: trailer offset %d after pointer at %d",
			xref.ErrFormat, table.TrailerOffset, table.PointerFieldOffset)
	}
	if span := table.PointerFieldOffset - table.TrailerOffset; span > MaxTrailerSize {
		return fmt.Errorf("%w: trailer is %d bytes, limit %d", xref.ErrSizeLimit, span, MaxTrailerSize)
	}
	return nil
}

// copyTrailer copies [TrailerOffset, PointerFieldOffset) from src verbatim.
func copyTrailer(out io.Writer, table *xref.Table, src io.ReaderAt) error {
	span := table.PointerFieldOffset - table.TrailerOffset
	trailer := make([]byte, span)

	n, err := src.ReadAt(trailer, table.TrailerOffset)
	if int64(n) != span {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("%w: read trailer: %w", xref.ErrIO, err)
	}

	if _, err := out.Write(trailer); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}
