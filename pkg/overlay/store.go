// Package overlay keeps in-memory, possibly edited copies of container objects.
//
// Objects are materialized from the original container on first touch and are
// never re-read while an overlay exists. The original container is never
// written; edits only reach disk through an export.
package overlay

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/opencontainers/go-digest"

	"github.com/yaklabco/pdfobjedit/pkg/streamloc"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// ErrNotLoaded indicates an operation on an object that has no overlay.
var ErrNotLoaded = errors.New("object not loaded")

// Blob is one object's overlay.
type Blob struct {
	// Data holds the object's raw bytes.
	Data []byte

	// Dirty is set once the bytes were replaced by an edit.
	Dirty bool
}

// Store maps object numbers to overlays.
type Store struct {
	blobs map[int]*Blob
}

// New returns an empty store.
func New() *Store {
	return &Store{blobs: make(map[int]*Blob)}
}

// Has reports whether object n has an overlay.
func (s *Store) Has(n int) bool {
	_, ok := s.blobs[n]
	return ok
}

// Discard drops the overlay of object n, if any.
func (s *Store) Discard(n int) {
	delete(s.blobs, n)
}

// Len returns the number of overlays.
func (s *Store) Len() int {
	return len(s.blobs)
}

// Dirty reports whether object n has an edited overlay.
func (s *Store) Dirty(n int) bool {
	b, ok := s.blobs[n]
	return ok && b.Dirty
}

// IsModified reports whether any overlay is dirty.
func (s *Store) IsModified() bool {
	for _, b := range s.blobs {
		if b.Dirty {
			return true
		}
	}
	return false
}

// Numbers returns the object numbers with overlays in ascending order.
func (s *Store) Numbers() []int {
	nums := make([]int, 0, len(s.blobs))
	for n := range s.blobs {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// ForceReload reads object n from src using entry, replacing any overlay.
// On failure no overlay is left for n.
func (s *Store) ForceReload(n int, entry xref.Entry, src io.ReaderAt) error {
	s.Discard(n)

	if entry.Offset < 0 {
		return fmt.Errorf("%w: object %d has no offset", xref.ErrFormat, n)
	}
	if entry.Length < 0 {
		return fmt.Errorf("%w: object %d has no derived length", xref.ErrFormat, n)
	}
	if entry.Length > xref.MaxObjectSize {
		return fmt.Errorf("%w: object %d is %d bytes", xref.ErrSizeLimit, n, entry.Length)
	}

	data := make([]byte, entry.Length)
	if len(data) > 0 {
		read, err := src.ReadAt(data, entry.Offset)
		if read != len(data) {
			if err == nil || errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("%w: object %d: read %d of %d bytes at offset %d: %w",
				xref.ErrIO, n, read, len(data), entry.Offset, err)
		}
	}

	s.blobs[n] = &Blob{Data: data}
	return nil
}

// LoadIfAbsent reads object n from src only when it has no overlay yet.
// loaded reports whether a read happened.
func (s *Store) LoadIfAbsent(n int, entry xref.Entry, src io.ReaderAt) (loaded bool, err error) {
	if s.Has(n) {
		return false, nil
	}
	if err := s.ForceReload(n, entry, src); err != nil {
		return false, err
	}
	return true, nil
}

// Bytes returns a copy of object n's raw bytes.
func (s *Store) Bytes(n int) ([]byte, error) {
	b, err := s.blob(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b.Data...), nil
}

// SetBytes replaces object n's raw bytes and marks it dirty.
func (s *Store) SetBytes(n int, data []byte) error {
	b, err := s.blob(n)
	if err != nil {
		return err
	}
	if len(data) > xref.MaxObjectSize {
		return fmt.Errorf("%w: object %d replacement is %d bytes", xref.ErrSizeLimit, n, len(data))
	}
	b.Data = append([]byte(nil), data...)
	b.Dirty = true
	return nil
}

// StreamPayload returns a copy of the embedded payload of object n.
func (s *Store) StreamPayload(n int) ([]byte, error) {
	b, err := s.blob(n)
	if err != nil {
		return nil, err
	}
	bounds, err := streamloc.Locate(b.Data)
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", n, err)
	}
	return append([]byte(nil), streamloc.Payload(b.Data, bounds)...), nil
}

// SetStreamPayload swaps the embedded payload of object n and rewrites its
// declared length to match, then marks it dirty.
func (s *Store) SetStreamPayload(n int, payload []byte) error {
	b, err := s.blob(n)
	if err != nil {
		return err
	}
	if len(payload) > xref.MaxObjectSize {
		return fmt.Errorf("%w: object %d payload is %d bytes", xref.ErrSizeLimit, n, len(payload))
	}
	bounds, err := streamloc.Locate(b.Data)
	if err != nil {
		return fmt.Errorf("object %d: %w", n, err)
	}
	b.Data = streamloc.ReplacePayload(b.Data, bounds, payload)
	b.Dirty = true
	return nil
}

// ReplaceWithEmptyStream installs a minimal stream object with an empty
// payload as object n, whether or not it was loaded.
func (s *Store) ReplaceWithEmptyStream(n int, generation uint32) {
	s.blobs[n] = &Blob{Data: EmptyStreamObject(n, generation), Dirty: true}
}

// Digest returns the content digest of object n's current bytes.
func (s *Store) Digest(n int) (digest.Digest, error) {
	b, err := s.blob(n)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(b.Data), nil
}

// Raw returns object n's overlay without copying. The caller must not retain
// or modify the bytes.
func (s *Store) Raw(n int) (data []byte, dirty bool, ok bool) {
	b, ok := s.blobs[n]
	if !ok {
		return nil, false, false
	}
	return b.Data, b.Dirty, true
}

func (s *Store) blob(n int) (*Blob, error) {
	b, ok := s.blobs[n]
	if !ok {
		return nil, fmt.Errorf("%w: object %d", ErrNotLoaded, n)
	}
	return b, nil
}

// EmptyStreamObject renders a well-formed stream object with an empty payload.
func EmptyStreamObject(n int, generation uint32) []byte {
	out := strconv.AppendInt(nil, int64(n), 10)
	out = append(out, ' ')
	out = strconv.AppendUint(out, uint64(generation), 10)
	out = append(out, " obj\n<<\n  /Length 0\n>>\nstream\nendstream\nendobj\n\n"...)
	return out
}
