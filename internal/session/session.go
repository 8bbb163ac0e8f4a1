// Package session holds the state of one editing session over a container:
// the open source file, its index table and the overlay store shadowing it.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/opencontainers/go-digest"
	"github.com/samber/lo"

	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/pkg/export"
	"github.com/yaklabco/pdfobjedit/pkg/fsutil"
	"github.com/yaklabco/pdfobjedit/pkg/overlay"
	"github.com/yaklabco/pdfobjedit/pkg/streamloc"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// ErrNoPrograms is returned by operations that need an editor or pager when
// the session was opened without one.
var ErrNoPrograms = errors.New("no editor or pager configured")

// Programs runs the interactive collaborators of a session.
type Programs interface {
	Edit(ctx context.Context, path string) error
	Page(ctx context.Context, path string) error
}

// Options configures a session.
type Options struct {
	// OutputPath is where Export writes the modified container.
	OutputPath string

	// ScratchPath is the file handed to the editor.
	ScratchPath string

	// Programs runs the editor and pager. Optional for batch use.
	Programs Programs

	// Backups controls whether an existing export is kept before overwriting.
	Backups fsutil.BackupConfig

	// Logger receives warnings. Defaults to the logger attached to the context
	// passed to Open.
	Logger *log.Logger
}

// Session is one open container being edited.
type Session struct {
	path    string
	file    *os.File
	info    *fsutil.FileInfo
	table   *xref.Table
	store   *overlay.Store
	opts    Options
	logger  *log.Logger
	unsaved bool
}

// ObjectInfo describes one object number.
type ObjectInfo struct {
	Number     int
	Entry      xref.Entry
	Loaded     bool // had an overlay before Describe
	Dirty      bool
	Size       int
	Digest     digest.Digest
	HasStream  bool
	PayloadLen int
}

// Open opens path read-only and loads its index table.
func Open(ctx context.Context, path string, opts Options) (*Session, error) {
	info, err := fsutil.Stat(ctx, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	table, err := xref.Load(file, info.Size)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	logger.Debug("container loaded",
		logging.FieldPath, path,
		logging.FieldObjects, table.Len(),
		logging.FieldTable, table.TableOffset,
	)

	return &Session{
		path:   path,
		file:   file,
		info:   info,
		table:  table,
		store:  overlay.New(),
		opts:   opts,
		logger: logger,
	}, nil
}

// Close releases the source file. Overlays are discarded.
func (s *Session) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}
	return nil
}

// Path returns the source container path.
func (s *Session) Path() string { return s.path }

// OutputPath returns the export destination.
func (s *Session) OutputPath() string { return s.opts.OutputPath }

// Table returns the loaded index table. Callers must not modify it.
func (s *Session) Table() *xref.Table { return s.table }

// Unsaved reports whether edits were made since the last successful export.
func (s *Session) Unsaved() bool { return s.unsaved }

// Loaded reports whether object n has an overlay.
func (s *Session) Loaded(n int) bool { return s.store.Has(n) }

// Dirty reports whether object n has been edited.
func (s *Session) Dirty(n int) bool { return s.store.Dirty(n) }

// Overlays returns the object numbers that currently have an overlay.
func (s *Session) Overlays() []int { return s.store.Numbers() }

// Edited returns the object numbers with dirty overlays in ascending order.
func (s *Session) Edited() []int {
	return lo.Filter(s.store.Numbers(), func(n int, _ int) bool {
		return s.store.Dirty(n)
	})
}

// load makes sure object n has an overlay. loaded reports a fresh read.
func (s *Session) load(n int) (loaded bool, err error) {
	entry, err := s.table.Entry(n)
	if err != nil {
		return false, err
	}
	loaded, err = s.store.LoadIfAbsent(n, entry, s.file)
	if err != nil {
		return false, err
	}
	if loaded {
		s.logger.Debug("object loaded",
			logging.FieldObject, n,
			logging.FieldOffset, entry.Offset,
			logging.FieldLength, entry.Length,
		)
	}
	return loaded, nil
}

// Load reads object n into the store if it is not there yet.
func (s *Session) Load(n int) (loaded bool, err error) {
	return s.load(n)
}

// EditObject round-trips the raw bytes of object n through the editor.
func (s *Session) EditObject(ctx context.Context, n int) error {
	if _, err := s.load(n); err != nil {
		return err
	}

	data, err := s.store.Bytes(n)
	if err != nil {
		return err
	}

	edited, err := s.editScratch(ctx, data)
	if err != nil {
		return fmt.Errorf("object %d: %w", n, err)
	}

	if err := s.store.SetBytes(n, edited); err != nil {
		return err
	}
	s.unsaved = true
	return nil
}

// EditStream round-trips only the embedded payload of object n through the
// editor and rewrites the declared length to match.
func (s *Session) EditStream(ctx context.Context, n int) error {
	if _, err := s.load(n); err != nil {
		return err
	}

	payload, err := s.store.StreamPayload(n)
	if err != nil {
		if errors.Is(err, streamloc.ErrNoStream) {
			return fmt.Errorf("%w (use edit-object)", err)
		}
		return err
	}

	edited, err := s.editScratch(ctx, payload)
	if err != nil {
		return fmt.Errorf("object %d: %w", n, err)
	}

	if err := s.store.SetStreamPayload(n, edited); err != nil {
		return err
	}
	s.unsaved = true
	return nil
}

// editScratch writes content to the scratch file, runs the editor on it and
// reads the result back. The scratch file is removed afterwards.
func (s *Session) editScratch(ctx context.Context, content []byte) ([]byte, error) {
	if s.opts.Programs == nil {
		return nil, ErrNoPrograms
	}

	scratch := s.opts.ScratchPath
	if err := fsutil.WriteScratch(scratch, content); err != nil {
		return nil, fmt.Errorf("%w: %w", xref.ErrIO, err)
	}
	defer s.removeScratch(scratch)

	if err := s.opts.Programs.Edit(ctx, scratch); err != nil {
		s.logger.Warn("editor failed", logging.FieldScratch, scratch, logging.FieldError, err)
	}

	edited, err := fsutil.ReadScratch(scratch, xref.MaxObjectSize)
	if err != nil {
		if errors.Is(err, fsutil.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", xref.ErrSizeLimit, err)
		}
		return nil, fmt.Errorf("%w: %w", xref.ErrIO, err)
	}
	return edited, nil
}

func (s *Session) removeScratch(path string) {
	if err := fsutil.RemoveScratch(path); err != nil {
		s.logger.Warn("unable to remove scratch file", logging.FieldScratch, path, logging.FieldError, err)
	}
}

// Undo drops any overlay of object n so the original bytes are exported.
func (s *Session) Undo(n int) error {
	if _, err := s.table.Entry(n); err != nil {
		return err
	}
	if s.store.Dirty(n) {
		s.unsaved = true
	}
	s.store.Discard(n)
	return nil
}

// Blank replaces object n with an empty stream object that keeps the entry's
// generation.
func (s *Session) Blank(n int) error {
	entry, err := s.table.Entry(n)
	if err != nil {
		return err
	}
	s.store.ReplaceWithEmptyStream(n, entry.Generation)
	s.unsaved = true
	return nil
}

// Search returns the object numbers whose current bytes contain needle,
// loading absent objects as it goes. An empty needle matches nothing.
func (s *Session) Search(ctx context.Context, needle []byte) ([]int, error) {
	if len(needle) == 0 {
		return nil, nil
	}

	for n := range s.table.Len() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if _, err := s.load(n); err != nil {
			return nil, fmt.Errorf("load object %d: %w", n, err)
		}
	}

	return lo.Filter(lo.Range(s.table.Len()), func(n int, _ int) bool {
		data, _, _ := s.store.Raw(n)
		return bytes.Contains(data, needle)
	}), nil
}

// Export writes the modified container to the output path.
func (s *Session) Export(ctx context.Context) (*export.Result, error) {
	changed, err := fsutil.CheckModifiedQuick(ctx, s.info)
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Warn("source changed on disk since it was opened", logging.FieldPath, s.path)
	}

	backedUp, err := fsutil.BackupPrevious(ctx, s.opts.OutputPath, s.opts.Backups)
	if err != nil {
		return nil, err
	}
	if backedUp {
		s.logger.Debug("previous export kept",
			logging.FieldPath, fsutil.BackupPath(s.opts.OutputPath, s.opts.Backups.Mode))
	}

	result, err := export.ToFile(ctx, s.opts.OutputPath, s.store, s.table, s.file)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("export complete",
		logging.FieldOutput, s.opts.OutputPath,
		logging.FieldBytesWritten, result.BytesWritten,
		logging.FieldOverlays, s.store.Len(),
	)

	s.unsaved = false
	return result, nil
}

// ViewOriginal pages the source container.
func (s *Session) ViewOriginal(ctx context.Context) error {
	return s.page(ctx, s.path)
}

// ViewEdited pages the last export.
func (s *Session) ViewEdited(ctx context.Context) error {
	if _, err := fsutil.Stat(ctx, s.opts.OutputPath); err != nil {
		return err
	}
	return s.page(ctx, s.opts.OutputPath)
}

func (s *Session) page(ctx context.Context, path string) error {
	if s.opts.Programs == nil {
		return ErrNoPrograms
	}
	if err := s.opts.Programs.Page(ctx, path); err != nil {
		return fmt.Errorf("page %s: %w", path, err)
	}
	return nil
}

// Describe reports the entry and overlay state of object n, loading it if
// needed so the size and digest are known. Loaded reflects the state before
// the call.
func (s *Session) Describe(n int) (*ObjectInfo, error) {
	entry, err := s.table.Entry(n)
	if err != nil {
		return nil, err
	}

	wasLoaded := s.store.Has(n)
	if _, err := s.load(n); err != nil {
		return nil, err
	}

	data, dirty, _ := s.store.Raw(n)
	sum, err := s.store.Digest(n)
	if err != nil {
		return nil, err
	}

	info := &ObjectInfo{
		Number: n,
		Entry:  entry,
		Loaded: wasLoaded,
		Dirty:  dirty,
		Size:   len(data),
		Digest: sum,
	}
	if bounds, err := streamloc.Locate(data); err == nil {
		info.HasStream = true
		info.PayloadLen = bounds.PayloadLen()
	}
	return info, nil
}
