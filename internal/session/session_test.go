package session_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pdfobjedit/internal/logging"
	"github.com/yaklabco/pdfobjedit/internal/session"
	"github.com/yaklabco/pdfobjedit/internal/testpdf"
	"github.com/yaklabco/pdfobjedit/pkg/fsutil"
	"github.com/yaklabco/pdfobjedit/pkg/streamloc"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// fakePrograms records invocations and edits the scratch file with edit.
type fakePrograms struct {
	edit    func(path string) error
	edited  []string
	paged   []string
	pageErr error
}

func (f *fakePrograms) Edit(_ context.Context, path string) error {
	f.edited = append(f.edited, path)
	if f.edit == nil {
		return nil
	}
	return f.edit(path)
}

func (f *fakePrograms) Page(_ context.Context, path string) error {
	f.paged = append(f.paged, path)
	return f.pageErr
}

func writeWith(content string) func(string) error {
	return func(path string) error {
		return os.WriteFile(path, []byte(content), 0600)
	}
}

type fixture struct {
	doc     *testpdf.Doc
	src     string
	out     string
	scratch string
	logs    *bytes.Buffer
	progs   *fakePrograms
	sess    *session.Session
}

func open(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	doc := testpdf.Sample()
	src := testpdf.WriteFile(t, dir, "doc.pdf", doc)

	f := &fixture{
		doc:     doc,
		src:     src,
		out:     src + ".modified.pdf",
		scratch: src + ".editobj",
		logs:    &bytes.Buffer{},
		progs:   &fakePrograms{},
	}

	sess, err := session.Open(context.Background(), src, session.Options{
		OutputPath:  f.out,
		ScratchPath: f.scratch,
		Programs:    f.progs,
		Logger:      logging.NewWithWriter(f.logs, "debug"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	f.sess = sess
	return f
}

func (f *fixture) export(t *testing.T) []byte {
	t.Helper()

	_, err := f.sess.Export(context.Background())
	require.NoError(t, err)
	out, err := os.ReadFile(f.out)
	require.NoError(t, err)
	return out
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := session.Open(context.Background(), filepath.Join(dir, "missing.pdf"), session.Options{})
	require.ErrorIs(t, err, fsutil.ErrNotFound)

	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a container\n"), 0644))
	_, err = session.Open(context.Background(), bad, session.Options{})
	require.ErrorIs(t, err, xref.ErrFormat)
}

func TestOpen_LogsThroughContextLogger(t *testing.T) {
	t.Parallel()

	src := testpdf.WriteFile(t, t.TempDir(), "doc.pdf", testpdf.Sample())
	var logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&logs, "debug"))

	sess, err := session.Open(ctx, src, session.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })

	assert.Contains(t, logs.String(), "container loaded")
	assert.Contains(t, logs.String(), src)
}

func TestExport_Unedited(t *testing.T) {
	t.Parallel()

	f := open(t)
	assert.False(t, f.sess.Unsaved())
	assert.Equal(t, f.doc.Bytes, f.export(t))
}

func TestEditObject(t *testing.T) {
	t.Parallel()

	f := open(t)
	replacement := "3 0 obj\n<< /Type /Pages /Kids [] /Count 0 /Edited true >>\nendobj\n"

	var seen []byte
	f.progs.edit = func(path string) error {
		var err error
		seen, err = os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(replacement), 0600)
	}

	require.NoError(t, f.sess.EditObject(context.Background(), 3))

	assert.Equal(t, []string{f.scratch}, f.progs.edited)
	assert.Equal(t, string(f.doc.Bytes[f.doc.Offsets[3]:f.doc.TableOffset]), string(seen))
	assert.True(t, f.sess.Dirty(3))
	assert.True(t, f.sess.Unsaved())
	assert.NoFileExists(t, f.scratch)

	out := f.export(t)
	assert.Contains(t, string(out), "/Edited true")
	assert.False(t, f.sess.Unsaved())

	reloaded, err := xref.Load(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	entry, err := reloaded.Entry(3)
	require.NoError(t, err)
	assert.Equal(t, replacement, string(out[entry.Offset:entry.Offset+entry.Length]))
}

func TestEditObject_UnchangedStillDirty(t *testing.T) {
	t.Parallel()

	f := open(t)
	require.NoError(t, f.sess.EditObject(context.Background(), 1))
	assert.True(t, f.sess.Dirty(1))
	assert.Equal(t, f.doc.Bytes, f.export(t))
}

func TestEditObject_EditorFailureIsWarning(t *testing.T) {
	t.Parallel()

	f := open(t)
	f.progs.edit = func(string) error { return errors.New("boom") }

	require.NoError(t, f.sess.EditObject(context.Background(), 1))
	assert.Contains(t, f.logs.String(), "editor failed")
}

func TestEditObject_ScratchRemoved(t *testing.T) {
	t.Parallel()

	f := open(t)
	f.progs.edit = func(path string) error { return os.Remove(path) }

	err := f.sess.EditObject(context.Background(), 1)
	require.ErrorIs(t, err, xref.ErrIO)
	assert.False(t, f.sess.Dirty(1))
	assert.False(t, f.sess.Unsaved())
}

func TestEditObject_OutOfRange(t *testing.T) {
	t.Parallel()

	f := open(t)
	for _, n := range []int{-1, 4, 100} {
		require.ErrorIs(t, f.sess.EditObject(context.Background(), n), xref.ErrRange)
	}
	assert.Empty(t, f.progs.edited)
}

func TestEditObject_NoPrograms(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testpdf.WriteFile(t, dir, "doc.pdf", testpdf.Sample())
	sess, err := session.Open(context.Background(), src, session.Options{ScratchPath: src + ".editobj"})
	require.NoError(t, err)
	defer sess.Close()

	require.ErrorIs(t, sess.EditObject(context.Background(), 1), session.ErrNoPrograms)
	require.ErrorIs(t, sess.ViewOriginal(context.Background()), session.ErrNoPrograms)
}

func TestEditStream(t *testing.T) {
	t.Parallel()

	f := open(t)

	var seen []byte
	f.progs.edit = func(path string) error {
		var err error
		seen, err = os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte("q Q"), 0600)
	}

	require.NoError(t, f.sess.EditStream(context.Background(), 2))
	assert.Equal(t, "BT /F1 12 Tf 72 712 Td (Hello, world) Tj ET", string(seen))

	out := f.export(t)
	assert.Contains(t, string(out), "2 0 obj\n<<\n  /Length 3\n>>\nstream\nq Q\nendstream\nendobj\n")
}

func TestEditStream_NoStream(t *testing.T) {
	t.Parallel()

	f := open(t)
	err := f.sess.EditStream(context.Background(), 1)
	require.ErrorIs(t, err, streamloc.ErrNoStream)
	assert.Contains(t, err.Error(), "edit-object")
	assert.Empty(t, f.progs.edited)
	assert.False(t, f.sess.Unsaved())
}

func TestUndo(t *testing.T) {
	t.Parallel()

	f := open(t)
	require.NoError(t, f.sess.Blank(2))
	require.True(t, f.sess.Dirty(2))

	require.NoError(t, f.sess.Undo(2))
	assert.False(t, f.sess.Loaded(2))
	assert.Equal(t, f.doc.Bytes, f.export(t))

	require.ErrorIs(t, f.sess.Undo(9), xref.ErrRange)
}

func TestBlank(t *testing.T) {
	t.Parallel()

	f := open(t)
	require.NoError(t, f.sess.Blank(2))
	assert.True(t, f.sess.Unsaved())

	out := f.export(t)
	assert.Contains(t, string(out), "2 0 obj\n<<\n  /Length 0\n>>\nstream\nendstream\nendobj\n\n")
	assert.NotContains(t, string(out), "Hello, world")

	require.ErrorIs(t, f.sess.Blank(4), xref.ErrRange)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	f := open(t)

	tests := []struct {
		needle string
		want   []int
	}{
		{"/Type", []int{1, 3}},
		{"Hello", []int{2}},
		{"obj", []int{1, 2, 3}},
		{"%PDF", []int{0}},
		{"absent", []int{}},
	}

	for _, tt := range tests {
		got, err := f.sess.Search(context.Background(), []byte(tt.needle))
		require.NoError(t, err, tt.needle)
		assert.Equal(t, tt.want, got, tt.needle)
	}

	got, err := f.sess.Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_SeesEdits(t *testing.T) {
	t.Parallel()

	f := open(t)
	require.NoError(t, f.sess.Blank(2))

	got, err := f.sess.Search(context.Background(), []byte("Hello"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_Canceled(t *testing.T) {
	t.Parallel()

	f := open(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.sess.Search(ctx, []byte("obj"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestExport_SourceChangedWarns(t *testing.T) {
	t.Parallel()

	f := open(t)
	require.NoError(t, os.WriteFile(f.src, append(f.doc.Bytes, '\n'), 0644))

	_, err := f.sess.Export(context.Background())
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "source changed on disk")
}

func TestExport_Backup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testpdf.WriteFile(t, dir, "doc.pdf", testpdf.Sample())
	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

	sess, err := session.Open(context.Background(), src, session.Options{
		OutputPath: out,
		Backups:    fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar},
		Logger:     logging.NewWithWriter(&bytes.Buffer{}, "info"),
	})
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Export(context.Background())
	require.NoError(t, err)

	backup, err := os.ReadFile(out + fsutil.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(backup))
}

func TestView(t *testing.T) {
	t.Parallel()

	f := open(t)

	require.NoError(t, f.sess.ViewOriginal(context.Background()))
	require.ErrorIs(t, f.sess.ViewEdited(context.Background()), fsutil.ErrNotFound)

	f.export(t)
	require.NoError(t, f.sess.ViewEdited(context.Background()))
	assert.Equal(t, []string{f.src, f.out}, f.progs.paged)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	f := open(t)

	info, err := f.sess.Describe(2)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Number)
	assert.False(t, info.Loaded)
	assert.False(t, info.Dirty)
	assert.True(t, info.HasStream)
	assert.Equal(t, len("BT /F1 12 Tf 72 712 Td (Hello, world) Tj ET"), info.PayloadLen)
	assert.Equal(t, f.doc.Offsets[3]-f.doc.Offsets[2], int64(info.Size))
	assert.Equal(t, info.Entry.Length, int64(info.Size))
	require.NoError(t, info.Digest.Validate())

	info, err = f.sess.Describe(1)
	require.NoError(t, err)
	assert.False(t, info.HasStream)

	_, err = f.sess.Describe(7)
	require.ErrorIs(t, err, xref.ErrRange)
}

func TestClose_Twice(t *testing.T) {
	t.Parallel()

	f := open(t)
	require.NoError(t, f.sess.Close())
	require.NoError(t, f.sess.Close())
}
