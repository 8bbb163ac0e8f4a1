package overlay_test

import (
	"bytes"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pdfobjedit/internal/testpdf"
	"github.com/yaklabco/pdfobjedit/pkg/overlay"
	"github.com/yaklabco/pdfobjedit/pkg/streamloc"
	"github.com/yaklabco/pdfobjedit/pkg/xref"
)

// countingReader counts ReadAt calls so tests can assert lazy loading.
type countingReader struct {
	r     *bytes.Reader
	reads int
}

func (c *countingReader) ReadAt(p []byte, off int64) (int, error) {
	c.reads++
	return c.r.ReadAt(p, off)
}

func sampleTable(t *testing.T) (*testpdf.Doc, *xref.Table, *countingReader) {
	t.Helper()

	doc := testpdf.Sample()
	table, err := xref.Load(bytes.NewReader(doc.Bytes), int64(len(doc.Bytes)))
	require.NoError(t, err)

	return doc, table, &countingReader{r: bytes.NewReader(doc.Bytes)}
}

func TestStore_LoadIfAbsent(t *testing.T) {
	t.Parallel()

	doc, table, src := sampleTable(t)
	store := overlay.New()

	loaded, err := store.LoadIfAbsent(1, table.Entries[1], src)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, 1, src.reads)

	got, err := store.Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, doc.Bytes[doc.Offsets[1]:doc.Offsets[2]], got)
	assert.False(t, store.Dirty(1))

	loaded, err = store.LoadIfAbsent(1, table.Entries[1], src)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, 1, src.reads, "second load must not reread")
}

func TestStore_ForceReloadDropsEdits(t *testing.T) {
	t.Parallel()

	doc, table, src := sampleTable(t)
	store := overlay.New()

	require.NoError(t, store.ForceReload(3, table.Entries[3], src))
	require.NoError(t, store.SetBytes(3, []byte("3 0 obj\nnull\nendobj\n")))
	assert.True(t, store.Dirty(3))
	assert.True(t, store.IsModified())

	require.NoError(t, store.ForceReload(3, table.Entries[3], src))
	got, err := store.Bytes(3)
	require.NoError(t, err)
	assert.Equal(t, doc.Bytes[doc.Offsets[3]:doc.TableOffset], got)
	assert.False(t, store.IsModified())
}

func TestStore_ForceReloadFailureLeavesNoOverlay(t *testing.T) {
	t.Parallel()

	_, table, src := sampleTable(t)
	store := overlay.New()
	require.NoError(t, store.ForceReload(2, table.Entries[2], src))

	tests := []struct {
		name    string
		entry   xref.Entry
		wantErr error
	}{
		{"unset length", xref.Entry{Offset: 10, Length: xref.Unset, Use: xref.UseInUse}, xref.ErrFormat},
		{"negative offset", xref.Entry{Offset: -1, Length: 4, Use: xref.UseInUse}, xref.ErrFormat},
		{"too large", xref.Entry{Offset: 0, Length: xref.MaxObjectSize + 1, Use: xref.UseInUse}, xref.ErrSizeLimit},
		{"past end of file", xref.Entry{Offset: 100000, Length: 16, Use: xref.UseInUse}, xref.ErrIO},
	}

	for _, tt := range tests {
		require.NoError(t, store.ForceReload(2, table.Entries[2], src))

		err := store.ForceReload(2, tt.entry, src)
		require.ErrorIs(t, err, tt.wantErr, tt.name)
		assert.False(t, store.Has(2), tt.name)
	}
}

func TestStore_ZeroLengthEntry(t *testing.T) {
	t.Parallel()

	_, _, src := sampleTable(t)
	store := overlay.New()

	require.NoError(t, store.ForceReload(7, xref.Entry{Offset: 0, Length: 0, Use: xref.UseFree}, src))
	got, err := store.Bytes(7)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, src.reads)
}

func TestStore_NotLoaded(t *testing.T) {
	t.Parallel()

	store := overlay.New()

	_, err := store.Bytes(4)
	require.ErrorIs(t, err, overlay.ErrNotLoaded)
	require.ErrorIs(t, store.SetBytes(4, []byte("x")), overlay.ErrNotLoaded)
	_, err = store.StreamPayload(4)
	require.ErrorIs(t, err, overlay.ErrNotLoaded)
	require.ErrorIs(t, store.SetStreamPayload(4, nil), overlay.ErrNotLoaded)
	_, err = store.Digest(4)
	require.ErrorIs(t, err, overlay.ErrNotLoaded)
}

func TestStore_BytesAreCopies(t *testing.T) {
	t.Parallel()

	_, table, src := sampleTable(t)
	store := overlay.New()
	require.NoError(t, store.ForceReload(1, table.Entries[1], src))

	got, err := store.Bytes(1)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := store.Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, byte('1'), again[0])

	edit := []byte("1 0 obj\n<< >>\nendobj\n")
	require.NoError(t, store.SetBytes(1, edit))
	edit[0] = 'Y'

	again, err = store.Bytes(1)
	require.NoError(t, err)
	assert.Equal(t, byte('1'), again[0])
}

func TestStore_StreamPayload(t *testing.T) {
	t.Parallel()

	_, table, src := sampleTable(t)
	store := overlay.New()
	require.NoError(t, store.ForceReload(2, table.Entries[2], src))

	payload, err := store.StreamPayload(2)
	require.NoError(t, err)
	assert.Equal(t, "BT /F1 12 Tf 72 712 Td (Hello, world) Tj ET", string(payload))

	require.NoError(t, store.SetStreamPayload(2, []byte("q Q")))
	assert.True(t, store.Dirty(2))

	payload, err = store.StreamPayload(2)
	require.NoError(t, err)
	assert.Equal(t, "q Q", string(payload))

	raw, _, ok := store.Raw(2)
	require.True(t, ok)
	assert.Contains(t, string(raw), "/Length 3\n")
}

func TestStore_StreamPayloadWithoutStream(t *testing.T) {
	t.Parallel()

	_, table, src := sampleTable(t)
	store := overlay.New()
	require.NoError(t, store.ForceReload(1, table.Entries[1], src))

	_, err := store.StreamPayload(1)
	require.ErrorIs(t, err, streamloc.ErrNoStream)
	require.ErrorIs(t, store.SetStreamPayload(1, []byte("x")), streamloc.ErrNoStream)
	assert.False(t, store.Dirty(1))
}

func TestStore_ReplaceWithEmptyStream(t *testing.T) {
	t.Parallel()

	store := overlay.New()
	store.ReplaceWithEmptyStream(12, 0)

	got, err := store.Bytes(12)
	require.NoError(t, err)
	assert.Equal(t, "12 0 obj\n<<\n  /Length 0\n>>\nstream\nendstream\nendobj\n\n", string(got))
	assert.True(t, store.Dirty(12))

	payload, err := store.StreamPayload(12)
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestEmptyStreamObject_Generation(t *testing.T) {
	t.Parallel()

	obj := overlay.EmptyStreamObject(5, 3)
	assert.True(t, bytes.HasPrefix(obj, []byte("5 3 obj\n")))

	b, err := streamloc.Locate(obj)
	require.NoError(t, err)
	assert.Zero(t, b.PayloadLen())
	assert.True(t, b.HasLengthField())
}

func TestStore_NumbersAndDigest(t *testing.T) {
	t.Parallel()

	_, table, src := sampleTable(t)
	store := overlay.New()

	for _, n := range []int{3, 1, 2} {
		require.NoError(t, store.ForceReload(n, table.Entries[n], src))
	}
	assert.Equal(t, []int{1, 2, 3}, store.Numbers())
	assert.Equal(t, 3, store.Len())

	raw, _, _ := store.Raw(1)
	want := digest.FromBytes(raw)
	got, err := store.Digest(1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NoError(t, got.Validate())

	store.Discard(1)
	assert.Equal(t, []int{2, 3}, store.Numbers())
}
