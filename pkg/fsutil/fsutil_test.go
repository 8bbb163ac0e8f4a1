package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pdfobjedit/pkg/fsutil"
)

func TestStat(t *testing.T) {
	t.Parallel()

	t.Run("records size and mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.pdf")
		require.NoError(t, os.WriteFile(path, []byte("hello world"), 0644))

		info, err := fsutil.Stat(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, path, info.Path)
		assert.Equal(t, int64(11), info.Size)
		assert.Equal(t, os.FileMode(0644), info.Mode.Perm())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.Stat(context.Background(), "/nonexistent/path/doc.pdf")
		assert.ErrorIs(t, err, fsutil.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.Stat(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})
}

func TestCheckModifiedQuick(t *testing.T) {
	t.Parallel()

	t.Run("unchanged file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.pdf")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		ctx := context.Background()
		info, err := fsutil.Stat(ctx, path)
		require.NoError(t, err)

		modified, err := fsutil.CheckModifiedQuick(ctx, info)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("size changed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.pdf")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		ctx := context.Background()
		info, err := fsutil.Stat(ctx, path)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("longer content"), 0644))
		future := time.Now().Add(time.Hour)
		require.NoError(t, os.Chtimes(path, future, future))

		modified, err := fsutil.CheckModifiedQuick(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("deleted file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.pdf")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

		ctx := context.Background()
		info, err := fsutil.Stat(ctx, path)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		modified, err := fsutil.CheckModifiedQuick(ctx, info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModifiedQuick(context.Background(), nil)
		assert.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	})
}
