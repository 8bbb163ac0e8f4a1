package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/yaklabco/pdfobjedit/pkg/runner"
)

func writeTree(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("%PDF-1.4\n"), 0644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func relative(t *testing.T, dir string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			t.Fatalf("rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir,
		"a.pdf",
		"docs/b.PDF",
		"docs/notes.txt",
		".hidden/c.pdf",
		"docs/.d.pdf",
		"vendor/e.pdf",
	)

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "defaults",
			opts: runner.Options{WorkingDir: dir},
			want: []string{"a.pdf", "docs/b.PDF", "vendor/e.pdf"},
		},
		{
			name: "exclude directory",
			opts: runner.Options{WorkingDir: dir, ExcludeGlobs: []string{"vendor/**"}},
			want: []string{"a.pdf", "docs/b.PDF"},
		},
		{
			name: "exclude by base name",
			opts: runner.Options{WorkingDir: dir, ExcludeGlobs: []string{"b.*"}},
			want: []string{"a.pdf", "vendor/e.pdf"},
		},
		{
			name: "exclude at any depth",
			opts: runner.Options{WorkingDir: dir, ExcludeGlobs: []string{"**/docs"}},
			want: []string{"a.pdf", "vendor/e.pdf"},
		},
		{
			name: "custom extensions",
			opts: runner.Options{WorkingDir: dir, Extensions: []string{".txt"}},
			want: []string{"docs/notes.txt"},
		},
		{
			name: "overlapping paths are deduplicated",
			opts: runner.Options{WorkingDir: dir, Paths: []string{"docs", ".", "a.pdf"}},
			want: []string{"a.pdf", "docs/b.PDF", "vendor/e.pdf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			files, err := runner.Discover(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}

			got := relative(t, dir, files)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Discover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscover_NamedFileIgnoresExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, "scan.bin")

	files, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: dir,
		Paths:      []string{"scan.bin"},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "scan.bin" {
		t.Errorf("expected scan.bin, got %v", files)
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Paths:      []string{"missing"},
	})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, "linked.pdf")
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	files, err := runner.Discover(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected symlinked directory to be skipped, got %v", files)
	}

	files, err = runner.Discover(context.Background(), runner.Options{WorkingDir: dir, FollowSymlinks: true})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "linked.pdf" {
		t.Errorf("expected linked.pdf, got %v", files)
	}
}

func TestDiscover_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Discover(ctx, runner.Options{WorkingDir: t.TempDir()}); err == nil {
		t.Error("expected cancellation error")
	}
}
