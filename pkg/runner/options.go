// Package runner scans many containers concurrently.
package runner

// Options controls discovery and concurrency for a run.
type Options struct {
	// Paths are files or directories to scan. Empty means the working directory.
	Paths []string

	// WorkingDir resolves relative Paths and exclude patterns.
	// If empty, the process working directory is used.
	WorkingDir string

	// Extensions lists the lowercase file extensions, with leading dot, that
	// mark a container. Defaults to DefaultExtensions().
	Extensions []string

	// ExcludeGlobs skip matching files and directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs caps the number of concurrent workers.
	// 0 or negative means runtime.NumCPU().
	Jobs int
}

// DefaultExtensions returns the extensions scanned when none are configured.
func DefaultExtensions() []string {
	return []string{".pdf"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
