package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// BackupMode specifies how backups are stored.
type BackupMode string

const (
	// BackupModeSidecar stores the backup next to the file with BackupSuffix appended.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is the suffix used for sidecar backup files.
const BackupSuffix = ".bak"

// BackupConfig controls backup behavior.
type BackupConfig struct {
	// Enabled indicates whether backups should be created.
	Enabled bool

	// Mode specifies how backups are stored.
	Mode BackupMode
}

// BackupPath returns the backup path for the given file based on the mode.
func BackupPath(path string, mode BackupMode) string {
	switch mode {
	case BackupModeNone:
		return ""
	default:
		return path + BackupSuffix
	}
}

// BackupPrevious copies the file at path to its backup location before it is
// overwritten. It keeps exactly one generation: an older backup is replaced.
// Returns true if a backup was written, false if there was nothing to back up
// or backups are disabled.
func BackupPrevious(ctx context.Context, path string, cfg BackupConfig) (bool, error) {
	if !cfg.Enabled || cfg.Mode == BackupModeNone {
		return false, nil
	}

	backupPath := BackupPath(path, cfg.Mode)
	if backupPath == "" {
		return false, nil
	}

	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open original for backup: %w", err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return false, fmt.Errorf("stat original for backup: %w", err)
	}

	err = WriteAtomicFunc(ctx, backupPath, stat.Mode().Perm(), func(w io.Writer) error {
		if _, err := io.Copy(w, src); err != nil {
			return fmt.Errorf("copy original: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}

	return true, nil
}
