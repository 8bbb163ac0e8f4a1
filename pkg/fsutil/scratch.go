package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ScratchFileMode is the permission mode of scratch files handed to an editor.
const ScratchFileMode os.FileMode = 0600

// WriteScratch creates or truncates path and writes content to it.
func WriteScratch(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, ScratchFileMode)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write scratch file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close scratch file: %w", err)
	}
	return nil
}

// ReadScratch reads path back, refusing files of limit bytes or more.
func ReadScratch(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open scratch file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat scratch file: %w", err)
	}
	if stat.Size() >= limit {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, stat.Size())
	}

	content, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, fmt.Errorf("read scratch file: %w", err)
	}
	if int64(len(content)) >= limit {
		return nil, fmt.Errorf("%w: %s grew past %d bytes", ErrTooLarge, path, limit)
	}

	return content, nil
}

// RemoveScratch deletes path. A missing file is not an error.
func RemoveScratch(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove scratch file: %w", err)
	}
	return nil
}
