// Package atomicfile writes files so that a concurrent reader never
// observes a partial write: content lands in a uniquely named sibling,
// is fsynced, then renamed over the target.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Write atomically replaces path with data. A reader opening path at any
// point during the call sees either the previous complete content or
// the new complete content, never a prefix.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("atomicfile: create temp: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("atomicfile: write temp: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("atomicfile: fsync temp: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("atomicfile: close temp: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("atomicfile: rename: %w", err)
	}

	return nil
}

// WritePidFile writes pid as the sole content of <name>.pid in dir.
func WritePidFile(dir, name string, pid int) error {
	path := filepath.Join(dir, name+".pid")
	return Write(path, []byte(fmt.Sprintf("%d", pid)), 0o644)
}
