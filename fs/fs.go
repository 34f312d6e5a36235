// Package fs implements file-system access for undiff: reading logs,
// atomic timeline export and the on-disk replay cache.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/undiff"
)

// DefaultCacheDir returns the default cache directory for undiff.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/undiff,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "undiff")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "undiff")
	}
	return filepath.Join(home, ".cache", "undiff")
}

// ReadLog reads the whole diagnostic log at path.
func ReadLog(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", undiff.ErrInputMissing, err)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temporary file next to path, syncs it
// and renames it over path. Readers see either the old file or the new
// one, never a partial write.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(perm); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
