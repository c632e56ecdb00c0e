package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Separator starts every store path.
const Separator = "/"

var (
	// ErrInvalidPath is returned for store paths that do not start with Separator.
	ErrInvalidPath = errors.New("invalid store path")

	// ErrNotDirectory is returned when a directory is needed where a
	// non-directory file exists.
	ErrNotDirectory = errors.New("not a directory")
)

// ResolvePath validates a relative store path and returns it cleaned.
// It touches nothing on disk.
func ResolvePath(rel string) (string, error) {
	if !strings.HasPrefix(rel, Separator) {
		return "", fmt.Errorf("%w: %q must start with %q", ErrInvalidPath, rel, Separator)
	}
	cleaned := filepath.ToSlash(filepath.Clean(rel))
	if cleaned == Separator {
		return "", fmt.Errorf("%w: %q names no collection", ErrInvalidPath, rel)
	}
	return cleaned, nil
}

// Join prepends base to a validated store path.
func Join(base, rel string) (string, error) {
	cleaned, err := ResolvePath(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, filepath.FromSlash(cleaned)), nil
}

// EnsureDir creates dir and its parents when missing. It fails with
// ErrNotDirectory when dir, or one of its parents, is a regular file.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		return nil
	case errors.Is(err, syscall.ENOTDIR):
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) {
			return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
