package store

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single record line.
const maxLineSize = 16 * 1024 * 1024

// Backend reads and writes the lines of store paths.
//
// ReadLines returns an error wrapping fs.ErrNotExist when nothing was ever
// written at rel. WriteLines replaces every line stored at rel.
type Backend interface {
	ReadLines(rel string) ([][]byte, error)
	WriteLines(rel string, lines [][]byte) error
}

// FileBackend stores each path as a text file under BaseDir.
//
// Writes go to a temporary file in the target directory which is then
// renamed over the target, so readers never observe a half-written file.
type FileBackend struct {
	BaseDir string
}

// NewFileBackend creates a backend rooted at baseDir, creating the
// directory when missing.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := EnsureDir(baseDir); err != nil {
		return nil, fmt.Errorf("file backend: %w", err)
	}
	return &FileBackend{BaseDir: baseDir}, nil
}

// Location returns the absolute file for a store path.
func (b *FileBackend) Location(rel string) (string, error) {
	return Join(b.BaseDir, rel)
}

// ReadLines returns the non-empty lines of the file at rel.
func (b *FileBackend) ReadLines(rel string) ([][]byte, error) {
	path, err := b.Location(rel)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	defer f.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, bytes.Clone(line))
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("read %s: %w", rel, err)
	}
	return lines, nil
}

// WriteLines replaces the file at rel with lines, one per line.
func (b *FileBackend) WriteLines(rel string, lines [][]byte) error {
	path, err := b.Location(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
