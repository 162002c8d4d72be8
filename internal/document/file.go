package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a document backed by a file on disk. The one-shot runner uses it
// to apply a task to a file span and write the accepted result back.
type File struct {
	path string
}

// NewFile returns a provider for path. The file does not have to exist yet;
// Text on a missing file reports the underlying error.
func NewFile(path string) *File {
	return &File{path: filepath.Clean(path)}
}

// Path returns the file backing this document.
func (f *File) Path() string {
	return f.path
}

// Text reads the file fresh on every call.
func (f *File) Text() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("document: read %s: %w", f.path, err)
	}
	return string(data), nil
}

// SetText replaces the file contents through a temp file and rename, so a
// crash mid-write never leaves a half-written document behind.
func (f *File) SetText(text string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("document: ensure dir for %s: %w", f.path, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("document: create temp for %s: %w", f.path, err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("document: write temp for %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("document: close temp for %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("document: replace %s: %w", f.path, err)
	}
	return nil
}
