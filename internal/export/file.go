package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes to a temporary file next to the target and renames it
// into place on Close, so readers never see a partial export.
type FileWriter struct {
	f    *os.File
	path string
}

func NewFileWriter(path string) (*FileWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}
	return &FileWriter{f: f, path: path}, nil
}

func (w *FileWriter) Write(p []byte) (int, error) { return w.f.Write(p) }

func (w *FileWriter) Close() error {
	if err := w.f.Close(); err != nil {
		_ = os.Remove(w.f.Name())
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(w.f.Name(), w.path); err != nil {
		_ = os.Remove(w.f.Name())
		return fmt.Errorf("move export into place: %w", err)
	}
	return nil
}
