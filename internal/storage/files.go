package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists uploaded documents on the local filesystem.
// Stored names are generated server side so client filenames never
// reach the disk.
type FileStore struct {
	dir string
}

// NewFileStore creates the upload directory if needed and returns a store
// rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Save writes the reader's contents to a new file and returns its path.
// The extension is taken from the original filename; everything else is
// discarded.
func (s *FileStore) Save(r io.Reader, originalName string) (string, error) {
	ext := filepath.Ext(filepath.Base(originalName))
	if len(ext) > 8 {
		ext = ""
	}

	name := uuid.Must(uuid.NewV7()).String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)

		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)

		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path, nil
}

// Remove deletes a previously stored file. Missing files are not an error.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}

	return nil
}
