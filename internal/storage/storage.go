// Package storage abstracts the public file store used for avatar blobs.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage persists named blobs under a public path.
type Storage interface {
	Save(name string, r io.Reader) error
	Delete(name string) error
}

// LocalStorage writes blobs to a directory on the local filesystem.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a LocalStorage rooted at dir, creating it if needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{root: dir}, nil
}

func (s *LocalStorage) Save(name string, r io.Reader) error {
	f, err := os.Create(filepath.Join(s.root, filepath.Base(name)))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Delete(name string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
