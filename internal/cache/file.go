package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File is a Slot stored as a single JSON file.
type File struct {
	path string
}

// OpenFile returns a file slot at path, creating its directory (mode 0700).
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Get implements Slot.
func (f *File) Get(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return data, nil
}

// Put implements Slot. The file is replaced atomically via rename.
func (f *File) Put(ctx context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".todos-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}

// Delete implements Slot.
func (f *File) Delete(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements Slot.
func (f *File) Close() error { return nil }
