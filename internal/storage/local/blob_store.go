// Package local archives pass snapshots on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Config names the archive directory.
type Config struct {
	Dir string
}

// BlobStore writes snapshots below Dir. Paths cannot escape it.
type BlobStore struct {
	dir  string
	root *os.Root
}

// New creates the directory when missing and opens it as the archive root.
func New(cfg Config) (*BlobStore, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("archive.dir is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve archive dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open archive dir: %w", err)
	}
	return &BlobStore{dir: dir, root: root}, nil
}

// PutObject writes r to path and returns a file:// URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, r io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}
	if parent := filepath.Dir(path); parent != "." {
		if err := s.root.MkdirAll(parent, 0o750); err != nil {
			return "", fmt.Errorf("create parent directories: %w", err)
		}
	}
	if err := s.root.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return "file://" + filepath.Join(s.dir, path), nil
}

// Close releases the directory handle.
func (s *BlobStore) Close() error {
	return s.root.Close()
}
