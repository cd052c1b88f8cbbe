package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the binary payload backend referenced by FileRecord.Path.
// Keys are slash-separated and server-generated; the string returned by
// Put is an opaque reference stored alongside the metadata.
type Storage interface {
	// Put writes the payload under key and returns the opaque path/URL.
	// size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Get opens the payload previously written under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Ping reports whether the backend is reachable; used by /health.
	Ping(ctx context.Context) error
}

// DiskStorage keeps payloads on the local filesystem under a root
// directory. Used for single-node deployments and tests.
type DiskStorage struct {
	root string
}

func NewDiskStorage(root string) (*DiskStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("disk storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStorage{root: root}, nil
}

func (d *DiskStorage) filePath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(d.root, clean), nil
}

func (d *DiskStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	p, err := d.filePath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create payload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(p)
		return "", fmt.Errorf("write payload: %w", err)
	}
	return p, nil
}

func (d *DiskStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := d.filePath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	return f, nil
}

func (d *DiskStorage) Ping(ctx context.Context) error {
	if _, err := os.Stat(d.root); err != nil {
		return fmt.Errorf("storage root unavailable: %w", err)
	}
	return nil
}
