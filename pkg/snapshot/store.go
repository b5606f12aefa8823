package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/mmap"
)

// Store holds the bytes of one snapshot
type Store interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	String() string
}

// Open returns the store for location: s3://bucket/key or a file path
func Open(ctx context.Context, location string, opts S3Options) (Store, error) {
	if strings.HasPrefix(location, "s3://") {
		return NewS3Store(ctx, location, opts)
	}
	if location == "" {
		return nil, fmt.Errorf("empty snapshot location")
	}
	return &FileStore{Path: location}, nil
}

// FileStore keeps a snapshot in a local file
type FileStore struct {
	Path string
}

func (f *FileStore) String() string { return f.Path }

// Read maps the file and copies it out before unmapping
func (f *FileStore) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reader, err := mmap.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data := make([]byte, reader.Len())
	if _, err := reader.ReadAt(data, 0); err != nil && len(data) > 0 {
		return nil, err
	}
	return data, nil
}

// Write replaces the file atomically
func (f *FileStore) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
