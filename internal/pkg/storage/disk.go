package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStorage writes objects under a local directory that the API also serves
// statically.
type DiskStorage struct {
	baseDir   string
	publicURL string
}

func NewDiskStorage(baseDir, publicURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &DiskStorage{baseDir: baseDir, publicURL: publicURL}, nil
}

func (d *DiskStorage) BaseDir() string { return d.baseDir }

func (d *DiskStorage) path(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.baseDir, filepath.FromSlash(clean)), nil
}

func (d *DiskStorage) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	abs, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(abs)
		return fmt.Errorf("write file: %w", err)
	}
	return dst.Close()
}

func (d *DiskStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	abs, err := d.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (d *DiskStorage) Delete(_ context.Context, key string) error {
	abs, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d *DiskStorage) URL(key string) string {
	clean, err := CleanKey(key)
	if err != nil {
		return ""
	}
	return d.publicURL + "/" + clean
}
