package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalBackend keeps images on the local filesystem under baseDir.
type LocalBackend struct {
	baseDir string
}

func NewLocalBackend(baseDir string) (*LocalBackend, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &LocalBackend{baseDir: baseDir}, nil
}

func (b *LocalBackend) localPath(path string) string {
	return filepath.Join(b.baseDir, filepath.FromSlash(path))
}

func (b *LocalBackend) Put(ctx context.Context, path string, data io.Reader) error {
	localPath := b.localPath(path)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, data); err != nil {
		file.Close()
		os.Remove(localPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return file.Close()
}

func (b *LocalBackend) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(b.localPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (b *LocalBackend) Exists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(b.localPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

func (b *LocalBackend) Delete(ctx context.Context, path string) error {
	err := os.Remove(b.localPath(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Close is a no-op
func (b *LocalBackend) Close() error {
	return nil
}
