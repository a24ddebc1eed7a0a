package imagestore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("image not found")

// Backend stores opaque blobs under slash separated paths.
type Backend interface {
	Put(ctx context.Context, path string, data io.Reader) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	Close() error
}

var _ Backend = (*LocalBackend)(nil)
var _ Backend = (*FTPBackend)(nil)
