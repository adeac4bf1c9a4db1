package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agenthands/imgclass/internal/core/model"
)

var (
	ErrNotFound   = errors.New("stored file not found")
	ErrInvalidKey = errors.New("invalid content key")
)

// UploadStore persists uploads under their content key.
type UploadStore interface {
	// Put writes data under key unless the key is already present, in which
	// case it returns the existing file untouched.
	Put(ctx context.Context, key model.ContentKey, data []byte) (model.StoredFile, error)
	Stat(ctx context.Context, key model.ContentKey) (model.StoredFile, error)
	Open(ctx context.Context, key model.ContentKey) (io.ReadCloser, error)
}

type StorageError struct {
	Op  string
	Key model.ContentKey
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
