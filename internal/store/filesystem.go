package store

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/core/model"
)

const filePerm = 0o644

type FilesystemStore struct {
	dir    string
	logger *zap.Logger
}

var _ UploadStore = (*FilesystemStore)(nil)

func NewFilesystemStore(dir string, logger *zap.Logger) (*FilesystemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, &StorageError{Op: "init", Err: errors.New("upload folder is not set")}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "init", Err: err}
	}

	logger.Info("Upload store ready", zap.String("dir", dir))
	return &FilesystemStore{dir: dir, logger: logger}, nil
}

func (s *FilesystemStore) Dir() string {
	return s.dir
}

func (s *FilesystemStore) Put(ctx context.Context, key model.ContentKey, data []byte) (model.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return model.StoredFile{}, err
	}

	path, err := s.path(key)
	if err != nil {
		return model.StoredFile{}, err
	}

	if info, err := os.Stat(path); err == nil {
		s.logger.Debug("Upload already stored", zap.String("key", key.String()))
		return s.stored(key, path, info.Size(), false), nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return model.StoredFile{}, &StorageError{Op: "stat", Key: key, Err: err}
	}

	tmpName, err := s.writeTemp(data)
	if err != nil {
		return model.StoredFile{}, &StorageError{Op: "write", Key: key, Err: err}
	}
	defer os.Remove(tmpName)

	// Link refuses to replace an existing name, so only one concurrent writer
	// publishes the file. Everyone else sees ErrExist.
	err = os.Link(tmpName, path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrExist):
		s.logger.Debug("Concurrent upload won the race", zap.String("key", key.String()))
		return s.stored(key, path, int64(len(data)), false), nil
	default:
		// No hard links on this filesystem. Same bytes under the same name,
		// so a rename over a concurrent writer is harmless.
		if err := os.Rename(tmpName, path); err != nil {
			return model.StoredFile{}, &StorageError{Op: "publish", Key: key, Err: err}
		}
	}

	s.logger.Info("Stored upload", zap.String("key", key.String()), zap.Int("bytes", len(data)))
	return s.stored(key, path, int64(len(data)), true), nil
}

func (s *FilesystemStore) Stat(ctx context.Context, key model.ContentKey) (model.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return model.StoredFile{}, err
	}

	path, err := s.path(key)
	if err != nil {
		return model.StoredFile{}, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.StoredFile{}, &StorageError{Op: "stat", Key: key, Err: ErrNotFound}
	}
	if err != nil {
		return model.StoredFile{}, &StorageError{Op: "stat", Key: key, Err: err}
	}
	return s.stored(key, path, info.Size(), false), nil
}

func (s *FilesystemStore) Open(ctx context.Context, key model.ContentKey) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &StorageError{Op: "open", Key: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &StorageError{Op: "open", Key: key, Err: err}
	}
	return f, nil
}

func (s *FilesystemStore) writeTemp(data []byte) (string, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func (s *FilesystemStore) path(key model.ContentKey) (string, error) {
	k := key.String()
	if k == "" || k == "." || k == ".." || strings.HasPrefix(k, ".") ||
		strings.ContainsAny(k, `/\`) || strings.Contains(k, "..") {
		return "", &StorageError{Op: "resolve", Key: key, Err: ErrInvalidKey}
	}
	return filepath.Join(s.dir, k), nil
}

func (s *FilesystemStore) stored(key model.ContentKey, path string, size int64, created bool) model.StoredFile {
	return model.StoredFile{Key: key, Path: path, Size: size, Created: created}
}
