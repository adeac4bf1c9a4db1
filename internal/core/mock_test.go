package core

import (
	"context"
	"io"
	"sync"

	"github.com/agenthands/imgclass/internal/core/model"
	"github.com/agenthands/imgclass/internal/store"
)

type MockStore struct {
	mu    sync.Mutex
	Files map[model.ContentKey][]byte
	Puts  int
	Err   error
}

func NewMockStore() *MockStore {
	return &MockStore{Files: make(map[model.ContentKey][]byte)}
}

func (m *MockStore) Put(ctx context.Context, key model.ContentKey, data []byte) (model.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts++
	if m.Err != nil {
		return model.StoredFile{}, &store.StorageError{Op: "write", Key: key, Err: m.Err}
	}
	if existing, ok := m.Files[key]; ok {
		return model.StoredFile{Key: key, Path: "mem/" + key.String(), Size: int64(len(existing))}, nil
	}
	m.Files[key] = append([]byte(nil), data...)
	return model.StoredFile{Key: key, Path: "mem/" + key.String(), Size: int64(len(data)), Created: true}, nil
}

func (m *MockStore) Stat(ctx context.Context, key model.ContentKey) (model.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[key]
	if !ok {
		return model.StoredFile{}, &store.StorageError{Op: "stat", Key: key, Err: store.ErrNotFound}
	}
	return model.StoredFile{Key: key, Path: "mem/" + key.String(), Size: int64(len(data))}, nil
}

func (m *MockStore) Open(ctx context.Context, key model.ContentKey) (io.ReadCloser, error) {
	return nil, store.ErrNotFound
}

type MockInference struct {
	Result model.PredictionResult
	Err    error
	Seen   []model.StoredFile
}

func (m *MockInference) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	m.Seen = append(m.Seen, file)
	if m.Err != nil {
		return model.PredictionResult{}, m.Err
	}
	return m.Result, nil
}
