package inference

import (
	"bytes"
	"context"
	"io"

	"github.com/agenthands/imgclass/internal/core/model"
)

type MockOpener struct {
	Files map[model.ContentKey][]byte
	Err   error
}

func (m *MockOpener) Open(ctx context.Context, key model.ContentKey) (io.ReadCloser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	data, ok := m.Files[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type MockClient struct {
	Result model.PredictionResult
	Err    error
	Block  bool
	Calls  int
}

func (m *MockClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	m.Calls++
	if m.Block {
		<-ctx.Done()
		return model.PredictionResult{}, ctx.Err()
	}
	if m.Err != nil {
		return model.PredictionResult{}, m.Err
	}
	return m.Result, nil
}
