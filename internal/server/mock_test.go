package server

import (
	"context"
	"sync"

	"github.com/agenthands/imgclass/internal/core/model"
)

type MockInference struct {
	mu      sync.Mutex
	Result  model.PredictionResult
	Err     error
	PingErr error
	Seen    []model.StoredFile
}

func (m *MockInference) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Seen = append(m.Seen, file)
	if m.Err != nil {
		return model.PredictionResult{}, m.Err
	}
	return m.Result, nil
}

func (m *MockInference) Ping(ctx context.Context) error {
	return m.PingErr
}

// plainInference has no Ping, so health cannot probe it.
type plainInference struct{}

func (plainInference) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	return model.PredictionResult{Label: "cat", Score: 0.5}, nil
}
