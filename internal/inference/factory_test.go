package inference

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/imgclass/internal/config"
	"github.com/agenthands/imgclass/internal/core/model"
)

func TestNewClientProviders(t *testing.T) {
	for _, provider := range []string{"redis", "http", "openai", "ollama", "claude", "REDIS"} {
		cfg := config.Default().Inference
		cfg.Provider = provider
		cfg.HTTP.URL = "http://localhost:5000/predict"
		cfg.LLM.Model = "some-model"
		cfg.LLM.APIKey = "key"

		c, err := NewClient(context.Background(), cfg, &MockOpener{}, nil)
		require.NoError(t, err, provider)
		require.NotNil(t, c, provider)

		if closer, ok := c.(io.Closer); ok {
			closer.Close()
		}
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := config.Default().Inference
	cfg.Provider = "tarot"

	_, err := NewClient(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported inference provider")
}

func TestWithTimeout(t *testing.T) {
	mock := &MockClient{Block: true}
	c := WithTimeout(mock, "mock", 20*time.Millisecond)

	_, err := c.Predict(context.Background(), model.StoredFile{Key: "k.jpg"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	var ie *InferenceError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "mock", ie.Provider)
}

func TestWithTimeoutPassesThrough(t *testing.T) {
	mock := &MockClient{Result: model.PredictionResult{Label: "cat", Score: 0.4}}
	c := WithTimeout(mock, "mock", time.Second)

	res, err := c.Predict(context.Background(), model.StoredFile{Key: "k.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "cat", res.Label)

	boom := errors.New("boom")
	mock.Err = boom
	_, err = c.Predict(context.Background(), model.StoredFile{Key: "k.jpg"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestWithTimeoutZeroIsIdentity(t *testing.T) {
	mock := &MockClient{}
	assert.Same(t, Client(mock), WithTimeout(mock, "mock", 0))
}
