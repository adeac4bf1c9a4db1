package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agenthands/imgclass/internal/core/model"
)

type timeoutClient struct {
	next     Client
	provider string
	timeout  time.Duration
}

// WithTimeout bounds every Predict call on c. Deadline expiry surfaces as an
// InferenceError wrapping ErrTimeout.
func WithTimeout(c Client, provider string, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{next: c, provider: provider, timeout: d}
}

func (t *timeoutClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.next.Predict(ctx, file)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.PredictionResult{}, &InferenceError{
			Provider: t.provider,
			Key:      file.Key,
			Err:      fmt.Errorf("%w after %s", ErrTimeout, t.timeout),
		}
	}
	return res, err
}

func (t *timeoutClient) Ping(ctx context.Context) error {
	if p, ok := t.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (t *timeoutClient) Close() error {
	if c, ok := t.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
