package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/agenthands/imgclass/internal/core/model"
)

// Client sends a stored upload to a prediction backend.
type Client interface {
	Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error)
}

// Pinger is implemented by clients that can check their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	ErrTimeout   = errors.New("inference timed out")
	ErrMalformed = errors.New("malformed prediction")
	ErrRejected  = errors.New("inference service rejected the request")
)

type InferenceError struct {
	Provider string
	Key      model.ContentKey
	Err      error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference via %s failed for %q: %v", e.Provider, e.Key, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

func newError(provider string, key model.ContentKey, err error) *InferenceError {
	var ie *InferenceError
	if errors.As(err, &ie) {
		return ie
	}
	return &InferenceError{Provider: provider, Key: key, Err: err}
}

// wirePrediction is the result shape shared by the queue worker, the HTTP
// service and the prompt we give vision models.
type wirePrediction struct {
	Prediction *string  `json:"prediction"`
	Score      *float64 `json:"score"`
}

func (w wirePrediction) result() (model.PredictionResult, error) {
	if w.Prediction == nil || strings.TrimSpace(*w.Prediction) == "" {
		return model.PredictionResult{}, fmt.Errorf("%w: missing prediction label", ErrMalformed)
	}
	if w.Score == nil {
		return model.PredictionResult{}, fmt.Errorf("%w: missing score", ErrMalformed)
	}
	score := *w.Score
	if math.IsNaN(score) || score < 0 || score > 1 {
		return model.PredictionResult{}, fmt.Errorf("%w: score %v outside [0,1]", ErrMalformed, score)
	}
	return model.PredictionResult{Label: strings.TrimSpace(*w.Prediction), Score: score}, nil
}
