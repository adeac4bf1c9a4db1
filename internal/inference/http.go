package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/core/model"
)

const httpProvider = "http"

type httpRequest struct {
	ImageName string `json:"image_name"`
}

// HTTPClient posts the stored file name to a model service that shares the
// upload folder.
type HTTPClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPClient(url string, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		url:    url,
		client: &http.Client{Transport: http.DefaultTransport},
		logger: logger,
	}
}

func (c *HTTPClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	body, err := json.Marshal(httpRequest{ImageName: file.Key.String()})
	if err != nil {
		return model.PredictionResult{}, newError(httpProvider, file.Key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.PredictionResult{}, newError(httpProvider, file.Key, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return model.PredictionResult{}, newError(httpProvider, file.Key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.PredictionResult{}, newError(httpProvider, file.Key,
			fmt.Errorf("%w: %s: %s", ErrRejected, resp.Status, bytes.TrimSpace(snippet)))
	}

	var wp wirePrediction
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&wp); err != nil {
		return model.PredictionResult{}, newError(httpProvider, file.Key, fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	res, err := wp.result()
	if err != nil {
		return model.PredictionResult{}, newError(httpProvider, file.Key, err)
	}

	c.logger.Debug("Prediction received",
		zap.String("key", file.Key.String()),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
