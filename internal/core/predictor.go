package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/core/hasher"
	"github.com/agenthands/imgclass/internal/core/model"
	"github.com/agenthands/imgclass/internal/inference"
	"github.com/agenthands/imgclass/internal/store"
)

// Outcome is a successful prediction plus what it took to get there.
type Outcome struct {
	Response      model.PredictResponse
	Stored        model.StoredFile
	Result        model.PredictionResult
	InferenceTook time.Duration
}

// Predictor runs validate → hash → store → predict for one upload.
type Predictor struct {
	Store      store.UploadStore
	Inference  inference.Client
	Extensions []string
	Logger     *zap.Logger
}

func NewPredictor(st store.UploadStore, client inference.Client, extensions []string, logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{
		Store:      st,
		Inference:  client,
		Extensions: extensions,
		Logger:     logger,
	}
}

// Validate rejects uploads without a name or with a disallowed extension.
func (p *Predictor) Validate(img model.UploadedImage) error {
	if img.Filename == "" {
		return Reject(ErrNoFile)
	}
	if !hasher.Allowed(img.Filename, p.Extensions) {
		return rejectf(ErrUnsupportedType, "%q", hasher.Ext(img.Filename))
	}
	return nil
}

func (p *Predictor) Predict(ctx context.Context, img model.UploadedImage) (Outcome, error) {
	if err := p.Validate(img); err != nil {
		return Outcome{}, err
	}

	key, err := hasher.KeyBytes(img.Filename, img.Data)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to hash upload: %w", err)
	}

	stored, err := p.Store.Put(ctx, key, img.Data)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to store upload: %w", err)
	}

	start := time.Now()
	res, err := p.Inference.Predict(ctx, stored)
	took := time.Since(start)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to predict: %w", err)
	}

	p.Logger.Info("Prediction complete",
		zap.String("image_file_name", key.String()),
		zap.Bool("deduplicated", !stored.Created),
		zap.String("prediction", res.Label),
		zap.Float64("score", res.Score),
		zap.Duration("inference_took", took))

	return Outcome{
		Response:      model.NewPredictResponse(key, res),
		Stored:        stored,
		Result:        res,
		InferenceTook: took,
	}, nil
}
