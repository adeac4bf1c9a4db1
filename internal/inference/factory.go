package inference

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/imgclass/internal/config"
)

// NewClient builds the configured provider, bounded by cfg.Timeout. Vision
// providers read the image bytes back through images.
func NewClient(ctx context.Context, cfg config.InferenceConfig, images Opener, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(cfg.Provider)
	vision := VisionOptions{
		Model:        cfg.LLM.Model,
		Labels:       cfg.LLM.Labels,
		MaxImageSide: cfg.LLM.MaxImageSide,
	}

	var c Client
	switch provider {
	case "redis":
		c = NewRedisClient(cfg.Redis, logger)

	case "http":
		c = NewHTTPClient(cfg.HTTP.URL, logger)

	case "openai":
		c = NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, vision, images)

	case "ollama":
		oc := NewOllamaClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, vision, images)
		logger.Info("Using Ollama through its OpenAI-compatible API", zap.String("model", vision.Model))
		c = oc

	case "gemini":
		gc, err := NewGeminiClient(ctx, cfg.LLM.APIKey, vision, images)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		c = gc

	case "claude":
		c = NewClaudeClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, vision, images)

	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", provider)
	}

	logger.Info("Inference client ready",
		zap.String("provider", provider),
		zap.Duration("timeout", cfg.TimeoutDuration()))
	return WithTimeout(c, provider, cfg.TimeoutDuration()), nil
}
