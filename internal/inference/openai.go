package inference

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/agenthands/imgclass/internal/core/model"
)

// OpenAIClient classifies through any OpenAI-compatible chat endpoint that
// accepts image parts (OpenAI itself, Ollama's /v1).
type OpenAIClient struct {
	client   *openai.Client
	provider string
	opts     VisionOptions
	images   Opener
}

func NewOpenAIClient(apiKey string, baseURL string, opts VisionOptions, images Opener) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIClient{
		client:   client,
		provider: "openai",
		opts:     opts,
		images:   images,
	}
}

func (c *OpenAIClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	img, err := prepareImage(ctx, c.images, file.Key, c.opts.MaxImageSide)
	if err != nil {
		return model.PredictionResult{}, newError(c.provider, file.Key, err)
	}

	dataURL := "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)

	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: visionPrompt(c.opts.Labels),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return model.PredictionResult{}, newError(c.provider, file.Key, err)
	}
	if len(resp.Choices) == 0 {
		return model.PredictionResult{}, newError(c.provider, file.Key, fmt.Errorf("%w: no response choices", ErrMalformed))
	}

	res, err := parseVisionResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return model.PredictionResult{}, newError(c.provider, file.Key, err)
	}
	return res, nil
}

// NewOllamaClient points the OpenAI client at Ollama's compatible API.
func NewOllamaClient(apiKey string, baseURL string, opts VisionOptions, images Opener) *OpenAIClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
	}
	if apiKey == "" {
		apiKey = "ollama" // ignored by Ollama, required by the client
	}

	c := NewOpenAIClient(apiKey, baseURL, opts, images)
	c.provider = "ollama"
	return c
}
