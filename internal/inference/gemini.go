package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/agenthands/imgclass/internal/core/model"
)

const geminiProvider = "gemini"

type GeminiClient struct {
	client *genai.Client
	opts   VisionOptions
	images Opener
}

func NewGeminiClient(ctx context.Context, apiKey string, opts VisionOptions, images Opener) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client: client,
		opts:   opts,
		images: images,
	}, nil
}

func (c *GeminiClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	img, err := prepareImage(ctx, c.images, file.Key, c.opts.MaxImageSide)
	if err != nil {
		return model.PredictionResult{}, newError(geminiProvider, file.Key, err)
	}

	gm := c.client.GenerativeModel(c.opts.Model)
	gm.ResponseMIMEType = "application/json"

	resp, err := gm.GenerateContent(ctx, genai.ImageData(img.Format, img.Data), genai.Text(visionPrompt(c.opts.Labels)))
	if err != nil {
		return model.PredictionResult{}, newError(geminiProvider, file.Key, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.PredictionResult{}, newError(geminiProvider, file.Key, fmt.Errorf("%w: no response candidates or content", ErrMalformed))
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	res, err := parseVisionResponse(text.String())
	if err != nil {
		return model.PredictionResult{}, newError(geminiProvider, file.Key, err)
	}
	return res, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
