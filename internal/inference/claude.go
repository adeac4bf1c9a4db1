package inference

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/agenthands/imgclass/internal/core/model"
)

const claudeProvider = "claude"

type ClaudeClient struct {
	client *anthropic.Client
	opts   VisionOptions
	images Opener
}

func NewClaudeClient(apiKey string, baseURL string, opts VisionOptions, images Opener) *ClaudeClient {
	var clientOpts []anthropic.ClientOption
	if baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(baseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(apiKey, clientOpts...),
		opts:   opts,
		images: images,
	}
}

func (c *ClaudeClient) Predict(ctx context.Context, file model.StoredFile) (model.PredictionResult, error) {
	img, err := prepareImage(ctx, c.images, file.Key, c.opts.MaxImageSide)
	if err != nil {
		return model.PredictionResult{}, newError(claudeProvider, file.Key, err)
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.opts.Model),
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewImageMessageContent(anthropic.MessageContentSource{
						Type:      anthropic.MessagesContentSourceTypeBase64,
						MediaType: img.MIMEType,
						Data:      base64.StdEncoding.EncodeToString(img.Data),
					}),
					anthropic.NewTextMessageContent(visionPrompt(c.opts.Labels)),
				},
			},
		},
		MaxTokens: 200,
	})
	if err != nil {
		return model.PredictionResult{}, newError(claudeProvider, file.Key, err)
	}

	for _, content := range resp.Content {
		if content.Text != nil {
			res, err := parseVisionResponse(*content.Text)
			if err != nil {
				return model.PredictionResult{}, newError(claudeProvider, file.Key, err)
			}
			return res, nil
		}
	}
	return model.PredictionResult{}, newError(claudeProvider, file.Key, fmt.Errorf("%w: no response content", ErrMalformed))
}
