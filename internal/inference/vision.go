package inference

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/imgclass/internal/core/model"
)

// VisionOptions configures the providers that send the image itself to a
// multimodal model.
type VisionOptions struct {
	Model        string
	Labels       []string
	MaxImageSide int
}

func visionPrompt(labels []string) string {
	var b strings.Builder
	b.WriteString("Classify the main subject of this image.")
	if len(labels) > 0 {
		fmt.Fprintf(&b, " Choose exactly one label from this list: %s.", strings.Join(labels, ", "))
	}
	b.WriteString(` Respond with ONLY a JSON object of the form {"prediction": "<label>", "score": <confidence between 0 and 1>}. Do not output any other text.`)
	return b.String()
}

// parseVisionResponse pulls the first {...} object out of a model reply,
// tolerating markdown fences and chatter around it.
func parseVisionResponse(text string) (model.PredictionResult, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return model.PredictionResult{}, fmt.Errorf("%w: no JSON object in model reply %q", ErrMalformed, truncate(text, 200))
	}

	var wp wirePrediction
	if err := json.Unmarshal([]byte(text[start:end+1]), &wp); err != nil {
		return model.PredictionResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return wp.result()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
