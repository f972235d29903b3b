package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

// Client abstracts a multimodal model that reviews a product photo.
// Implementations must be safe for concurrent use.
type Client interface {
	// AnalyzeImage sends the product analysis prompt together with the image
	// and returns the model's free-text report.
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
	// SourceName returns a short provider label stored with each scan (e.g. "Gemini").
	SourceName() string
}
