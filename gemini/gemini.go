package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"verdix/llm"
)

// DefaultBaseURL is the public Generative Language API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	GenerationConfig generationConfig `json:"generationConfig"`
	Contents         []content        `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// APIError is a non-2xx answer from the API. Body is truncated.
type APIError struct {
	Version string
	Status  int
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini %s: status %d: %s", e.Version, e.Status, e.Body)
}

const maxErrorBody = 512

// Options tunes generation. Zero values fall back to the defaults used by
// the web app: temperature 0.7, topP 0.95, 2048 output tokens.
type Options struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	BaseURL         string
	Timeout         time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	config  generationConfig
	http    *http.Client
}

func NewClient(apiKey, model string, opts Options) *Client {
	cfg := generationConfig{Temperature: 0.7, TopP: 0.95, MaxOutputTokens: 2048}
	if opts.Temperature > 0 {
		cfg.Temperature = opts.Temperature
	}
	if opts.TopP > 0 {
		cfg.TopP = opts.TopP
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		config:  cfg,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []part{{Text: llm.ProductAnalysisPrompt}}
	if len(imageData) > 0 {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(imageData),
			},
		})
	}

	reqBody := geminiRequest{
		GenerationConfig: c.config,
		Contents: []content{
			{
				Role:  "user",
				Parts: parts,
			},
		},
	}

	return c.generateContent(ctx, reqBody)
}

// generateContent posts to v1beta and retries on v1 only when the model is
// unknown to v1beta.
func (c *Client) generateContent(ctx context.Context, body geminiRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	text, err := c.post(ctx, "v1beta", data)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return c.post(ctx, "v1", data)
	}
	return text, err
}

func (c *Client) post(ctx context.Context, version string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, version, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// header rather than ?key= so transport errors never print the key
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", version, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini %s: read response: %w", version, err)
	}
	if resp.StatusCode/100 != 2 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return "", &APIError{Version: version, Status: resp.StatusCode, Body: string(raw)}
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("gemini %s: decode response: %w", version, err)
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked (%s): %w", gr.PromptFeedback.BlockReason, llm.ErrEmptyResponse)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("no candidates: %w", llm.ErrEmptyResponse)
	}
	for _, p := range gr.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	return "", fmt.Errorf("no text in candidate (finish reason %q): %w", gr.Candidates[0].FinishReason, llm.ErrEmptyResponse)
}
