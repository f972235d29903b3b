package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"verdix/llm"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// errorEnvelope is the body OpenAI sends with non-200 statuses
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func apiError(status int, body []byte) error {
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		return fmt.Errorf("openai: status %d: %s (%s)", status, env.Error.Message, env.Error.Type)
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return fmt.Errorf("openai: status %d: %s", status, body)
}

// Client represents an OpenAI API client
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a new OpenAI client. An empty endpoint means the public API.
func NewClient(apiKey, model, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in saved scans
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// dataURL wraps image bytes in a base64 data URL
func dataURL(imageData []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))
}

// AnalyzeImage analyzes a product photo using OpenAI's vision API
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	reqBody := ChatRequest{
		Model:       c.model,
		Temperature: 0.7,
		MaxTokens:   2048,
		Messages: []Message{
			{
				Role: "user",
				Content: []any{
					TextContent{Type: "text", Text: llm.ProductAnalysisPrompt},
					ImageContent{Type: "image_url", ImageURL: ImageURL{URL: dataURL(imageData, mimeType), Detail: "high"}},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", llm.ErrEmptyResponse)
	}

	switch content := chatResp.Choices[0].Message.Content.(type) {
	case string:
		if content == "" {
			return "", llm.ErrEmptyResponse
		}
		return content, nil
	case []any:
		// array-of-parts form; concatenate the text parts
		var buf bytes.Buffer
		for _, p := range content {
			if m, ok := p.(map[string]any); ok {
				if s, ok := m["text"].(string); ok {
					buf.WriteString(s)
				}
			}
		}
		if buf.Len() == 0 {
			return "", llm.ErrEmptyResponse
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unexpected content type %T: %w", content, llm.ErrEmptyResponse)
	}
}
