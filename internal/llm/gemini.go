package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient builds a Gemini client. baseURL overrides the API endpoint
// and is empty in production.
func NewGeminiClient(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration) (*GeminiClient, error) {
	if model == "" {
		model = GeminiModel
	}
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

// Model returns the model name sent with each request.
func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil gemini client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var cfg *genai.GenerateContentConfig
	if maxTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(maxTokens)}
	}
	resp, err := c.client.Models.GenerateContent(reqCtx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
