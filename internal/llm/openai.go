package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API. The Hugging
// Face inference router speaks the same protocol, so both providers share it.
type OpenAIClient struct {
	model   openai.ChatModel
	client  *openai.Client
	timeout time.Duration
}

const defaultChatTimeout = 120 * time.Second

// NewOpenAIClient builds a client for baseURL. An empty apiKey is accepted;
// the endpoint rejects the first request instead.
func NewOpenAIClient(apiKey, baseURL string, model openai.ChatModel, timeout time.Duration, opts ...option.RequestOption) *OpenAIClient {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	if model == "" {
		model = OpenAIModel
	}
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	// Retries are handled by RetryingClient.
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}, opts...)
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:   model,
		client:  &cli,
		timeout: timeout,
	}
}

// NewHuggingFaceClient targets the Hugging Face router with an HF token.
func NewHuggingFaceClient(token, baseURL, model string, timeout time.Duration, opts ...option.RequestOption) *OpenAIClient {
	if baseURL == "" {
		baseURL = HuggingFaceBaseURL
	}
	if model == "" {
		model = HuggingFaceModel
	}
	return NewOpenAIClient(token, baseURL, openai.ChatModel(model), timeout, opts...)
}

// Model returns the model name sent with each request.
func (c *OpenAIClient) Model() string {
	return string(c.model)
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: buildMessages(prompt),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
