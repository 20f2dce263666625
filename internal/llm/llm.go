package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	// Generate sends prompt to the model and returns its text answer,
	// bounded to maxTokens new tokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Provider defaults used when LLM_BASE_URL or LLM_MODEL are left empty.
const (
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
	HuggingFaceModel   = "mistralai/Mistral-7B-Instruct-v0.3"
	OpenAIBaseURL      = "https://api.openai.com/v1"
	OpenAIModel        = openai.ChatModelGPT4oMini
	GeminiModel        = "gemini-2.5-flash"
)

// IsRetryable reports whether err is worth another attempt. Client errors
// such as a bad token or an unknown model are permanent; rate limits and
// server errors are not.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.StatusCode)
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return retryableStatus(genaiErr.Code)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
