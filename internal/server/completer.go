package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	temperature = 0.7
	maxTokens   = 1000
)

// Completer produces a single reply for a user message.
type Completer interface {
	Complete(ctx context.Context, model, message string) (string, error)
}

// OpenAICompleter calls an OpenAI-compatible chat completions API.
type OpenAICompleter struct {
	client *openai.Client
}

func NewOpenAICompleter(apiKey, baseURL string) *OpenAICompleter {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(clientConfig)}
}

func (c *OpenAICompleter) Complete(ctx context.Context, model, message string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// upstreamStatus extracts the HTTP status from a go-openai error, or 0.
func upstreamStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// describeUpstreamError turns the final upstream failure into the message sent
// to clients. The wording keeps the markers the widget classifies on.
func describeUpstreamError(err error, attempts int) string {
	status := upstreamStatus(err)
	raw := err.Error()
	lower := strings.ToLower(raw)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout"):
		return fmt.Sprintf("upstream timeout: %s", raw)
	case status == http.StatusUnauthorized || strings.Contains(lower, "unauthorized"):
		return fmt.Sprintf("upstream authentication failed (401), check the API key: %s", raw)
	case status == http.StatusTooManyRequests || strings.Contains(lower, "rate limit"):
		return fmt.Sprintf("upstream rate limit exceeded (429), please retry later: %s", raw)
	case status >= 500:
		return fmt.Sprintf("upstream server error (%d): %s", status, raw)
	default:
		return fmt.Sprintf("upstream call failed after %d attempts: %s", attempts, raw)
	}
}
