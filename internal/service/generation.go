package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/recapbot/recapbot/internal/config"
	"github.com/recapbot/recapbot/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Generator is the remote generation capability.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// OpenAIGenerator talks to any OpenAI-compatible chat-completion endpoint.
// Each group brings its own API key, so the client is built per request.
type OpenAIGenerator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAIGenerator(baseURL, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	cfg := openai.DefaultConfig(apiKey)
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	cfg.HTTPClient = g.httpClient
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", classifyGenerationError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyGenerationError maps transport and API failures onto the stable
// domain taxonomy; unrecognized failures pass through as-is.
func classifyGenerationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", domain.ErrGenerationNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "unauthorized"):
		return fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
	case strings.Contains(msg, "permission") || strings.Contains(msg, "forbidden"):
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "connection reset"):
		return fmt.Errorf("%w: %v", domain.ErrGenerationNetwork, err)
	}

	return err
}
