// Package llm talks to an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"learnstudio/internal/config"
	"learnstudio/internal/model"

	"github.com/sashabaranov/go-openai"
)

// Error kinds reported to API clients
const (
	KindModelNotFound = "model_not_found"
	KindAuth          = "auth_error"
	KindRateLimit     = "rate_limit"
	KindService       = "service_error"
)

// ProviderError is a classified failure from the chat provider
type ProviderError struct {
	Kind string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("chat provider %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Classify maps a provider status code onto an error kind
func Classify(err error) *ProviderError {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	kind := KindService
	switch status {
	case http.StatusNotFound:
		kind = KindModelNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusTooManyRequests:
		kind = KindRateLimit
	}
	return &ProviderError{Kind: kind, Err: err}
}

// Client completes conversations with a fixed model and sampling settings
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func New(cfg config.ChatConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

// Complete sends the system prompt followed by messages and returns the reply text.
// Failures come back as *ProviderError and are never retried here.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []model.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)+1),
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == model.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Kind: KindService, Err: errors.New("empty completion")}
	}
	return resp.Choices[0].Message.Content, nil
}
