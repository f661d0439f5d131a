package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnstudio/internal/config"
	"learnstudio/internal/model"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.ChatConfig{
		APIKey:      "key",
		BaseURL:     srv.URL,
		Model:       "test-model",
		MaxTokens:   64,
		Temperature: 0.5,
	})
}

func TestClient_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "What do you think?"},
			}},
		})
	})

	reply, err := client.Complete(context.Background(), "be socratic", []model.ChatMessage{
		{Role: model.ChatRoleUser, Content: "hi"},
		{Role: model.ChatRoleAssistant, Content: "hello"},
		{Role: model.ChatRoleUser, Content: "what is a tensor?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "What do you think?", reply)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "be socratic", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[2].Role)
	assert.Equal(t, "what is a tensor?", got.Messages[3].Content)
}

func TestClient_CompleteClassifiesErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   string
	}{
		{status: http.StatusNotFound, kind: KindModelNotFound},
		{status: http.StatusUnauthorized, kind: KindAuth},
		{status: http.StatusForbidden, kind: KindAuth},
		{status: http.StatusTooManyRequests, kind: KindRateLimit},
		{status: http.StatusInternalServerError, kind: KindService},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error"}}`))
			})

			_, err := client.Complete(context.Background(), "sys", []model.ChatMessage{{Role: model.ChatRoleUser, Content: "hi"}})

			var perr *ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, 1, calls, "provider errors are not retried")
		})
	}
}

func TestClient_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "sys", nil)
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindService, perr.Kind)
}

func TestClassify_TransportError(t *testing.T) {
	assert.Equal(t, KindService, Classify(errors.New("dial tcp: refused")).Kind)
}
