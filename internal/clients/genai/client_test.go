// internal/clients/genai/client_test.go
package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assist/internal/common/errors"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/pipeline/promptbuild"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&Config{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		Model:       "campus-chat",
		Temperature: 0.3,
		Timeout:     time.Second,
	}, logger.Nop())
}

func contextPrompt() *promptbuild.Prompt {
	return &promptbuild.Prompt{
		Segments: []promptbuild.Segment{
			{Kind: promptbuild.SegmentPersona, Text: "You are a campus assistant."},
			{Kind: promptbuild.SegmentPassage, Text: "[Source: enrollment.md]\nEnrollment opens September 1."},
			{Kind: promptbuild.SegmentQuery, Text: "when does enrollment open"},
		},
		Budget: 4000,
	}
}

func TestClientComplete(t *testing.T) {
	var gotReq chatRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "Enrollment opens September 1."}}]}`))
	})

	text, err := client.Complete(context.Background(), contextPrompt(), 500)
	require.NoError(t, err)
	assert.Equal(t, "Enrollment opens September 1.", text)

	assert.Equal(t, "campus-chat", gotReq.Model)
	assert.Equal(t, 500, gotReq.MaxTokens)
	assert.Equal(t, 0.3, gotReq.Temperature)

	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[0].Content, "campus assistant")
	assert.Contains(t, gotReq.Messages[0].Content, "enrollment.md")
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "when does enrollment open", gotReq.Messages[1].Content)
}

func TestClientCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantCode      errors.ErrorCode
		wantRetryable bool
	}{
		{"bad request rejected", http.StatusBadRequest, errors.ErrCodeGenerationRejected, false},
		{"throttled is transient", http.StatusTooManyRequests, errors.ErrCodeGenerationFailed, true},
		{"server error is transient", http.StatusBadGateway, errors.ErrCodeGenerationFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": "boom"}`))
			})

			_, err := client.Complete(context.Background(), contextPrompt(), 500)
			require.Error(t, err)

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
		})
	}
}

func TestClientCompleteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"choices": []}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(&Config{
		BaseURL: server.URL,
		Model:   "campus-chat",
		Timeout: 50 * time.Millisecond,
	}, logger.Nop())

	_, err := client.Complete(context.Background(), contextPrompt(), 500)
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeGenerationTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestClientEmbed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "when does enrollment open", req.Input)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	})

	vec, err := client.Embed(context.Background(), "when does enrollment open")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestClientEmbedServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Embed(context.Background(), "query")
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeEmbeddingFailed, stdErr.Code)
}
