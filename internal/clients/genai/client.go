// internal/clients/genai/client.go

// Package genai is an HTTP client for an OpenAI-compatible model
// gateway. It backs both the generation provider and the embedding
// provider consumed by the pipeline.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"campus-assist/internal/common/errors"
	commonhttp "campus-assist/internal/common/http"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/pipeline/promptbuild"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	config     *Config
	httpClient *commonhttp.Client
	logger     logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config:     config,
		httpClient: commonhttp.NewClient(config.Timeout),
		logger:     log.WithFields(map[string]interface{}{"client": "genai"}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as one chat turn: every segment before the
// query collapses into the system message, the query becomes the user
// message.
func (c *Client) Complete(ctx context.Context, prompt *promptbuild.Prompt, maxTokens int) (string, error) {
	system, user := splitPrompt(prompt)

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body, err := json.Marshal(chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", errors.NewGenerationRejectedError(err)
	}

	respBody, err := c.post(ctx, "/v1/chat/completions", body, classifyCompletionStatus)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.NewGenerationFailedError(fmt.Errorf("malformed completion response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", errors.NewGenerationFailedError(fmt.Errorf("completion response has no choices"))
	}

	return parsed.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one input text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.config.Model, Input: text})
	if err != nil {
		return nil, errors.NewEmbeddingFailedError(err)
	}

	respBody, err := c.post(ctx, "/v1/embeddings", body, classifyEmbeddingStatus)
	if err != nil {
		return nil, err
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errors.NewEmbeddingFailedError(fmt.Errorf("malformed embedding response: %w", err))
	}
	if len(parsed.Data) == 0 {
		return nil, errors.NewEmbeddingFailedError(fmt.Errorf("embedding response has no data"))
	}

	return parsed.Data[0].Embedding, nil
}

// post sends the request and maps failures through the given status
// classifier so callers get retryability verdicts, not raw HTTP errors.
func (c *Client) post(ctx context.Context, path string, body []byte, classify func(status int, body string) error) ([]byte, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + path

	resp, err := c.httpClient.PostJSON(ctx, url, body, c.config.APIKey)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, classify(statusTimeout, err.Error())
		}
		return nil, classify(0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(0, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("model gateway returned an error", map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
		})
		return nil, classify(resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// statusTimeout marks a client-side timeout for the status classifiers.
const statusTimeout = -1

// classifyCompletionStatus maps an HTTP failure to the generation error
// taxonomy. 4xx request errors are rejected and never retried; timeouts,
// connection errors, 429 and 5xx are transient.
func classifyCompletionStatus(status int, body string) error {
	switch {
	case status == statusTimeout:
		return errors.NewGenerationTimeoutError()
	case status == http.StatusTooManyRequests:
		return errors.NewGenerationFailedError(fmt.Errorf("provider throttled: %s", body))
	case status >= 400 && status < 500:
		return errors.NewGenerationRejectedError(fmt.Errorf("status %d: %s", status, body))
	default:
		return errors.NewGenerationFailedError(fmt.Errorf("status %d: %s", status, body))
	}
}

func classifyEmbeddingStatus(status int, body string) error {
	if status == statusTimeout {
		return errors.NewEmbeddingFailedError(fmt.Errorf("embedding request timed out"))
	}
	return errors.NewEmbeddingFailedError(fmt.Errorf("status %d: %s", status, body))
}

func isTimeout(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}

func splitPrompt(prompt *promptbuild.Prompt) (system, user string) {
	var sys []string
	for _, s := range prompt.Segments {
		if s.Kind == promptbuild.SegmentQuery {
			user = s.Text
			continue
		}
		sys = append(sys, s.Text)
	}
	return strings.Join(sys, "\n\n"), user
}
