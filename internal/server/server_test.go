// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/models"
)

type stubProcessor struct {
	reply models.Reply
	last  models.IncomingMessage
	calls int
}

func (s *stubProcessor) ProcessMessage(ctx context.Context, msg models.IncomingMessage) models.Reply {
	s.calls++
	s.last = msg
	return s.reply
}

func newTestServer(reply models.Reply) (*Server, *stubProcessor) {
	processor := &stubProcessor{reply: reply}
	srv := New(&Config{
		AppName:       "campus-assist",
		ListenAddress: ":0",
		ShutdownGrace: time.Second,
	}, processor, nil, logger.Nop())
	return srv, processor
}

func postWebhook(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestWebhookReturnsReply(t *testing.T) {
	srv, processor := newTestServer(models.Reply{Text: "Enrollment opens September 1.", QualityScore: 0.85})

	rec := postWebhook(t, srv, `{
		"sessionId": "sess-1",
		"senderKey": "sender-hash",
		"text": "when does enrollment open",
		"language": "en"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var reply models.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "Enrollment opens September 1.", reply.Text)
	assert.Equal(t, 0.85, reply.QualityScore)

	assert.Equal(t, "sess-1", processor.last.SessionID)
	assert.Equal(t, "when does enrollment open", processor.last.Text)
	assert.Equal(t, "en", processor.last.Language)
}

func TestWebhookThrottledReply(t *testing.T) {
	srv, _ := newTestServer(models.Reply{Text: "slow down", Fallback: true, RetryAfter: 42})

	rec := postWebhook(t, srv, `{"sessionId": "s", "senderKey": "k", "text": "hi"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestWebhookValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing text", `{"sessionId": "s", "senderKey": "k"}`},
		{"empty text", `{"sessionId": "s", "senderKey": "k", "text": ""}`},
		{"unknown field", `{"sessionId": "s", "senderKey": "k", "text": "hi", "extra": true}`},
		{"bad language", `{"sessionId": "s", "senderKey": "k", "text": "hi", "language": "xx"}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, processor := newTestServer(models.Reply{Text: "never"})

			rec := postWebhook(t, srv, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, processor.calls, "invalid payloads never reach the pipeline")
		})
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(models.Reply{})

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(models.Reply{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
