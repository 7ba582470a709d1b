// internal/server/handler.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"campus-assist/internal/models"
)

// MessageProcessor is the pipeline entry point the transport calls.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, msg models.IncomingMessage) models.Reply
}

// webhookSchema validates the inbound payload before it reaches the
// pipeline. senderKey arrives pre-hashed from the transport gateway.
const webhookSchema = `{
	"type": "object",
	"properties": {
		"sessionId": {"type": "string", "minLength": 1},
		"senderKey": {"type": "string", "minLength": 1},
		"text": {"type": "string", "minLength": 1, "maxLength": 8000},
		"language": {"type": "string", "enum": ["en", "tr", "ar", "ru", ""]}
	},
	"required": ["sessionId", "senderKey", "text"],
	"additionalProperties": false
}`

var webhookSchemaLoader = gojsonschema.NewStringLoader(webhookSchema)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}

	result, err := gojsonschema.Validate(webhookSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "payload validation failed", nil)
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		s.writeError(w, http.StatusBadRequest, "payload validation failed", details)
		return
	}

	var msg models.IncomingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid payload", nil)
		return
	}

	start := time.Now()
	reply := s.processor.ProcessMessage(r.Context(), msg)

	if s.obs != nil {
		s.obs.RecordMessageProcessed(r.Context(), replyOutcome(reply))
		s.obs.RecordMessageDuration(r.Context(), time.Since(start), replyOutcome(reply))
	}

	status := http.StatusOK
	if reply.RetryAfter > 0 {
		status = http.StatusTooManyRequests
		w.Header().Set("Retry-After", strconv.Itoa(reply.RetryAfter))
	}
	s.writeJSON(w, status, reply)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.config.AppName,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string, details []string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func replyOutcome(reply models.Reply) string {
	switch {
	case reply.RetryAfter > 0:
		return "throttled"
	case reply.Fallback:
		return "fallback"
	case reply.Degraded:
		return "degraded"
	default:
		return "ok"
	}
}
