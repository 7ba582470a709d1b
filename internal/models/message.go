// internal/models/message.go
package models

import "time"

// IncomingMessage is one inbound message from the transport layer.
// SenderKey arrives pre-hashed; the pipeline never sees raw identities.
// Immutable once received.
type IncomingMessage struct {
	SessionID string `json:"sessionId"`
	SenderKey string `json:"senderKey"`
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"`
}

// RetrievedPassage is one knowledge-base chunk returned by the vector
// index, produced fresh per request and never persisted by the pipeline.
type RetrievedPassage struct {
	DocumentID string  `json:"documentId"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"` // similarity in [0,1]
	Provenance string  `json:"provenance"`
}

// GenerationResult carries the provider output or its failure.
// Degraded is true iff every attempt failed.
type GenerationResult struct {
	Text     string `json:"text"`
	ErrCode  string `json:"errCode,omitempty"`
	Attempts int    `json:"attempts"`
	Degraded bool   `json:"degraded"`
}

// Reply is the terminal artifact returned to the caller. Never mutated
// after creation.
type Reply struct {
	Text         string  `json:"text"`
	QualityScore float64 `json:"qualityScore"`
	Degraded     bool    `json:"degraded"`
	Fallback     bool    `json:"fallback"`
	RetryAfter   int     `json:"retryAfterSeconds,omitempty"`
}

// InteractionRecord is the persisted trace of one exchange.
type InteractionRecord struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	SenderKey     string    `json:"senderKey"`
	Message       string    `json:"message"`
	ReplyText     string    `json:"replyText"`
	Language      string    `json:"language"`
	Intent        string    `json:"intent"`
	Sentiment     string    `json:"sentiment"`
	PassagesUsed  []string  `json:"passagesUsed"`
	PromptSummary string    `json:"promptSummary"`
	QualityScore  float64   `json:"qualityScore"`
	Degraded      bool      `json:"degraded"`
	Fallback      bool      `json:"fallback"`
	CreatedAt     time.Time `json:"createdAt"`
}
