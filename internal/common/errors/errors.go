// Package errors provides standardized error handling for the message pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	ErrCodeRetrievalUnavailable ErrorCode = "RETRIEVAL_UNAVAILABLE"
	ErrCodeEmbeddingFailed      ErrorCode = "EMBEDDING_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"

	ErrCodePromptQueryTooLarge ErrorCode = "PROMPT_QUERY_TOO_LARGE"

	ErrCodeGenerationTimeout   ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationRejected  ErrorCode = "GENERATION_REJECTED"
	ErrCodeGenerationExhausted ErrorCode = "GENERATION_EXHAUSTED"

	ErrCodeLowQualityReply ErrorCode = "LOW_QUALITY_REPLY"

	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	ErrCodeRecorderQueueFull  ErrorCode = "RECORDER_QUEUE_FULL"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewRateLimitExceededError creates the user-visible throttle error. The
// retry-after duration travels in Metadata so transports can surface it.
func NewRateLimitExceededError(senderKey string, retryAfter time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Sender exceeded the message rate limit",
		Details:   fmt.Sprintf("senderKey: %s", senderKey),
		Retryable: false,
		Metadata: map[string]interface{}{
			"retryAfterSeconds": int(retryAfter.Seconds()),
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewRetrievalUnavailableError creates a retryable vector index error.
// The pipeline recovers locally by switching to no-context mode.
func NewRetrievalUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalUnavailable,
		Message:   "Vector index unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmbeddingFailedError creates a retryable embedding provider error.
func NewEmbeddingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingFailed,
		Message:   "Query embedding failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable retrieval timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Vector index query timeout",
		Details:   "search exceeded the retrieval timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPromptQueryTooLargeError creates a non-retryable assembler error.
// This signals misconfiguration and is logged loudly.
func NewPromptQueryTooLargeError(querySize, budget int) *StandardError {
	return &StandardError{
		Code:      ErrCodePromptQueryTooLarge,
		Message:   "Current query does not fit the prompt budget",
		Details:   fmt.Sprintf("querySize: %d, budget: %d", querySize, budget),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a retryable generation timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generation provider timeout",
		Details:   "call exceeded the generation timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a retryable generation provider error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Generation provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationRejectedError creates a non-retryable malformed-request error.
func NewGenerationRejectedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationRejected,
		Message:   "Generation provider rejected the request",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationExhaustedError marks all generation attempts spent. The
// caller must substitute a fallback reply; this never reaches the user.
func NewGenerationExhaustedError(attempts int, lastErr error) *StandardError {
	details := fmt.Sprintf("attempts: %d", attempts)
	if lastErr != nil {
		details = fmt.Sprintf("attempts: %d, lastError: %s", attempts, lastErr.Error())
	}
	return &StandardError{
		Code:      ErrCodeGenerationExhausted,
		Message:   "All generation attempts failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLowQualityReplyError records a reply discarded by the quality gate.
func NewLowQualityReplyError(score, threshold float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeLowQualityReply,
		Message:   "Generated reply below quality threshold",
		Details:   fmt.Sprintf("score: %.2f, threshold: %.2f", score, threshold),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailureError creates a retryable interaction store error.
// Logged only; never affects the reply.
func NewPersistenceFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailure,
		Message:   "Interaction record write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecorderQueueFullError records a dropped interaction record.
func NewRecorderQueueFullError(queueSize int) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecorderQueueFull,
		Message:   "Recorder queue full, record dropped",
		Details:   fmt.Sprintf("queueSize: %d", queueSize),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable escalation notifier error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Escalation notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRetrievalUnavailable,
		ErrCodeEmbeddingFailed,
		ErrCodeGenerationFailed,
		ErrCodePersistenceFailure,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeGenerationTimeout:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "RATE_LIMIT"):
		return "ADMISSION"
	case strings.Contains(codeStr, "RETRIEVAL") || strings.Contains(codeStr, "EMBEDDING") || strings.Contains(codeStr, "SEARCH"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "PROMPT"):
		return "PROMPT"
	case strings.Contains(codeStr, "GENERATION"):
		return "GENERATION"
	case strings.Contains(codeStr, "QUALITY"):
		return "QUALITY"
	case strings.Contains(codeStr, "PERSISTENCE") || strings.Contains(codeStr, "RECORDER"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
