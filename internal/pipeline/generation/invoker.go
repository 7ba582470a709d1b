// internal/pipeline/generation/invoker.go
package generation

import (
	"context"
	stderrors "errors"
	"time"

	"campus-assist/internal/common/errors"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/metrics"
	"campus-assist/internal/models"
	"campus-assist/internal/pipeline/promptbuild"
)

// Provider produces text for an assembled prompt. Implementations must
// be safe for concurrent use and should return *errors.StandardError so
// the invoker can tell transient failures from rejected requests.
type Provider interface {
	Complete(ctx context.Context, prompt *promptbuild.Prompt, maxTokens int) (string, error)
}

type Config struct {
	Timeout     time.Duration
	MaxAttempts int
	MaxTokens   int
}

const backoffBase = 100 * time.Millisecond

// Invoker calls the generation provider with a per-attempt timeout and
// retries transient failures with exponential backoff. Exhaustion is
// never an error to the caller: the result comes back degraded and the
// enhancer substitutes a fallback reply.
type Invoker struct {
	config   *Config
	provider Provider
	logger   logger.Logger
}

func NewInvoker(config *Config, provider Provider, log logger.Logger) *Invoker {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Invoker{
		config:   config,
		provider: provider,
		logger:   log.WithFields(map[string]interface{}{"stage": "generation"}),
	}
}

// Generate runs up to MaxAttempts provider calls. Timeouts, connection
// errors and provider-side throttling are retried; a rejected request is
// not. Degraded is true iff no attempt produced text.
func (inv *Invoker) Generate(ctx context.Context, prompt *promptbuild.Prompt) models.GenerationResult {
	var lastErr error

	for attempt := 1; attempt <= inv.config.MaxAttempts; attempt++ {
		text, err := inv.attempt(ctx, prompt)
		if err == nil {
			metrics.GenerationAttempts.Observe(float64(attempt))
			return models.GenerationResult{Text: text, Attempts: attempt}
		}
		lastErr = err

		inv.logger.Warn("generation attempt failed", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": inv.config.MaxAttempts,
			"error":       err.Error(),
		})

		if !isTransient(err) {
			metrics.GenerationAttempts.Observe(float64(attempt))
			return degraded(err, attempt)
		}
		if attempt == inv.config.MaxAttempts {
			break
		}

		// 100ms, 200ms, 400ms, ...
		delay := backoffBase << (attempt - 1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			metrics.GenerationAttempts.Observe(float64(attempt))
			return degraded(errors.NewGenerationTimeoutError(), attempt)
		}
	}

	metrics.GenerationAttempts.Observe(float64(inv.config.MaxAttempts))
	inv.logger.Error("all generation attempts exhausted", map[string]interface{}{
		"attempts": inv.config.MaxAttempts,
		"error":    lastErr.Error(),
	})
	return degraded(lastErr, inv.config.MaxAttempts)
}

func (inv *Invoker) attempt(ctx context.Context, prompt *promptbuild.Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, inv.config.Timeout)
	defer cancel()
	return inv.provider.Complete(ctx, prompt, inv.config.MaxTokens)
}

// isTransient reports whether the failure is worth another attempt.
// Structured provider errors carry their own verdict; a bare deadline is
// a timeout; anything else is assumed to be a connection-level fault.
func isTransient(err error) bool {
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return true
}

func degraded(err error, attempts int) models.GenerationResult {
	code := string(errors.ErrCodeGenerationFailed)
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		code = string(stdErr.Code)
	}
	return models.GenerationResult{ErrCode: code, Attempts: attempts, Degraded: true}
}
