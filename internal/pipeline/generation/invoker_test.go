// internal/pipeline/generation/invoker_test.go
package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assist/internal/common/errors"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/pipeline/promptbuild"
)

type scriptedProvider struct {
	calls   int
	results []func() (string, error)
}

func (p *scriptedProvider) Complete(ctx context.Context, prompt *promptbuild.Prompt, maxTokens int) (string, error) {
	res := p.results[p.calls]
	p.calls++
	return res()
}

func succeed(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

func testPrompt() *promptbuild.Prompt {
	return &promptbuild.Prompt{
		Segments: []promptbuild.Segment{{Kind: promptbuild.SegmentQuery, Text: "question"}},
		Budget:   4000,
	}
}

func newTestInvoker(provider Provider, maxAttempts int) *Invoker {
	return NewInvoker(&Config{
		Timeout:     time.Second,
		MaxAttempts: maxAttempts,
		MaxTokens:   500,
	}, provider, logger.Nop())
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	provider := &scriptedProvider{results: []func() (string, error){succeed("the answer")}}
	inv := newTestInvoker(provider, 2)

	res := inv.Generate(context.Background(), testPrompt())

	assert.Equal(t, "the answer", res.Text)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, provider.calls)
}

func TestGenerateRetriesTransientFailure(t *testing.T) {
	provider := &scriptedProvider{results: []func() (string, error){
		fail(errors.NewGenerationTimeoutError()),
		succeed("recovered"),
	}}
	inv := newTestInvoker(provider, 2)

	res := inv.Generate(context.Background(), testPrompt())

	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, 2, res.Attempts)
	assert.False(t, res.Degraded)
}

func TestGenerateExhaustionIsDegraded(t *testing.T) {
	provider := &scriptedProvider{results: []func() (string, error){
		fail(errors.NewGenerationTimeoutError()),
		fail(errors.NewGenerationTimeoutError()),
	}}
	inv := newTestInvoker(provider, 2)

	res := inv.Generate(context.Background(), testPrompt())

	assert.True(t, res.Degraded)
	assert.Empty(t, res.Text)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, provider.calls, "attempted at most maxAttempts times")
	assert.Equal(t, string(errors.ErrCodeGenerationTimeout), res.ErrCode)
}

func TestGenerateRejectedRequestNotRetried(t *testing.T) {
	provider := &scriptedProvider{results: []func() (string, error){
		fail(errors.NewGenerationRejectedError(assert.AnError)),
		succeed("never reached"),
	}}
	inv := newTestInvoker(provider, 3)

	res := inv.Generate(context.Background(), testPrompt())

	assert.True(t, res.Degraded)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, string(errors.ErrCodeGenerationRejected), res.ErrCode)
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	provider := &scriptedProvider{results: []func() (string, error){
		fail(errors.NewGenerationFailedError(assert.AnError)),
		succeed("never reached"),
	}}
	inv := newTestInvoker(provider, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := inv.Generate(ctx, testPrompt())

	require.True(t, res.Degraded)
	assert.Equal(t, 1, provider.calls, "no further attempts after cancellation")
}
