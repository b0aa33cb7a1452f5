package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/llm/retry"
)

// ResilientProvider decorates a Provider with retries. The underlying
// provider is never modified; only Completion gains retry behavior.
type ResilientProvider struct {
	provider Provider
	retryer  retry.Retryer
	logger   *zap.Logger
}

// NewResilientProvider wraps a provider with the given retry policy.
// A nil policy uses retry.DefaultRetryPolicy. Only errors flagged
// retryable by the provider (rate limits, upstream 5xx, overload) are
// retried; invalid requests and auth failures fail immediately.
func NewResilientProvider(provider Provider, policy *retry.RetryPolicy, logger *zap.Logger) *ResilientProvider {
	if policy == nil {
		policy = retry.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.RetryIf == nil {
		policy.RetryIf = retryableCompletionError
	}

	return &ResilientProvider{
		provider: provider,
		retryer:  retry.NewBackoffRetryer(policy, logger),
		logger:   logger,
	}
}

// retryableCompletionError decides retryability for completion calls.
// Context cancellation never retries.
func retryableCompletionError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return retry.IsRetryableError(err)
}

// Completion implements Provider.Completion with retries.
func (rp *ResilientProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return retry.DoWithResultTyped[*ChatResponse](rp.retryer, ctx, func() (*ChatResponse, error) {
		return rp.provider.Completion(ctx, req)
	})
}

// HealthCheck delegates to the underlying provider without retries.
func (rp *ResilientProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return rp.provider.HealthCheck(ctx)
}

// Name implements Provider.Name.
func (rp *ResilientProvider) Name() string {
	return rp.provider.Name()
}
