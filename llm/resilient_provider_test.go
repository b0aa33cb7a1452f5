package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/llm/retry"
)

// scriptedProvider returns the queued results in order.
type scriptedProvider struct {
	name    string
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	resp *ChatResponse
	err  error
}

func (s *scriptedProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	r := s.results[idx]
	return r.resp, r.err
}

func (s *scriptedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return &HealthStatus{Healthy: true}, nil
}

func (s *scriptedProvider) Name() string { return s.name }

func fastRetryPolicy(maxRetries int) *retry.RetryPolicy {
	return &retry.RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestResilientProvider_SuccessPassesThrough(t *testing.T) {
	want := &ChatResponse{Model: "gpt-4", Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: "hi"}}}}
	inner := &scriptedProvider{name: "openai", results: []scriptedResult{{resp: want}}}

	rp := NewResilientProvider(inner, fastRetryPolicy(3), zap.NewNop())

	resp, err := rp.Completion(context.Background(), &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "hello"}}})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text())
	assert.Equal(t, 1, inner.calls)
}

func TestResilientProvider_RetriesRetryableError(t *testing.T) {
	want := &ChatResponse{Model: "gpt-4"}
	inner := &scriptedProvider{name: "openai", results: []scriptedResult{
		{err: &Error{Code: ErrRateLimited, HTTPStatus: http.StatusTooManyRequests, Retryable: true}},
		{err: &Error{Code: ErrUpstreamError, HTTPStatus: http.StatusBadGateway, Retryable: true}},
		{resp: want},
	}}

	rp := NewResilientProvider(inner, fastRetryPolicy(3), zap.NewNop())

	resp, err := rp.Completion(context.Background(), &ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, want, resp)
	assert.Equal(t, 3, inner.calls)
}

func TestResilientProvider_DoesNotRetryInvalidRequest(t *testing.T) {
	inner := &scriptedProvider{name: "openai", results: []scriptedResult{
		{err: &Error{Code: ErrInvalidRequest, HTTPStatus: http.StatusBadRequest}},
	}}

	rp := NewResilientProvider(inner, fastRetryPolicy(3), zap.NewNop())

	_, err := rp.Completion(context.Background(), &ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "invalid request must not retry")
}

func TestResilientProvider_DoesNotRetryCanceled(t *testing.T) {
	inner := &scriptedProvider{name: "openai", results: []scriptedResult{
		{err: context.Canceled},
	}}

	rp := NewResilientProvider(inner, fastRetryPolicy(3), zap.NewNop())

	_, err := rp.Completion(context.Background(), &ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestResilientProvider_ExhaustsRetries(t *testing.T) {
	inner := &scriptedProvider{name: "mistral", results: []scriptedResult{
		{err: &Error{Code: ErrModelOverloaded, HTTPStatus: 529, Retryable: true}},
	}}

	rp := NewResilientProvider(inner, fastRetryPolicy(2), zap.NewNop())

	_, err := rp.Completion(context.Background(), &ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls, "initial attempt plus two retries")

	var llmErr *Error
	assert.True(t, errors.As(err, &llmErr), "wrapped error keeps the llm.Error")
	assert.Equal(t, ErrModelOverloaded, llmErr.Code)
}

func TestResilientProvider_NameAndHealthDelegate(t *testing.T) {
	inner := &scriptedProvider{name: "openai"}
	rp := NewResilientProvider(inner, nil, zap.NewNop())

	assert.Equal(t, "openai", rp.Name())

	status, err := rp.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)
}

func TestRetryableCompletionError(t *testing.T) {
	assert.False(t, retryableCompletionError(context.Canceled))
	assert.False(t, retryableCompletionError(context.DeadlineExceeded))
	assert.True(t, retryableCompletionError(&Error{Retryable: true}))
	assert.False(t, retryableCompletionError(&Error{Retryable: false}))
	assert.True(t, retryableCompletionError(retry.WrapRetryable(errors.New("x"))))
	assert.False(t, retryableCompletionError(errors.New("plain")))
}
