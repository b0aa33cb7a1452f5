package providers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arshmittal/Ai-social-media/llm"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		msg       string
		wantCode  llm.ErrorCode
		retryable bool
	}{
		{"401 unauthorized", http.StatusUnauthorized, "bad key", llm.ErrUnauthorized, false},
		{"403 forbidden", http.StatusForbidden, "no access", llm.ErrForbidden, false},
		{"429 rate limited", http.StatusTooManyRequests, "slow down", llm.ErrRateLimited, true},
		{"400 invalid request", http.StatusBadRequest, "bad json", llm.ErrInvalidRequest, false},
		{"400 quota exhausted", http.StatusBadRequest, "monthly quota exceeded", llm.ErrQuotaExceeded, false},
		{"400 credit exhausted", http.StatusBadRequest, "insufficient Credits", llm.ErrQuotaExceeded, false},
		{"502 bad gateway", http.StatusBadGateway, "upstream", llm.ErrUpstreamError, true},
		{"503 unavailable", http.StatusServiceUnavailable, "upstream", llm.ErrUpstreamError, true},
		{"504 gateway timeout", http.StatusGatewayTimeout, "upstream", llm.ErrUpstreamError, true},
		{"529 overloaded", 529, "overloaded", llm.ErrModelOverloaded, true},
		{"500 default retryable", http.StatusInternalServerError, "oops", llm.ErrUpstreamError, true},
		{"418 default not retryable", http.StatusTeapot, "teapot", llm.ErrUpstreamError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.status, tt.msg, "test-provider")
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, "test-provider", err.Provider)
			assert.Equal(t, tt.msg, err.Message)
		})
	}
}

func TestReadErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "envelope with type",
			body: `{"error":{"message":"invalid key","type":"auth_error"}}`,
			want: "invalid key (type: auth_error)",
		},
		{
			name: "envelope without type",
			body: `{"error":{"message":"invalid key"}}`,
			want: "invalid key",
		},
		{
			name: "raw text fallback",
			body: "service unavailable",
			want: "service unavailable",
		},
		{
			name: "json without envelope falls through raw",
			body: `{"detail":"not found"}`,
			want: `{"detail":"not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadErrorMessage(strings.NewReader(tt.body))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertMessagesToOpenAI(t *testing.T) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: "You write social posts."},
		{Role: llm.RoleUser, Content: "Write one about launch day.", Name: "alice"},
	}

	out := ConvertMessagesToOpenAI(msgs)
	require.Len(t, out, 2)
	assert.Equal(t, "system", out[0].Role)
	assert.Equal(t, "You write social posts.", out[0].Content)
	assert.Equal(t, "user", out[1].Role)
	assert.Equal(t, "alice", out[1].Name)
}

func TestToLLMChatResponse(t *testing.T) {
	oa := OpenAICompatResponse{
		ID:    "resp-1",
		Model: "gpt-test",
		Choices: []OpenAICompatChoice{
			{Index: 0, FinishReason: "stop", Message: OpenAICompatMessage{Role: "model", Content: "hello"}},
		},
		Usage: &OpenAICompatUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}

	resp := ToLLMChatResponse(oa, "test")
	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, "test", resp.Provider)
	require.Len(t, resp.Choices, 1)
	// Role is normalized regardless of what the upstream sent.
	assert.Equal(t, llm.RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestToLLMChatResponse_NoUsage(t *testing.T) {
	resp := ToLLMChatResponse(OpenAICompatResponse{ID: "r", Model: "m"}, "test")
	assert.Zero(t, resp.Usage.TotalTokens)
	assert.Empty(t, resp.Choices)
	assert.Equal(t, "", resp.Text())
}

func TestChooseModel(t *testing.T) {
	assert.Equal(t, "req-model", ChooseModel(&llm.ChatRequest{Model: "req-model"}, "default", "fallback"))
	assert.Equal(t, "default", ChooseModel(&llm.ChatRequest{}, "default", "fallback"))
	assert.Equal(t, "fallback", ChooseModel(&llm.ChatRequest{}, "", "fallback"))
	assert.Equal(t, "fallback", ChooseModel(nil, "", "fallback"))
}

func TestBearerTokenHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	BearerTokenHeaders(req, "sk-test")
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}
