package social

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Arshmittal/Ai-social-media/types"
)

// maxErrorBody caps how much of an upstream error response is kept.
const maxErrorBody = 4 << 10

// PostRequest is one piece of content to publish. Content is the
// already formatted text; ContentType drives platform behavior such as
// twitter threads.
type PostRequest struct {
	Content     string
	ContentType string
	MediaPath   string
}

// PostResult reports a successful publish.
type PostResult struct {
	Platform     string    `json:"platform"`
	PostID       string    `json:"post_id,omitempty"`
	PostIDs      []string  `json:"post_ids,omitempty"`
	URL          string    `json:"url,omitempty"`
	ThreadLength int       `json:"thread_length,omitempty"`
	PostedAt     time.Time `json:"posted_at"`
	Note         string    `json:"note,omitempty"`
}

// AsMap renders the result as the loose document stored alongside the
// content record.
func (r *PostResult) AsMap() map[string]any {
	m := map[string]any{
		"success":   true,
		"platform":  r.Platform,
		"posted_at": r.PostedAt.UTC().Format(time.RFC3339),
	}
	if r.PostID != "" {
		m["post_id"] = r.PostID
	}
	if len(r.PostIDs) > 0 {
		m["post_ids"] = r.PostIDs
		m["thread_length"] = r.ThreadLength
	}
	if r.URL != "" {
		m["url"] = r.URL
	}
	if r.Note != "" {
		m["note"] = r.Note
	}
	return m
}

// ConnectionStatus is the outcome of a credentials check. Failed
// checks are reported in the status, not as errors, so callers can
// render them.
type ConnectionStatus struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Publisher is one platform backend.
type Publisher interface {
	// Name returns the canonical platform name.
	Name() string

	// Post publishes formatted content and returns the platform's post
	// identifiers.
	Post(ctx context.Context, req *PostRequest) (*PostResult, error)

	// TestConnection verifies the configured credentials against the
	// platform API.
	TestConnection(ctx context.Context) (*ConnectionStatus, error)

	// Analytics fetches engagement metrics for a published post.
	Analytics(ctx context.Context, postID string) (map[string]any, error)
}

// codeForStatus maps an upstream HTTP status into the error taxonomy.
func codeForStatus(status int) types.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return types.ErrUnauthorized
	case http.StatusForbidden:
		return types.ErrForbidden
	case http.StatusNotFound:
		return types.ErrNotFound
	case http.StatusTooManyRequests:
		return types.ErrRateLimited
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return types.ErrInvalidRequest
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return types.ErrTimeout
	}
	return types.ErrUpstreamError
}

// apiError wraps an upstream failure without losing the response body.
func apiError(platform string, status int, body string) *types.Error {
	e := types.Errorf(codeForStatus(status), "%s api: status %d: %s", platform, status, strings.TrimSpace(body)).
		WithHTTPStatus(status).
		WithPlatform(platform)
	if status == http.StatusTooManyRequests || status >= 500 {
		e.Retryable = true
	}
	return e
}

// transportError wraps a failure to reach the platform at all.
func transportError(platform string, err error) *types.Error {
	return types.Errorf(types.ErrUnavailable, "%s api unreachable", platform).
		WithCause(err).
		WithPlatform(platform).
		WithRetryable(true)
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
