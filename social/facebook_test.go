package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/types"
)

func newTestFacebook(t *testing.T, cfg config.FacebookConfig, handler http.Handler) *Facebook {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f := NewFacebook(cfg, time.Second, zap.NewNop())
	f.baseURL = srv.URL
	return f
}

func facebookTestConfig() config.FacebookConfig {
	return config.FacebookConfig{
		PageID:          "page123",
		AccessToken:     "user-token",
		PageAccessToken: "page-token",
	}
}

func TestFacebookPost(t *testing.T) {
	t.Run("success posts form-encoded to the page feed", func(t *testing.T) {
		var gotPath, gotMessage, gotToken, gotContentType string
		f := newTestFacebook(t, facebookTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			gotPath = r.URL.Path
			gotContentType = r.Header.Get("Content-Type")
			require.NoError(t, r.ParseForm())
			gotMessage = r.PostFormValue("message")
			gotToken = r.PostFormValue("access_token")
			w.Write([]byte(`{"id":"page123_456"}`))
		}))

		result, err := f.Post(context.Background(), &PostRequest{Content: "Hello page"})
		require.NoError(t, err)

		assert.Equal(t, "/v18.0/page123/feed", gotPath)
		assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
		assert.Equal(t, "Hello page", gotMessage)
		assert.Equal(t, "page-token", gotToken, "page token preferred over user token")
		assert.Equal(t, "facebook", result.Platform)
		assert.Equal(t, "page123_456", result.PostID)
		assert.False(t, result.PostedAt.IsZero())
	})

	t.Run("user token used when page token missing", func(t *testing.T) {
		cfg := facebookTestConfig()
		cfg.PageAccessToken = ""
		var gotToken string
		f := newTestFacebook(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotToken = r.PostFormValue("access_token")
			w.Write([]byte(`{"id":"1"}`))
		}))

		_, err := f.Post(context.Background(), &PostRequest{Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, "user-token", gotToken)
	})

	t.Run("graph error envelope preserved", func(t *testing.T) {
		f := newTestFacebook(t, facebookTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`))
		}))

		_, err := f.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid OAuth access token.")
		assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
		assert.Equal(t, 190, types.AsError(err).Details["error_code"])
	})

	t.Run("non json error body preserved", func(t *testing.T) {
		f := newTestFacebook(t, facebookTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("gateway exploded"))
		}))

		_, err := f.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway exploded")
		assert.Equal(t, types.ErrUpstreamError, types.GetErrorCode(err))
		assert.True(t, types.IsRetryable(err))
	})

	t.Run("missing token rejected before any call", func(t *testing.T) {
		f := NewFacebook(config.FacebookConfig{PageID: "page123"}, time.Second, zap.NewNop())
		_, err := f.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "FACEBOOK_ACCESS_TOKEN")
	})

	t.Run("missing page ID rejected", func(t *testing.T) {
		f := NewFacebook(config.FacebookConfig{AccessToken: "user-token"}, time.Second, zap.NewNop())
		_, err := f.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FACEBOOK_PAGE_ID")
	})
}

func TestFacebookTestConnection(t *testing.T) {
	t.Run("validates token page and permissions", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "page-token", r.URL.Query().Get("access_token"))
			w.Write([]byte(`{"name":"Jane Ops"}`))
		})
		mux.HandleFunc("/page123", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Acme Page"}`))
		})
		mux.HandleFunc("/page123/permissions", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[{"permission":"pages_manage_posts","status":"granted"},{"permission":"pages_read_engagement","status":"granted"}]}`))
		})
		f := newTestFacebook(t, facebookTestConfig(), mux)

		status, err := f.TestConnection(context.Background())
		require.NoError(t, err)
		require.True(t, status.OK)
		assert.Equal(t, "Jane Ops", status.Details["account"])
		assert.Equal(t, "Acme Page", status.Details["page"])
		assert.Equal(t, []string{"pages_manage_posts", "pages_read_engagement"}, status.Details["permissions"])
	})

	t.Run("invalid token reported in status", func(t *testing.T) {
		f := newTestFacebook(t, facebookTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"expired"}}`))
		}))

		status, err := f.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Contains(t, status.Message, "invalid token:")
	})

	t.Run("page access failure reported in status", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Jane Ops"}`))
		})
		mux.HandleFunc("/page123", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("no page access"))
		})
		f := newTestFacebook(t, facebookTestConfig(), mux)

		status, err := f.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Contains(t, status.Message, "cannot access page: no page access")
	})

	t.Run("permissions failure does not fail the check", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Jane Ops"}`))
		})
		mux.HandleFunc("/page123", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Acme Page"}`))
		})
		mux.HandleFunc("/page123/permissions", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		f := newTestFacebook(t, facebookTestConfig(), mux)

		status, err := f.TestConnection(context.Background())
		require.NoError(t, err)
		assert.True(t, status.OK)
		assert.NotContains(t, status.Details, "permissions")
	})

	t.Run("missing config reported without any call", func(t *testing.T) {
		f := NewFacebook(config.FacebookConfig{}, time.Second, zap.NewNop())
		status, err := f.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Equal(t, "facebook token not configured", status.Message)
	})
}

func TestFacebookAnalytics(t *testing.T) {
	var gotPath, gotMetric, gotToken string
	f := newTestFacebook(t, facebookTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMetric = r.URL.Query().Get("metric")
		gotToken = r.URL.Query().Get("access_token")
		w.Write([]byte(`{"data":[{"name":"post_impressions","values":[{"value":120}]}]}`))
	}))

	analytics, err := f.Analytics(context.Background(), "page123_456")
	require.NoError(t, err)

	assert.Equal(t, "/v18.0/page123_456/insights", gotPath)
	assert.Equal(t, facebookInsightMetrics, gotMetric)
	assert.Equal(t, "user-token", gotToken, "insights need the user token, not the page token")
	assert.Equal(t, "facebook", analytics["platform"])
	require.Len(t, analytics["insights"], 1)

	_, err = time.Parse(time.RFC3339, analytics["retrieved_at"].(string))
	assert.NoError(t, err)
}
