package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/types"
)

func newTestLinkedIn(t *testing.T, cfg config.LinkedInConfig, handler http.Handler) *LinkedIn {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	l := NewLinkedIn(cfg, time.Second, zap.NewNop())
	l.baseURL = srv.URL
	return l
}

func linkedInTestConfig() config.LinkedInConfig {
	return config.LinkedInConfig{
		ClientID:    "client-1",
		AccessToken: "li-token",
		PersonURN:   "urn:li:person:42",
	}
}

func TestNormalizeURN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare ID becomes person URN", "12345", "urn:li:person:12345"},
		{"person passthrough", "urn:li:person:abc", "urn:li:person:abc"},
		{"member passthrough", "urn:li:member:abc", "urn:li:member:abc"},
		{"organization passthrough", "urn:li:organization:9", "urn:li:organization:9"},
		{"company passthrough", "urn:li:company:9", "urn:li:company:9"},
		{"organisation spelling fixed", "urn:li:organisation:999", "urn:li:company:999"},
		{"other urn kinds pass through", "urn:li:school:1", "urn:li:school:1"},
		{"whitespace trimmed", "  42  ", "urn:li:person:42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURN(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty URN errors", func(t *testing.T) {
		_, err := NormalizeURN("   ")
		require.Error(t, err)
		assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	})
}

func TestProperty_NormalizeURNAlwaysPostable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`[A-Za-z0-9_-]{1,24}`).Draw(rt, "id")
		prefix := rapid.SampledFrom([]string{
			"",
			"urn:li:person:",
			"urn:li:member:",
			"urn:li:organization:",
			"urn:li:company:",
			"urn:li:organisation:",
		}).Draw(rt, "prefix")

		got, err := NormalizeURN(prefix + id)
		require.NoError(rt, err)
		require.True(rt, strings.HasSuffix(got, id))
		require.NotContains(rt, got, "organisation")

		valid := false
		for _, p := range urnPrefixes {
			if strings.HasPrefix(got, p) {
				valid = true
			}
		}
		require.True(rt, valid, "normalized URN %q has no accepted prefix", got)
	})
}

func TestLinkedInPost(t *testing.T) {
	t.Run("success builds the ugc payload", func(t *testing.T) {
		var gotHeaders http.Header
		var gotBody ugcPost
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v2/ugcPosts", r.URL.Path)
			gotHeaders = r.Header.Clone()
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"urn:li:share:999"}`))
		}))

		result, err := l.Post(context.Background(), &PostRequest{Content: "Professional update"})
		require.NoError(t, err)

		assert.Equal(t, "Bearer li-token", gotHeaders.Get("Authorization"))
		assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
		assert.Equal(t, "2.0.0", gotHeaders.Get("X-Restli-Protocol-Version"))

		assert.Equal(t, "urn:li:person:42", gotBody.Author)
		assert.Equal(t, "PUBLISHED", gotBody.LifecycleState)
		share := gotBody.SpecificContent["com.linkedin.ugc.ShareContent"]
		assert.Equal(t, "Professional update", share.ShareCommentary.Text)
		assert.Equal(t, "NONE", share.ShareMediaCategory)
		assert.Equal(t, "PUBLIC", gotBody.Visibility["com.linkedin.ugc.MemberNetworkVisibility"])

		assert.Equal(t, "linkedin", result.Platform)
		assert.Equal(t, "urn:li:share:999", result.PostID)
	})

	t.Run("bare person ID normalized before posting", func(t *testing.T) {
		cfg := linkedInTestConfig()
		cfg.PersonURN = "42"
		var gotBody ugcPost
		l := newTestLinkedIn(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"urn:li:share:1"}`))
		}))

		_, err := l.Post(context.Background(), &PostRequest{Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, "urn:li:person:42", gotBody.Author)
	})

	t.Run("201 is the only success status", func(t *testing.T) {
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"urn:li:share:999"}`))
		}))

		_, err := l.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
	})

	t.Run("403 rejection keeps the service error body", func(t *testing.T) {
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"access_denied: insufficient permissions","serviceErrorCode":100}`))
		}))

		_, err := l.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Equal(t, types.ErrForbidden, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "access_denied")
	})

	t.Run("422 maps to invalid request", func(t *testing.T) {
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"length exceeds maximum","serviceErrorCode":105}`))
		}))

		_, err := l.Post(context.Background(), &PostRequest{Content: strings.Repeat("a", 1400)})
		require.Error(t, err)
		assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	})

	t.Run("missing token rejected before any call", func(t *testing.T) {
		l := NewLinkedIn(config.LinkedInConfig{PersonURN: "42"}, time.Second, zap.NewNop())
		_, err := l.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LINKEDIN_ACCESS_TOKEN")
	})

	t.Run("empty URN rejected before any call", func(t *testing.T) {
		l := NewLinkedIn(config.LinkedInConfig{AccessToken: "li-token"}, time.Second, zap.NewNop())
		_, err := l.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "URN cannot be empty")
	})
}

func TestLinkedInTestConnection(t *testing.T) {
	t.Run("person URN probes the me endpoint", func(t *testing.T) {
		var gotPath, gotAuth string
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"id":"42"}`))
		}))

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		require.True(t, status.OK)
		assert.Equal(t, "/v2/me", gotPath)
		assert.Equal(t, "Bearer li-token", gotAuth)
		assert.Equal(t, "urn:li:person:42", status.Details["urn"])
	})

	t.Run("company URN probes the organization endpoint", func(t *testing.T) {
		cfg := linkedInTestConfig()
		cfg.PersonURN = "urn:li:company:777"
		var gotPath string
		l := newTestLinkedIn(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.True(t, status.OK)
		assert.Equal(t, "/v2/organizations/777", gotPath)
	})

	t.Run("organisation spelling lands on the organization endpoint", func(t *testing.T) {
		cfg := linkedInTestConfig()
		cfg.PersonURN = "urn:li:organisation:55"
		var gotPath string
		l := newTestLinkedIn(t, cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.True(t, status.OK)
		assert.Equal(t, "/v2/organizations/55", gotPath)
		assert.Equal(t, "urn:li:company:55", status.Details["urn"])
	})

	t.Run("401 reports expired token", func(t *testing.T) {
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Equal(t, "linkedin token is invalid or expired", status.Message)
	})

	t.Run("403 keeps the body", func(t *testing.T) {
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("nope"))
		}))

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "linkedin access denied (403): nope", status.Message)
	})

	t.Run("other statuses report code and body", func(t *testing.T) {
		l := newTestLinkedIn(t, linkedInTestConfig(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		}))

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "linkedin api error 500: boom", status.Message)
	})

	t.Run("unsupported urn kind reported in status", func(t *testing.T) {
		cfg := linkedInTestConfig()
		cfg.PersonURN = "urn:li:school:1"
		l := NewLinkedIn(cfg, time.Second, zap.NewNop())

		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Equal(t, "invalid URN format: urn:li:school:1", status.Message)
	})

	t.Run("missing token reported in status", func(t *testing.T) {
		l := NewLinkedIn(config.LinkedInConfig{}, time.Second, zap.NewNop())
		status, err := l.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Equal(t, "linkedin token not configured", status.Message)
	})
}

func TestLinkedInAnalytics(t *testing.T) {
	l := NewLinkedIn(linkedInTestConfig(), time.Second, zap.NewNop())
	analytics, err := l.Analytics(context.Background(), "urn:li:share:999")
	require.NoError(t, err)
	assert.Equal(t, "linkedin", analytics["platform"])
	assert.Contains(t, analytics["note"], "additional API permissions")
}
