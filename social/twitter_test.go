package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/types"
)

func newTestTwitter(t *testing.T, handler http.Handler) *Twitter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tw := NewTwitter(config.TwitterConfig{BearerToken: "bearer-tok"}, time.Second, zap.NewNop())
	tw.baseURL = srv.URL
	return tw
}

// tweetRecorder answers /2/tweets with sequential IDs and keeps every
// request body.
type tweetRecorder struct {
	requests []tweetRequest
	failFrom int
}

func (rec *tweetRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	rec.requests = append(rec.requests, req)
	if rec.failFrom > 0 && len(rec.requests) >= rec.failFrom {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("twitter down"))
		return
	}
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, `{"data":{"id":"%d"}}`, 99+len(rec.requests))
}

func TestTwitterPostSingle(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	tw := newTestTwitter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1234"}}`))
	}))

	result, err := tw.Post(context.Background(), &PostRequest{Content: "Hello twitter", ContentType: "post"})
	require.NoError(t, err)

	assert.Equal(t, "/2/tweets", gotPath)
	assert.Equal(t, "Bearer bearer-tok", gotAuth)
	assert.Equal(t, "Hello twitter", gotBody["text"])
	assert.NotContains(t, gotBody, "reply", "single tweets carry no reply block")

	assert.Equal(t, "twitter", result.Platform)
	assert.Equal(t, "1234", result.PostID)
	assert.Equal(t, tweetStatusURL+"1234", result.URL)
	assert.Empty(t, result.PostIDs)
}

func TestTwitterPostThread(t *testing.T) {
	rec := &tweetRecorder{}
	tw := newTestTwitter(t, rec)

	result, err := tw.Post(context.Background(), &PostRequest{
		Content:     "First part\n---\nSecond part\n---\nThird part",
		ContentType: "thread",
	})
	require.NoError(t, err)
	require.Len(t, rec.requests, 3)

	assert.Equal(t, "First part (1/3)", rec.requests[0].Text)
	assert.Equal(t, "Second part (2/3)", rec.requests[1].Text)
	assert.Equal(t, "Third part (3/3)", rec.requests[2].Text)

	assert.Nil(t, rec.requests[0].Reply)
	require.NotNil(t, rec.requests[1].Reply)
	assert.Equal(t, "100", rec.requests[1].Reply.InReplyToTweetID)
	require.NotNil(t, rec.requests[2].Reply)
	assert.Equal(t, "101", rec.requests[2].Reply.InReplyToTweetID)

	assert.Equal(t, "100", result.PostID)
	assert.Equal(t, []string{"100", "101", "102"}, result.PostIDs)
	assert.Equal(t, 3, result.ThreadLength)
	assert.Equal(t, tweetStatusURL+"100", result.URL)
}

func TestTwitterThreadChunksOverlongPart(t *testing.T) {
	rec := &tweetRecorder{}
	tw := newTestTwitter(t, rec)

	long := strings.TrimSpace(strings.Repeat("word ", 120))
	result, err := tw.Post(context.Background(), &PostRequest{Content: long, ContentType: "thread"})
	require.NoError(t, err)

	require.Len(t, rec.requests, 3)
	for _, req := range rec.requests {
		assert.LessOrEqual(t, utf8.RuneCountInString(req.Text), 280)
	}
	assert.Equal(t, 3, result.ThreadLength)
}

func TestTwitterThreadEmptyPartsDropped(t *testing.T) {
	rec := &tweetRecorder{}
	tw := newTestTwitter(t, rec)

	_, err := tw.Post(context.Background(), &PostRequest{
		Content:     "Kept part\n---\n   \n---\nAlso kept",
		ContentType: "thread",
	})
	require.NoError(t, err)
	require.Len(t, rec.requests, 2)
	assert.Equal(t, "Kept part (1/2)", rec.requests[0].Text)
	assert.Equal(t, "Also kept (2/2)", rec.requests[1].Text)
}

func TestTwitterThreadMidFailureKeepsPostedIDs(t *testing.T) {
	rec := &tweetRecorder{failFrom: 2}
	tw := newTestTwitter(t, rec)

	_, err := tw.Post(context.Background(), &PostRequest{
		Content:     "One\n---\nTwo\n---\nThree",
		ContentType: "thread",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"100"}, types.AsError(err).Details["posted_ids"])
	assert.True(t, types.IsRetryable(err))
}

func TestTwitterThreadNoPostableContent(t *testing.T) {
	tw := NewTwitter(config.TwitterConfig{BearerToken: "bearer-tok"}, time.Second, zap.NewNop())
	_, err := tw.Post(context.Background(), &PostRequest{Content: "   \n---\n  ", ContentType: "thread"})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "no postable content")
}

func TestTwitterTokenSelection(t *testing.T) {
	t.Run("access token used when bearer missing", func(t *testing.T) {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"1"}}`))
		}))
		t.Cleanup(srv.Close)

		tw := NewTwitter(config.TwitterConfig{AccessToken: "acc-tok"}, time.Second, zap.NewNop())
		tw.baseURL = srv.URL

		_, err := tw.Post(context.Background(), &PostRequest{Content: "x"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer acc-tok", gotAuth)
	})

	t.Run("no token rejected before any call", func(t *testing.T) {
		tw := NewTwitter(config.TwitterConfig{}, time.Second, zap.NewNop())
		_, err := tw.Post(context.Background(), &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TWITTER_BEARER_TOKEN")
	})
}

func TestTwitterTestConnection(t *testing.T) {
	t.Run("valid token returns the account", func(t *testing.T) {
		var gotPath string
		tw := newTestTwitter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{"data":{"id":"u1","username":"jane"}}`))
		}))

		status, err := tw.TestConnection(context.Background())
		require.NoError(t, err)
		require.True(t, status.OK)
		assert.Equal(t, "/2/users/me", gotPath)
		assert.Equal(t, "u1", status.Details["user_id"])
		assert.Equal(t, "jane", status.Details["username"])
	})

	t.Run("401 reports expired token", func(t *testing.T) {
		tw := newTestTwitter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		status, err := tw.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Equal(t, "twitter token is invalid or expired", status.Message)
	})

	t.Run("other statuses reported with body", func(t *testing.T) {
		tw := newTestTwitter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("maintenance"))
		}))

		status, err := tw.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Contains(t, status.Message, "twitter api error")
		assert.Contains(t, status.Message, "maintenance")
	})
}

func TestTwitterAnalytics(t *testing.T) {
	t.Run("returns public metrics", func(t *testing.T) {
		var gotPath, gotFields string
		tw := newTestTwitter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotFields = r.URL.Query().Get("tweet.fields")
			w.Write([]byte(`{"data":{"id":"1234","created_at":"2026-08-01T12:00:00.000Z",` +
				`"public_metrics":{"retweet_count":12,"reply_count":3,"like_count":99,"quote_count":1}}}`))
		}))

		analytics, err := tw.Analytics(context.Background(), "1234")
		require.NoError(t, err)

		assert.Equal(t, "/2/tweets/1234", gotPath)
		assert.Equal(t, "public_metrics,created_at", gotFields)
		assert.Equal(t, "twitter", analytics["platform"])
		assert.Equal(t, 12, analytics["retweet_count"])
		assert.Equal(t, 99, analytics["like_count"])
		assert.Equal(t, 3, analytics["reply_count"])
		assert.Equal(t, 1, analytics["quote_count"])
		assert.Equal(t, "2026-08-01T12:00:00.000Z", analytics["created_at"])
	})

	t.Run("missing tweet is not found", func(t *testing.T) {
		tw := newTestTwitter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))

		_, err := tw.Analytics(context.Background(), "999")
		require.Error(t, err)
		assert.Equal(t, types.ErrNotFound, types.GetErrorCode(err))
	})
}
