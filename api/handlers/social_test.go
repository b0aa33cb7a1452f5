package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/social"
	"github.com/Arshmittal/Ai-social-media/types"
)

type fakeConnTester struct {
	testFn func(ctx context.Context, platform string) (*social.ConnectionStatus, error)
	calls  []string
}

func (f *fakeConnTester) TestConnection(ctx context.Context, platform string) (*social.ConnectionStatus, error) {
	f.calls = append(f.calls, platform)
	if f.testFn != nil {
		return f.testFn(ctx, platform)
	}
	return &social.ConnectionStatus{OK: true, Message: platform + " connection validated"}, nil
}

func TestHandleTestFacebook(t *testing.T) {
	tester := &fakeConnTester{
		testFn: func(_ context.Context, platform string) (*social.ConnectionStatus, error) {
			return &social.ConnectionStatus{
				OK:      true,
				Message: "Facebook connection validated",
				Details: map[string]any{"page": "Acme"},
			}, nil
		},
	}
	cacheFake := newFakeCache()
	h := NewSocialHandler(tester, cacheFake, zap.NewNop())

	get := func(t *testing.T) map[string]any {
		t.Helper()
		rec := httptest.NewRecorder()
		h.HandleTestFacebook(rec, httptest.NewRequest(http.MethodGet, "/test_facebook", nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return dataMap(t, decodeResponse(t, rec))
	}

	data := get(t)
	assert.Equal(t, "facebook", data["platform"])
	assert.Equal(t, "Facebook connection validated", data["message"])
	details, ok := data["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", details["page"])
	_, present := data["cached"]
	assert.False(t, present, "a live probe is not marked cached")

	again := get(t)
	assert.Equal(t, []string{"facebook"}, tester.calls,
		"a validated connection is served from cache for a while")
	assert.Equal(t, true, again["cached"])
	assert.Equal(t, connTestCacheTTL, cacheFake.ttls[connTestCacheKey("facebook")])
}

func TestHandleTestFacebookFailure(t *testing.T) {
	tester := &fakeConnTester{
		testFn: func(context.Context, string) (*social.ConnectionStatus, error) {
			return &social.ConnectionStatus{OK: false, Message: "invalid token: expired"}, nil
		},
	}
	cacheFake := newFakeCache()
	h := NewSocialHandler(tester, cacheFake, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTestFacebook(rec, httptest.NewRequest(http.MethodGet, "/test_facebook", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid token: expired", resp.Error.Message)

	assert.Empty(t, cacheFake.entries, "failures are never cached")

	rec = httptest.NewRecorder()
	h.HandleTestFacebook(rec, httptest.NewRequest(http.MethodGet, "/test_facebook", nil))
	assert.Len(t, tester.calls, 2, "the next probe hits the platform again")
}

func TestHandleTestConnectionCacheFailureDegrades(t *testing.T) {
	tester := &fakeConnTester{}
	cacheFake := newFakeCache()
	cacheFake.getErr = errors.New("redis down")
	cacheFake.setErr = errors.New("redis down")
	h := NewSocialHandler(tester, cacheFake, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTestFacebook(rec, httptest.NewRequest(http.MethodGet, "/test_facebook", nil))

	require.Equal(t, http.StatusOK, rec.Code, "a dead cache degrades to a live probe")
	assert.Equal(t, []string{"facebook"}, tester.calls)
}

func TestHandleTestConnectionServiceError(t *testing.T) {
	tester := &fakeConnTester{
		testFn: func(_ context.Context, platform string) (*social.ConnectionStatus, error) {
			return nil, types.Errorf(types.ErrInvalidRequest, "unsupported platform: %s", platform)
		},
	}
	h := NewSocialHandler(tester, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTestFacebook(rec, httptest.NewRequest(http.MethodGet, "/test_facebook", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTestLinkedIn(t *testing.T) {
	tester := &fakeConnTester{}
	h := NewSocialHandler(tester, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	h.HandleTestLinkedIn(rec, httptest.NewRequest(http.MethodGet, "/test_linkedin", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeResponse(t, rec))
	assert.Equal(t, "linkedin", data["platform"])
	assert.Equal(t, []string{"linkedin"}, tester.calls)
}
