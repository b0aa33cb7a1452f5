package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/store"
)

type scheduledCall struct {
	contentID string
	at        time.Time
	platform  string
}

type fakeSchedulerSvc struct {
	mu    sync.Mutex
	calls []scheduledCall
	err   error
}

func (f *fakeSchedulerSvc) SchedulePost(_ context.Context, contentID string, at time.Time, platform string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, scheduledCall{contentID: contentID, at: at, platform: platform})
	return "sched-1", nil
}

type fakeContentGetter struct {
	getFn func(ctx context.Context, id string) (*store.Content, error)
}

func (f *fakeContentGetter) GetContent(ctx context.Context, id string) (*store.Content, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, errors.New("getFn not set")
}

func TestHandleScheduleContent(t *testing.T) {
	sched := &fakeSchedulerSvc{}
	h := NewScheduleHandler(sched, &fakeContentGetter{}, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
		"content_id":    testContentID,
		"schedule_time": "2026-09-01T15:00:00Z",
		"platform":      "X",
	})
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := dataMap(t, decodeResponse(t, rec))
	assert.Equal(t, "sched-1", data["schedule_id"])
	assert.Equal(t, "twitter", data["platform"], `"X" normalizes to twitter`)
	assert.Equal(t, "2026-09-01T15:00:00Z", data["scheduled_for"])
	assert.Equal(t, "scheduled", data["status"])

	require.Len(t, sched.calls, 1)
	assert.Equal(t, testContentID, sched.calls[0].contentID)
	assert.Equal(t, "twitter", sched.calls[0].platform)
	assert.True(t, sched.calls[0].at.Equal(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)))
}

func TestHandleScheduleContentOffsetTimestamp(t *testing.T) {
	sched := &fakeSchedulerSvc{}
	h := NewScheduleHandler(sched, &fakeContentGetter{}, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
		"content_id":    testContentID,
		"schedule_time": "2026-09-01T15:00:00+02:00",
		"platform":      "twitter",
	})
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeResponse(t, rec))
	assert.Equal(t, "2026-09-01T13:00:00Z", data["scheduled_for"],
		"scheduled_for is echoed in UTC")
}

func TestHandleScheduleContentDefaultsPlatform(t *testing.T) {
	sched := &fakeSchedulerSvc{}
	getter := &fakeContentGetter{
		getFn: func(_ context.Context, id string) (*store.Content, error) {
			require.Equal(t, testContentID, id)
			return &store.Content{Content: "hello", Platform: "linkedin"}, nil
		},
	}
	h := NewScheduleHandler(sched, getter, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
		"content_id":    testContentID,
		"schedule_time": "2026-09-01T15:00:00Z",
	})
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "linkedin", dataMap(t, decodeResponse(t, rec))["platform"],
		"platform falls back to the content document")
	require.Len(t, sched.calls, 1)
	assert.Equal(t, "linkedin", sched.calls[0].platform)
}

func TestHandleScheduleContentOmittedTime(t *testing.T) {
	sched := &fakeSchedulerSvc{}
	h := NewScheduleHandler(sched, &fakeContentGetter{}, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
		"content_id": testContentID,
		"platform":   "twitter",
	})
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, decodeResponse(t, rec))
	_, present := data["scheduled_for"]
	assert.False(t, present, "no explicit time to echo; the scheduler picks the slot")

	require.Len(t, sched.calls, 1)
	assert.True(t, sched.calls[0].at.IsZero(),
		"a zero time asks the scheduler for the next optimal slot")
}

func TestHandleScheduleContentPastTimeAccepted(t *testing.T) {
	sched := &fakeSchedulerSvc{}
	h := NewScheduleHandler(sched, &fakeContentGetter{}, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
		"content_id":    testContentID,
		"schedule_time": "2020-01-01T00:00:00Z",
		"platform":      "twitter",
	})
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code,
		"past times execute on the next poll tick instead of failing")
}

func TestHandleScheduleContentValidation(t *testing.T) {
	h := NewScheduleHandler(&fakeSchedulerSvc{}, &fakeContentGetter{}, zap.NewNop())

	t.Run("missing content_id", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
			"platform": "twitter",
		})
		rec := httptest.NewRecorder()
		h.HandleSchedule(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "content_id is required", decodeResponse(t, rec).Error.Message)
	})

	t.Run("invalid schedule_time", func(t *testing.T) {
		req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
			"content_id":    testContentID,
			"schedule_time": "tomorrow at noon",
			"platform":      "twitter",
		})
		rec := httptest.NewRecorder()
		h.HandleSchedule(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeResponse(t, rec).Error.Message, "invalid schedule_time")
	})

	t.Run("unknown content", func(t *testing.T) {
		getter := &fakeContentGetter{
			getFn: func(_ context.Context, id string) (*store.Content, error) {
				return nil, fmt.Errorf("content %s: %w", id, store.ErrNotFound)
			},
		}
		h := NewScheduleHandler(&fakeSchedulerSvc{}, getter, zap.NewNop())

		req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
			"content_id": testContentID,
		})
		rec := httptest.NewRecorder()
		h.HandleSchedule(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleScheduleContentSchedulerFailure(t *testing.T) {
	sched := &fakeSchedulerSvc{err: errors.New("mongo write failed")}
	h := NewScheduleHandler(sched, &fakeContentGetter{}, zap.NewNop())

	req := newJSONRequest(t, http.MethodPost, "/schedule_content", map[string]any{
		"content_id":    testContentID,
		"schedule_time": "2026-09-01T15:00:00Z",
		"platform":      "twitter",
	})
	rec := httptest.NewRecorder()
	h.HandleSchedule(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
