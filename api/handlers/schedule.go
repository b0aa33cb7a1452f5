package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/scheduler"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/types"
)

// Scheduler queues content for later publishing. A zero time means
// "the next optimal slot for the platform".
type Scheduler interface {
	SchedulePost(ctx context.Context, contentID string, at time.Time, platform string) (string, error)
}

// ContentGetter resolves a content document, used to default the
// platform when the caller does not name one.
type ContentGetter interface {
	GetContent(ctx context.Context, id string) (*store.Content, error)
}

var (
	_ Scheduler     = (*scheduler.Scheduler)(nil)
	_ ContentGetter = (*store.Store)(nil)
)

// ScheduleHandler serves POST /schedule_content.
type ScheduleHandler struct {
	sched  Scheduler
	store  ContentGetter
	logger *zap.Logger
}

// NewScheduleHandler builds the schedule handler.
func NewScheduleHandler(sched Scheduler, st ContentGetter, logger *zap.Logger) *ScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHandler{sched: sched, store: st, logger: logger}
}

type scheduleContentRequest struct {
	ContentID    string `json:"content_id"`
	ScheduleTime string `json:"schedule_time"`
	Platform     string `json:"platform"`
}

// HandleSchedule queues existing content for publishing. An omitted
// schedule_time defers to the platform's next optimal slot; a time in
// the past is accepted and executes on the next poll tick.
func (h *ScheduleHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req scheduleContentRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.ContentID) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "content_id is required"), h.logger)
		return
	}

	var at time.Time
	if req.ScheduleTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduleTime)
		if err != nil {
			WriteError(w, r, types.NewError(types.ErrInvalidRequest,
				"invalid schedule_time: must be RFC 3339").WithCause(err), h.logger)
			return
		}
		at = parsed
	}

	ctx := r.Context()
	platform := content.NormalizePlatform(req.Platform)
	if platform == "" {
		doc, err := h.store.GetContent(ctx, req.ContentID)
		if err != nil {
			WriteError(w, r, storeError(err), h.logger)
			return
		}
		platform = content.NormalizePlatform(doc.Platform)
	}

	scheduleID, err := h.sched.SchedulePost(ctx, req.ContentID, at, platform)
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	h.logger.Info("content scheduled",
		zap.String("schedule_id", scheduleID),
		zap.String("content_id", req.ContentID),
		zap.String("platform", platform))

	data := map[string]any{
		"schedule_id": scheduleID,
		"content_id":  req.ContentID,
		"platform":    platform,
		"status":      "scheduled",
	}
	if !at.IsZero() {
		data["scheduled_for"] = at.UTC().Format(time.RFC3339)
	}
	WriteSuccess(w, r, data)
}
