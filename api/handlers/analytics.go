package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/internal/cache"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/types"
	"github.com/Arshmittal/Ai-social-media/vector"
)

// analyticsCacheTTL bounds how stale a cached analytics response can
// get. Generation and deletion invalidate the key early.
const analyticsCacheTTL = 60 * time.Second

func analyticsCacheKey(projectID string) string {
	return "analytics:" + projectID
}

// AnalyticsStore supplies the Mongo side of the analytics merge.
type AnalyticsStore interface {
	GetProject(ctx context.Context, id string) (*store.Project, error)
	ProjectStats(ctx context.Context, projectID string) (*store.ProjectStats, error)
}

// AnalyticsIndex supplies the vector side of the analytics merge.
type AnalyticsIndex interface {
	Analytics(ctx context.Context, projectID string) (*vector.ProjectAnalytics, error)
}

var (
	_ AnalyticsStore = (*store.Store)(nil)
	_ AnalyticsIndex = (*vector.ContentIndex)(nil)
)

// AnalyticsHandler serves GET /analytics/{project_id}.
type AnalyticsHandler struct {
	store  AnalyticsStore
	index  AnalyticsIndex
	cache  Cache
	logger *zap.Logger
}

// NewAnalyticsHandler builds the analytics handler. cache may be nil.
func NewAnalyticsHandler(st AnalyticsStore, index AnalyticsIndex, cache Cache, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{store: st, index: index, cache: cache, logger: logger}
}

type projectAnalyticsResponse struct {
	ProjectID      string         `json:"project_id"`
	TotalContent   int64          `json:"total_content"`
	Platforms      map[string]int `json:"platforms"`
	VectorSize     int            `json:"vector_size"`
	PostsPublished int64          `json:"posts_published"`
}

// HandleProjectAnalytics merges the vector index view (indexed volume,
// per-platform counts, vector size) with the Mongo posting stats.
// Responses are cached for a minute; a failing cache degrades to
// direct reads.
func (h *AnalyticsHandler) HandleProjectAnalytics(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("project_id")
	ctx := r.Context()

	if cached, ok := h.fromCache(ctx, projectID); ok {
		WriteSuccess(w, r, cached)
		return
	}

	if _, err := h.store.GetProject(ctx, projectID); err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	va, err := h.index.Analytics(ctx, projectID)
	if err != nil {
		WriteError(w, r, types.NewError(types.ErrUnavailable,
			"analytics unavailable").WithCause(err), h.logger)
		return
	}
	ps, err := h.store.ProjectStats(ctx, projectID)
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	resp := projectAnalyticsResponse{
		ProjectID:      projectID,
		TotalContent:   va.TotalContent,
		Platforms:      va.Platforms,
		VectorSize:     va.VectorSize,
		PostsPublished: ps.PostsPublished,
	}
	if resp.Platforms == nil {
		resp.Platforms = map[string]int{}
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, analyticsCacheKey(projectID), resp, analyticsCacheTTL); err != nil {
			h.logger.Warn("analytics cache write failed",
				zap.String("project_id", projectID),
				zap.Error(err))
		}
	}
	WriteSuccess(w, r, resp)
}

func (h *AnalyticsHandler) fromCache(ctx context.Context, projectID string) (projectAnalyticsResponse, bool) {
	var cached projectAnalyticsResponse
	if h.cache == nil {
		return cached, false
	}
	err := h.cache.GetJSON(ctx, analyticsCacheKey(projectID), &cached)
	if err == nil {
		return cached, true
	}
	if !cache.IsCacheMiss(err) {
		h.logger.Warn("analytics cache read failed",
			zap.String("project_id", projectID),
			zap.Error(err))
	}
	return cached, false
}
