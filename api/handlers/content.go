package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/social"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/types"
	"github.com/Arshmittal/Ai-social-media/vector"
)

// ContentStore is the persistence surface the content endpoints use.
type ContentStore interface {
	GetProject(ctx context.Context, id string) (*store.Project, error)
	GetContent(ctx context.Context, id string) (*store.Content, error)
	SaveContent(ctx context.Context, projectID string, c *store.Content) (string, error)
	ListProjectContent(ctx context.Context, projectID string) ([]store.Content, error)
	UpdateContentStatus(ctx context.Context, id string, status store.ContentStatus, postResult map[string]any) error
}

// Generator produces platform drafts.
type Generator interface {
	Generate(ctx context.Context, req content.Request) (*content.Draft, error)
}

// Indexer upserts generated content into the project's vector
// collection.
type Indexer interface {
	Index(ctx context.Context, projectID, text string, meta map[string]any) error
}

// SocialPoster publishes content to a platform.
type SocialPoster interface {
	Post(ctx context.Context, platform string, req *social.PostRequest) (*social.PostResult, error)
}

var (
	_ ContentStore = (*store.Store)(nil)
	_ Generator    = (*content.Generator)(nil)
	_ Indexer      = (*vector.ContentIndex)(nil)
	_ SocialPoster = (*social.Service)(nil)
)

// ContentHandler serves the generation pipeline, the per-project
// content listing and immediate publishing.
type ContentHandler struct {
	store  ContentStore
	gen    Generator
	index  Indexer
	social SocialPoster
	cache  Cache
	logger *zap.Logger
}

// NewContentHandler builds the content handler. cache may be nil.
func NewContentHandler(st ContentStore, gen Generator, index Indexer, poster SocialPoster, cache Cache, logger *zap.Logger) *ContentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandler{
		store:  st,
		gen:    gen,
		index:  index,
		social: poster,
		cache:  cache,
		logger: logger,
	}
}

type generateContentRequest struct {
	Topic        string `json:"topic"`
	ContentType  string `json:"content_type"`
	Platform     string `json:"platform"`
	Context      string `json:"context"`
	IncludeMedia bool   `json:"include_media"`
	MediaPath    string `json:"media_path"`
}

type regenerateContentRequest struct {
	ProjectID    string `json:"project_id"`
	Topic        string `json:"topic"`
	ContentType  string `json:"content_type"`
	Platform     string `json:"platform"`
	Context      string `json:"context"`
	IncludeMedia bool   `json:"include_media"`
	MediaPath    string `json:"media_path"`
}

type contentSummary struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Platform    string    `json:"platform"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type postNowRequest struct {
	ContentID string `json:"content_id"`
}

// HandleGenerate serves POST /generate_content/{project_id}.
func (h *ContentHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req generateContentRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	h.runPipeline(w, r, r.PathValue("project_id"), req)
}

// HandleRegenerate serves POST /regenerate_content. Same pipeline as
// HandleGenerate with the project ID carried in the body, producing a
// fresh draft alongside the old one.
func (h *ContentHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req regenerateContentRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "project_id is required"), h.logger)
		return
	}
	h.runPipeline(w, r, req.ProjectID, generateContentRequest{
		Topic:        req.Topic,
		ContentType:  req.ContentType,
		Platform:     req.Platform,
		Context:      req.Context,
		IncludeMedia: req.IncludeMedia,
		MediaPath:    req.MediaPath,
	})
}

// runPipeline generates a draft, persists it and mirrors it into the
// vector index.
func (h *ContentHandler) runPipeline(w http.ResponseWriter, r *http.Request, projectID string, req generateContentRequest) {
	ctx := r.Context()

	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "topic is required"), h.logger)
		return
	}
	if strings.TrimSpace(req.Platform) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "platform is required"), h.logger)
		return
	}
	platform := content.NormalizePlatform(req.Platform)
	if !content.IsSupportedPlatform(platform) {
		WriteError(w, r, types.Errorf(types.ErrInvalidRequest, "unsupported platform: %s", req.Platform), h.logger)
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "post"
	}

	project, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	start := time.Now()
	draft, err := h.gen.Generate(ctx, content.Request{
		ProjectID:    projectID,
		Topic:        req.Topic,
		Platform:     platform,
		ContentType:  contentType,
		BrandVoice:   project.BrandVoice,
		Context:      req.Context,
		IncludeMedia: req.IncludeMedia,
		MediaPath:    req.MediaPath,
	})
	if err != nil {
		WriteError(w, r, types.AsError(err), h.logger)
		return
	}

	contentID, err := h.store.SaveContent(ctx, projectID, &store.Content{
		Content:     draft.Content,
		Platform:    draft.Platform,
		ContentType: draft.ContentType,
		Hashtags:    draft.Hashtags,
		MediaPath:   draft.MediaPath,
		Metadata:    draft.Metadata,
	})
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	// An indexing failure degrades similarity search, not the draft
	// the caller asked for.
	if err := h.index.Index(ctx, projectID, draft.Content, map[string]any{
		"content_id":   contentID,
		"platform":     draft.Platform,
		"content_type": draft.ContentType,
		"topic":        draft.Topic,
	}); err != nil {
		h.logger.Warn("failed to index generated content",
			zap.String("content_id", contentID),
			zap.Error(err))
	}

	h.invalidateAnalytics(ctx, projectID)

	h.logger.Info("content generated",
		zap.String("project_id", projectID),
		zap.String("content_id", contentID),
		zap.String("platform", draft.Platform),
		zap.Duration("duration", time.Since(start)))

	WriteSuccess(w, r, map[string]any{
		"content_id":      contentID,
		"project_id":      projectID,
		"content":         draft.Content,
		"hashtags":        draft.Hashtags,
		"platform":        draft.Platform,
		"content_type":    draft.ContentType,
		"topic":           draft.Topic,
		"media_path":      draft.MediaPath,
		"character_count": len([]rune(draft.Content)),
		"character_limit": content.LimitFor(draft.Platform, draft.ContentType),
		"status":          string(store.ContentStatusDraft),
	})
}

// HandleListContent serves GET /api/content/{project_id}.
func (h *ContentHandler) HandleListContent(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("project_id")

	items, err := h.store.ListProjectContent(r.Context(), projectID)
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	out := make([]contentSummary, 0, len(items))
	for _, c := range items {
		out = append(out, contentSummary{
			ID:          c.ID.Hex(),
			Content:     c.Content,
			Platform:    c.Platform,
			ContentType: c.ContentType,
			Status:      string(c.Status),
			CreatedAt:   c.CreatedAt,
		})
	}
	WriteSuccess(w, r, map[string]any{
		"project_id":  projectID,
		"content":     out,
		"total_count": len(out),
	})
}

// HandlePostNow serves POST /post_now: publish stored content
// immediately and record the outcome. A publishing failure reports 400
// and carries the failed post_result so the caller sees what the
// platform said.
func (h *ContentHandler) HandlePostNow(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req postNowRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.ContentID) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "content_id is required"), h.logger)
		return
	}

	ctx := r.Context()
	doc, err := h.store.GetContent(ctx, req.ContentID)
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}
	if doc.Platform == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "content is missing platform information"), h.logger)
		return
	}
	if strings.TrimSpace(doc.Content) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "content is missing text"), h.logger)
		return
	}

	h.logger.Info("posting content",
		zap.String("content_id", req.ContentID),
		zap.String("platform", doc.Platform))

	result, err := h.social.Post(ctx, doc.Platform, &social.PostRequest{
		Content:     doc.Content,
		ContentType: doc.ContentType,
		MediaPath:   doc.MediaPath,
	})
	if err != nil {
		apiErr := types.AsError(err)
		h.logger.Error("posting failed",
			zap.String("content_id", req.ContentID),
			zap.String("platform", doc.Platform),
			zap.Error(err))

		WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Data: map[string]any{
				"post_result": map[string]any{
					"success":  false,
					"platform": doc.Platform,
					"error":    apiErr.Message,
				},
			},
			Error: &ErrorInfo{
				Code:      string(apiErr.Code),
				Message:   apiErr.Message,
				Retryable: apiErr.Retryable,
			},
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(r),
		})
		return
	}

	posted := result.AsMap()
	if err := h.store.UpdateContentStatus(ctx, req.ContentID, store.ContentStatusPosted, posted); err != nil {
		// The post is live; losing the status update must not read as
		// a publish failure.
		h.logger.Error("content posted but status update failed",
			zap.String("content_id", req.ContentID),
			zap.Error(err))
	}

	h.logger.Info("content posted",
		zap.String("content_id", req.ContentID),
		zap.String("platform", result.Platform),
		zap.String("post_id", result.PostID))

	WriteSuccess(w, r, map[string]any{
		"content_id":  req.ContentID,
		"message":     "content posted successfully",
		"post_result": posted,
	})
}

func (h *ContentHandler) invalidateAnalytics(ctx context.Context, projectID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, analyticsCacheKey(projectID)); err != nil {
		h.logger.Warn("failed to invalidate analytics cache",
			zap.String("project_id", projectID),
			zap.Error(err))
	}
}
