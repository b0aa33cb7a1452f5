package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/types"
	"github.com/Arshmittal/Ai-social-media/vector"
)

// ProjectStore is the persistence surface the project endpoints use.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *store.Project) (string, error)
	GetProject(ctx context.Context, id string) (*store.Project, error)
	ListProjects(ctx context.Context) ([]store.Project, error)
	UpdateProject(ctx context.Context, id string, upd store.ProjectUpdate) error
	DeleteProject(ctx context.Context, id string) error
}

// ProjectIndex manages the per-project vector collections that live
// alongside the Mongo documents.
type ProjectIndex interface {
	EnsureProject(ctx context.Context, projectID string) error
	DeleteProject(ctx context.Context, projectID string) error
}

var (
	_ ProjectStore = (*store.Store)(nil)
	_ ProjectIndex = (*vector.ContentIndex)(nil)
)

// ProjectHandler serves project CRUD.
type ProjectHandler struct {
	store  ProjectStore
	index  ProjectIndex
	cache  Cache
	logger *zap.Logger
}

// NewProjectHandler builds the project handler. cache may be nil.
func NewProjectHandler(st ProjectStore, index ProjectIndex, cache Cache, logger *zap.Logger) *ProjectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectHandler{store: st, index: index, cache: cache, logger: logger}
}

type createProjectRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	BrandVoice     string   `json:"brand_voice"`
	Platforms      []string `json:"platforms"`
	Industry       string   `json:"industry"`
	TargetAudience string   `json:"target_audience"`
}

type editProjectRequest struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	BrandVoice     *string  `json:"brand_voice"`
	Platforms      []string `json:"platforms"`
	Industry       *string  `json:"industry"`
	TargetAudience *string  `json:"target_audience"`
}

type projectSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Platforms   []string `json:"platforms"`
	Status      string   `json:"status"`
}

// HandleCreate serves POST /create_project.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	var req createProjectRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "name is required"), h.logger)
		return
	}
	platforms, perr := normalizePlatforms(req.Platforms)
	if perr != nil {
		WriteError(w, r, perr, h.logger)
		return
	}

	id, err := h.store.CreateProject(r.Context(), &store.Project{
		Name:           req.Name,
		Description:    req.Description,
		BrandVoice:     req.BrandVoice,
		Platforms:      platforms,
		Industry:       req.Industry,
		TargetAudience: req.TargetAudience,
	})
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	// The collection is ensured again on first index, so a vector
	// store outage does not undo the project.
	if err := h.index.EnsureProject(r.Context(), id); err != nil {
		h.logger.Warn("failed to create vector collection",
			zap.String("project_id", id),
			zap.Error(err))
	}

	h.logger.Info("project created",
		zap.String("project_id", id),
		zap.String("name", req.Name),
		zap.Strings("platforms", platforms))

	WriteSuccess(w, r, map[string]any{"project_id": id})
}

// HandleList serves GET /projects. Soft-deleted projects are absent.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{
			ID:          p.ID.Hex(),
			Name:        p.Name,
			Description: p.Description,
			Platforms:   p.Platforms,
			Status:      string(p.Status),
		})
	}
	WriteSuccess(w, r, map[string]any{
		"projects":    out,
		"total_count": len(out),
	})
}

// HandleGet serves GET /projects/{project_id}.
func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("project_id"))
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}
	WriteSuccess(w, r, project)
}

// HandleEdit serves POST /edit_project/{project_id}. Absent fields are
// left untouched; the platform list must always name at least one
// supported platform.
func (h *ProjectHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}
	id := r.PathValue("project_id")

	var req editProjectRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		WriteError(w, r, types.NewError(types.ErrInvalidRequest, "name cannot be empty"), h.logger)
		return
	}
	platforms, perr := normalizePlatforms(req.Platforms)
	if perr != nil {
		WriteError(w, r, perr, h.logger)
		return
	}

	err := h.store.UpdateProject(r.Context(), id, store.ProjectUpdate{
		Name:           req.Name,
		Description:    req.Description,
		BrandVoice:     req.BrandVoice,
		Platforms:      platforms,
		Industry:       req.Industry,
		TargetAudience: req.TargetAudience,
	})
	if err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	h.logger.Info("project updated", zap.String("project_id", id))
	WriteSuccess(w, r, map[string]any{"project_id": id, "status": "updated"})
}

// HandleDelete serves POST /delete_project/{project_id}. The delete is
// soft; generated content stays behind for the aggregates.
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("project_id")

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		WriteError(w, r, storeError(err), h.logger)
		return
	}

	if err := h.index.DeleteProject(r.Context(), id); err != nil {
		h.logger.Warn("failed to drop vector collection",
			zap.String("project_id", id),
			zap.Error(err))
	}
	h.invalidateAnalytics(r.Context(), id)

	h.logger.Info("project deleted", zap.String("project_id", id))
	WriteSuccess(w, r, map[string]any{"project_id": id, "status": "deleted"})
}

func (h *ProjectHandler) invalidateAnalytics(ctx context.Context, projectID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(ctx, analyticsCacheKey(projectID)); err != nil {
		h.logger.Warn("failed to invalidate analytics cache",
			zap.String("project_id", projectID),
			zap.Error(err))
	}
}

// normalizePlatforms canonicalizes a platform list, dropping
// duplicates. At least one supported platform is required.
func normalizePlatforms(raw []string) ([]string, *types.Error) {
	if len(raw) == 0 {
		return nil, types.NewError(types.ErrInvalidRequest, "at least one platform is required")
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, p := range raw {
		normalized := content.NormalizePlatform(p)
		if !content.IsSupportedPlatform(normalized) {
			return nil, types.Errorf(types.ErrInvalidRequest, "unsupported platform: %s", p)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out, nil
}
