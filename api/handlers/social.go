package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/internal/cache"
	"github.com/Arshmittal/Ai-social-media/social"
	"github.com/Arshmittal/Ai-social-media/types"
)

// connTestCacheTTL keeps a validated connection out of the platform
// APIs for a few minutes; failures are never cached so a fixed token
// shows up on the next probe.
const connTestCacheTTL = 5 * time.Minute

func connTestCacheKey(platform string) string {
	return "conntest:" + platform
}

// ConnectionTester validates credentials and permissions against a
// platform API.
type ConnectionTester interface {
	TestConnection(ctx context.Context, platform string) (*social.ConnectionStatus, error)
}

var _ ConnectionTester = (*social.Service)(nil)

// SocialHandler serves the platform connection test endpoints.
type SocialHandler struct {
	service ConnectionTester
	cache   Cache
	logger  *zap.Logger
}

// NewSocialHandler builds the social handler. cache may be nil.
func NewSocialHandler(service ConnectionTester, cache Cache, logger *zap.Logger) *SocialHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocialHandler{service: service, cache: cache, logger: logger}
}

type connectionTestResponse struct {
	Platform string         `json:"platform"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
	Cached   bool           `json:"cached,omitempty"`
}

// HandleTestFacebook serves GET /test_facebook.
func (h *SocialHandler) HandleTestFacebook(w http.ResponseWriter, r *http.Request) {
	h.testConnection(w, r, "facebook")
}

// HandleTestLinkedIn serves GET /test_linkedin.
func (h *SocialHandler) HandleTestLinkedIn(w http.ResponseWriter, r *http.Request) {
	h.testConnection(w, r, "linkedin")
}

func (h *SocialHandler) testConnection(w http.ResponseWriter, r *http.Request, platform string) {
	ctx := r.Context()

	if h.cache != nil {
		var cached connectionTestResponse
		err := h.cache.GetJSON(ctx, connTestCacheKey(platform), &cached)
		if err == nil {
			cached.Cached = true
			WriteSuccess(w, r, cached)
			return
		}
		if !cache.IsCacheMiss(err) {
			h.logger.Warn("connection test cache read failed",
				zap.String("platform", platform),
				zap.Error(err))
		}
	}

	status, err := h.service.TestConnection(ctx, platform)
	if err != nil {
		WriteError(w, r, types.AsError(err), h.logger)
		return
	}
	if !status.OK {
		h.logger.Warn("connection test failed",
			zap.String("platform", platform),
			zap.String("message", status.Message))
		WriteError(w, r, types.NewError(types.ErrUpstreamError, status.Message).
			WithPlatform(platform), h.logger)
		return
	}

	resp := connectionTestResponse{
		Platform: platform,
		Message:  status.Message,
		Details:  status.Details,
	}
	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, connTestCacheKey(platform), resp, connTestCacheTTL); err != nil {
			h.logger.Warn("connection test cache write failed",
				zap.String("platform", platform),
				zap.Error(err))
		}
	}

	h.logger.Info("connection test passed", zap.String("platform", platform))
	WriteSuccess(w, r, resp)
}
