package social

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/types"
)

// instagramNote marks results produced by the simplified flow: real
// publishing goes through the Business API media upload, which this
// service does not implement.
const instagramNote = "Instagram posting requires media upload implementation"

// Instagram is the simplified publisher: it validates the request and
// returns a stub result instead of driving the Business API upload
// flow.
type Instagram struct {
	token  string
	logger *zap.Logger
	now    func() time.Time
}

// NewInstagram builds the Instagram publisher.
func NewInstagram(cfg config.InstagramConfig, logger *zap.Logger) *Instagram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instagram{
		token:  cfg.AccessToken,
		logger: logger,
		now:    time.Now,
	}
}

func (i *Instagram) Name() string { return "instagram" }

// Post validates that media is attached; text-only posts are invalid
// on this platform.
func (i *Instagram) Post(_ context.Context, req *PostRequest) (*PostResult, error) {
	if i.token == "" {
		return nil, types.NewError(types.ErrInvalidRequest,
			"instagram token not configured (INSTAGRAM_ACCESS_TOKEN)").
			WithPlatform("instagram")
	}
	if req.MediaPath == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "instagram posts require media content").
			WithPlatform("instagram")
	}

	now := i.now().UTC()
	result := &PostResult{
		Platform: "instagram",
		PostID:   fmt.Sprintf("ig_%d", now.UnixMilli()),
		PostedAt: now,
		Note:     instagramNote,
	}
	i.logger.Info("instagram post accepted",
		zap.String("post_id", result.PostID),
		zap.String("media_path", req.MediaPath))
	return result, nil
}

// TestConnection only checks local configuration: the basic token has
// no cheap validation endpoint.
func (i *Instagram) TestConnection(context.Context) (*ConnectionStatus, error) {
	if i.token == "" {
		return &ConnectionStatus{Message: "instagram token not configured"}, nil
	}
	return &ConnectionStatus{OK: true, Message: "instagram token configured"}, nil
}

// Analytics is a stub: insights need the Business API.
func (i *Instagram) Analytics(context.Context, string) (map[string]any, error) {
	return map[string]any{
		"platform":     "instagram",
		"note":         "Instagram analytics requires Business API",
		"retrieved_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
