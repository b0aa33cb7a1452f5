package social

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/types"
)

// Recorder receives publish metrics. Satisfied by metrics.Collector.
type Recorder interface {
	RecordPostPublished(platform, status string)
}

// Service owns the configured publishers and fronts them with platform
// normalization and formatting.
type Service struct {
	publishers map[string]Publisher
	logger     *zap.Logger
	rec        Recorder
}

// NewService builds a Service with all four platform publishers.
// Publishers with missing credentials are still registered; they fail
// with a configuration error on use, which keeps the error close to
// the actual posting attempt.
func NewService(cfg config.SocialConfig, logger *zap.Logger, rec Recorder) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		publishers: make(map[string]Publisher, 4),
		logger:     logger,
		rec:        rec,
	}
	s.Register(NewFacebook(cfg.Facebook, cfg.Timeout, logger))
	s.Register(NewTwitter(cfg.Twitter, cfg.Timeout, logger))
	s.Register(NewLinkedIn(cfg.LinkedIn, cfg.Timeout, logger))
	s.Register(NewInstagram(cfg.Instagram, logger))
	return s
}

// Register adds or replaces a platform publisher.
func (s *Service) Register(p Publisher) {
	s.publishers[p.Name()] = p
}

// Publisher returns the publisher for a platform name or alias.
func (s *Service) Publisher(platform string) (Publisher, bool) {
	p, ok := s.publishers[content.NormalizePlatform(platform)]
	return p, ok
}

// Platforms lists the registered platform names, sorted.
func (s *Service) Platforms() []string {
	names := make([]string, 0, len(s.publishers))
	for name := range s.publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Post formats the content for the platform and publishes it.
func (s *Service) Post(ctx context.Context, platform string, req *PostRequest) (*PostResult, error) {
	name := content.NormalizePlatform(platform)
	pub, ok := s.publishers[name]
	if !ok {
		return nil, types.Errorf(types.ErrInvalidRequest, "unsupported platform: %s", platform)
	}

	formatted := *req
	formatted.Content = FormatForPlatform(name, req.Content, req.ContentType)

	s.logger.Info("posting content",
		zap.String("platform", name),
		zap.String("content_type", req.ContentType),
		zap.Int("chars", len(formatted.Content)))

	result, err := pub.Post(ctx, &formatted)
	if err != nil {
		if s.rec != nil {
			s.rec.RecordPostPublished(name, "error")
		}
		s.logger.Error("posting failed", zap.String("platform", name), zap.Error(err))
		return nil, err
	}

	if s.rec != nil {
		s.rec.RecordPostPublished(name, "success")
	}
	return result, nil
}

// TestConnection checks the platform's credentials.
func (s *Service) TestConnection(ctx context.Context, platform string) (*ConnectionStatus, error) {
	pub, ok := s.Publisher(platform)
	if !ok {
		return nil, types.Errorf(types.ErrInvalidRequest, "unsupported platform: %s", platform)
	}
	return pub.TestConnection(ctx)
}

// Analytics fetches engagement metrics for a published post.
func (s *Service) Analytics(ctx context.Context, platform, postID string) (map[string]any, error) {
	pub, ok := s.Publisher(platform)
	if !ok {
		return nil, types.Errorf(types.ErrInvalidRequest, "analytics not supported for %s", platform)
	}
	return pub.Analytics(ctx, postID)
}
