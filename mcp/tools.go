package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/scheduler"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/vector"
)

// Store is the persistence surface the content tools rely on.
type Store interface {
	GetProject(ctx context.Context, id string) (*store.Project, error)
	ListProjects(ctx context.Context) ([]store.Project, error)
	GetContent(ctx context.Context, id string) (*store.Content, error)
	SaveContent(ctx context.Context, projectID string, c *store.Content) (string, error)
	SystemStats(ctx context.Context) (*store.SystemStats, error)
	ProjectStats(ctx context.Context, projectID string) (*store.ProjectStats, error)
}

// Generator produces platform drafts.
type Generator interface {
	Generate(ctx context.Context, req content.Request) (*content.Draft, error)
}

// Scheduler queues content for later publishing.
type Scheduler interface {
	SchedulePost(ctx context.Context, contentID string, at time.Time, platform string) (string, error)
}

// Index is the semantic search surface the content tools rely on.
type Index interface {
	Index(ctx context.Context, projectID, text string, meta map[string]any) error
	Search(ctx context.Context, projectID, query string, limit int) ([]vector.SimilarContent, error)
	Analytics(ctx context.Context, projectID string) (*vector.ProjectAnalytics, error)
}

var (
	_ Store     = (*store.Store)(nil)
	_ Generator = (*content.Generator)(nil)
	_ Scheduler = (*scheduler.Scheduler)(nil)
	_ Index     = (*vector.ContentIndex)(nil)
)

// Services bundles the backends the content server exposes over MCP.
type Services struct {
	Store     Store
	Generator Generator
	Scheduler Scheduler
	Index     Index
}

func (svc Services) validate() error {
	if svc.Store == nil {
		return fmt.Errorf("store is required")
	}
	if svc.Generator == nil {
		return fmt.Errorf("generator is required")
	}
	if svc.Scheduler == nil {
		return fmt.Errorf("scheduler is required")
	}
	if svc.Index == nil {
		return fmt.Errorf("index is required")
	}
	return nil
}

// NewContentServer builds the MCP server for the content pipeline:
// five tools, three live resources, and one prompt per platform.
func NewContentServer(svc Services, version string, logger *zap.Logger) (*Server, error) {
	if err := svc.validate(); err != nil {
		return nil, err
	}

	s := NewServer("content-mcp", version, logger)

	for _, register := range []func(*Server, Services) error{
		registerProjectInfoTool,
		registerGenerateContentTool,
		registerScheduleContentTool,
		registerAnalyticsTool,
		registerSearchTool,
		registerProjectsResource,
		registerTemplatesResource,
		registerAnalyticsResource,
	} {
		if err := register(s, svc); err != nil {
			return nil, err
		}
	}
	if err := registerPlatformPrompts(s); err != nil {
		return nil, err
	}
	return s, nil
}

func registerProjectInfoTool(s *Server, svc Services) error {
	return s.RegisterTool(&ToolDefinition{
		Name:        "get_project_info",
		Description: "Get details about a content project",
		InputSchema: objectSchema(map[string]any{
			"project_id": prop("string", "Project ID"),
		}, "project_id"),
	}, func(ctx context.Context, args map[string]any) (any, error) {
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		return svc.Store.GetProject(ctx, projectID)
	})
}

func registerGenerateContentTool(s *Server, svc Services) error {
	return s.RegisterTool(&ToolDefinition{
		Name:        "generate_content",
		Description: "Generate platform-optimized social media content for a project",
		InputSchema: objectSchema(map[string]any{
			"project_id":    prop("string", "Project ID"),
			"topic":         prop("string", "Content topic"),
			"platform":      prop("string", "Target platform (twitter, linkedin, facebook, instagram)"),
			"content_type":  prop("string", "Content type (post, thread, article, story, reel, poll)"),
			"include_media": prop("boolean", "Whether to attach media"),
		}, "project_id", "topic", "platform"),
	}, func(ctx context.Context, args map[string]any) (any, error) {
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		topic, err := requireString(args, "topic")
		if err != nil {
			return nil, err
		}
		platform, err := requireString(args, "platform")
		if err != nil {
			return nil, err
		}
		contentType := stringArg(args, "content_type")
		if contentType == "" {
			contentType = "post"
		}
		includeMedia := boolArg(args, "include_media")

		project, err := svc.Store.GetProject(ctx, projectID)
		if err != nil {
			return nil, err
		}

		draft, err := svc.Generator.Generate(ctx, content.Request{
			ProjectID:    projectID,
			Topic:        topic,
			Platform:     platform,
			ContentType:  contentType,
			BrandVoice:   project.BrandVoice,
			IncludeMedia: includeMedia,
		})
		if err != nil {
			return nil, err
		}

		contentID, err := svc.Store.SaveContent(ctx, projectID, &store.Content{
			Content:     draft.Content,
			Platform:    draft.Platform,
			ContentType: draft.ContentType,
			Hashtags:    draft.Hashtags,
			MediaPath:   draft.MediaPath,
			Metadata:    draft.Metadata,
		})
		if err != nil {
			return nil, err
		}

		// An indexing failure degrades similarity search, not the
		// generated content itself.
		if err := svc.Index.Index(ctx, projectID, draft.Content, map[string]any{
			"content_id":   contentID,
			"platform":     draft.Platform,
			"content_type": draft.ContentType,
			"topic":        draft.Topic,
		}); err != nil {
			s.logger.Warn("failed to index generated content",
				zap.String("content_id", contentID),
				zap.Error(err))
		}

		return map[string]any{
			"project_id":        projectID,
			"topic":             topic,
			"platform":          draft.Platform,
			"content_type":      draft.ContentType,
			"generated_content": draft.Content,
			"character_count":   len([]rune(draft.Content)),
			"character_limit":   content.LimitFor(draft.Platform, draft.ContentType),
			"include_media":     includeMedia,
			"status":            "success",
			"content_id":        contentID,
		}, nil
	})
}

func registerScheduleContentTool(s *Server, svc Services) error {
	return s.RegisterTool(&ToolDefinition{
		Name:        "schedule_content",
		Description: "Schedule existing content for publishing at a specific time",
		InputSchema: objectSchema(map[string]any{
			"content_id":    prop("string", "Content ID"),
			"schedule_time": prop("string", "RFC 3339 timestamp to publish at"),
			"platform":      prop("string", "Platform override; defaults to the content's platform"),
		}, "content_id", "schedule_time"),
	}, func(ctx context.Context, args map[string]any) (any, error) {
		contentID, err := requireString(args, "content_id")
		if err != nil {
			return nil, err
		}
		rawTime, err := requireString(args, "schedule_time")
		if err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339, rawTime)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule_time: %w", err)
		}

		platform := stringArg(args, "platform")
		if platform == "" {
			doc, err := svc.Store.GetContent(ctx, contentID)
			if err != nil {
				return nil, err
			}
			platform = doc.Platform
		}
		platform = content.NormalizePlatform(platform)

		scheduleID, err := svc.Scheduler.SchedulePost(ctx, contentID, at, platform)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"content_id":    contentID,
			"scheduled_for": at.UTC().Format(time.RFC3339),
			"platform":      platform,
			"status":        "scheduled",
			"schedule_id":   scheduleID,
		}, nil
	})
}

func registerAnalyticsTool(s *Server, svc Services) error {
	return s.RegisterTool(&ToolDefinition{
		Name:        "get_analytics",
		Description: "Get content analytics for a project",
		InputSchema: objectSchema(map[string]any{
			"project_id": prop("string", "Project ID"),
			"platform":   prop("string", "Narrow platform counts to one platform"),
			"date_range": prop("string", "Date range label echoed back in the result"),
		}, "project_id"),
	}, func(ctx context.Context, args map[string]any) (any, error) {
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}

		va, err := svc.Index.Analytics(ctx, projectID)
		if err != nil {
			return nil, err
		}
		ps, err := svc.Store.ProjectStats(ctx, projectID)
		if err != nil {
			return nil, err
		}

		platforms := va.Platforms
		if platforms == nil {
			platforms = map[string]int{}
		}
		if platform := content.NormalizePlatform(stringArg(args, "platform")); platform != "" {
			platforms = map[string]int{platform: platforms[platform]}
		}

		result := map[string]any{
			"project_id":      projectID,
			"total_content":   va.TotalContent,
			"platforms":       platforms,
			"vector_size":     va.VectorSize,
			"posts_published": ps.PostsPublished,
			"status":          "success",
		}
		if dateRange := stringArg(args, "date_range"); dateRange != "" {
			result["date_range"] = dateRange
		}
		return result, nil
	})
}

func registerSearchTool(s *Server, svc Services) error {
	return s.RegisterTool(&ToolDefinition{
		Name:        "search_similar_content",
		Description: "Search a project's indexed content by semantic similarity",
		InputSchema: objectSchema(map[string]any{
			"project_id": prop("string", "Project ID"),
			"query":      prop("string", "Search query"),
			"limit":      prop("integer", "Maximum number of results"),
		}, "project_id", "query"),
	}, func(ctx context.Context, args map[string]any) (any, error) {
		projectID, err := requireString(args, "project_id")
		if err != nil {
			return nil, err
		}
		query, err := requireString(args, "query")
		if err != nil {
			return nil, err
		}

		results, err := svc.Index.Search(ctx, projectID, query, intArg(args, "limit"))
		if err != nil {
			return nil, err
		}
		if results == nil {
			results = []vector.SimilarContent{}
		}

		return map[string]any{
			"project_id": projectID,
			"query":      query,
			"results":    results,
			"status":     "success",
		}, nil
	})
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// intArg tolerates the float64 that JSON numbers decode to.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func requireString(args map[string]any, key string) (string, error) {
	v := strings.TrimSpace(stringArg(args, key))
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
