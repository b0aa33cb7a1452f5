package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/Arshmittal/Ai-social-media/content"
)

func registerProjectsResource(s *Server, svc Services) error {
	return s.RegisterResource(&Resource{
		URI:         "content://projects",
		Name:        "Active Projects",
		Description: "All active content projects",
		MimeType:    "application/json",
	}, func(ctx context.Context) (any, error) {
		projects, err := svc.Store.ListProjects(ctx)
		if err != nil {
			return nil, err
		}

		items := make([]map[string]any, 0, len(projects))
		for _, p := range projects {
			items = append(items, map[string]any{
				"id":        p.ID.Hex(),
				"name":      p.Name,
				"status":    string(p.Status),
				"platforms": p.Platforms,
			})
		}
		return map[string]any{
			"projects":     items,
			"total_count":  len(items),
			"last_updated": time.Now().UTC().Format(time.RFC3339),
		}, nil
	})
}

func registerTemplatesResource(s *Server, svc Services) error {
	return s.RegisterResource(&Resource{
		URI:         "content://templates",
		Name:        "Platform Templates",
		Description: "Per-platform limits, styles, and posting conventions",
		MimeType:    "application/json",
	}, func(ctx context.Context) (any, error) {
		templates := make(map[string]any, len(content.Platforms()))
		for _, platform := range content.Platforms() {
			spec := content.SpecFor(platform)
			templates[platform] = map[string]any{
				"style":             spec.Style,
				"max_length":        spec.MaxLength,
				"max_hashtags":      spec.MaxHashtags,
				"content_types":     spec.ContentTypes,
				"optimal_times":     spec.OptimalTimes,
				"image_sizes":       spec.ImageSizes,
				"supported_formats": spec.SupportedFormats,
			}
		}
		return map[string]any{
			"templates":    templates,
			"last_updated": time.Now().UTC().Format(time.RFC3339),
		}, nil
	})
}

func registerAnalyticsResource(s *Server, svc Services) error {
	return s.RegisterResource(&Resource{
		URI:         "content://analytics",
		Name:        "System Analytics",
		Description: "System-wide content and publishing totals",
		MimeType:    "application/json",
	}, func(ctx context.Context) (any, error) {
		stats, err := svc.Store.SystemStats(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"system_analytics": stats,
			"last_updated":     time.Now().UTC().Format(time.RFC3339),
		}, nil
	})
}

// registerPlatformPrompts derives one drafting prompt per platform from
// its spec, so the prompts never drift from the real limits.
func registerPlatformPrompts(s *Server) error {
	for _, platform := range content.Platforms() {
		spec := content.SpecFor(platform)
		tmpl := PromptTemplate{
			Name:        platform + "_post",
			Description: fmt.Sprintf("Draft a %s %s post", spec.Style, platform),
			Template: fmt.Sprintf(
				"Write a %s %s post about {{topic}}. Stay under %d characters and use at most %d hashtags.",
				spec.Style, platform, spec.MaxLength, spec.MaxHashtags),
			Variables: []string{"topic"},
		}
		if err := s.RegisterPrompt(&tmpl); err != nil {
			return err
		}
	}
	return nil
}
