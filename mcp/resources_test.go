package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/store"
)

// readResource drives a resource through resources/read and decodes
// the JSON text of the first content entry.
func readResource(t *testing.T, s *Server, uri string) map[string]any {
	t.Helper()
	resp := s.HandleMessage(context.Background(), &MCPMessage{
		ID:     float64(1),
		Method: "resources/read",
		Params: map[string]any{"uri": uri},
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]any)
	contents := result["contents"].([]map[string]any)
	require.Len(t, contents, 1)
	assert.Equal(t, uri, contents[0]["uri"])
	assert.Equal(t, "application/json", contents[0]["mimeType"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(contents[0]["text"].(string)), &payload))
	return payload
}

func TestProjectsResource(t *testing.T) {
	fs := newFakeStore()
	projectID := fs.addProject("Acme Launch", "twitter", "linkedin")
	s := newTestContentServer(t, fs, &fakeGenerator{}, &fakeScheduler{}, &fakeIndex{})

	payload := readResource(t, s, "content://projects")
	assert.Equal(t, float64(1), payload["total_count"])
	assert.NotEmpty(t, payload["last_updated"])

	projects := payload["projects"].([]any)
	require.Len(t, projects, 1)
	first := projects[0].(map[string]any)
	assert.Equal(t, projectID, first["id"])
	assert.Equal(t, "Acme Launch", first["name"])
	assert.Equal(t, "active", first["status"])
	assert.Equal(t, []any{"twitter", "linkedin"}, first["platforms"])
}

func TestTemplatesResource(t *testing.T) {
	s := newTestContentServer(t, newFakeStore(), &fakeGenerator{}, &fakeScheduler{}, &fakeIndex{})

	payload := readResource(t, s, "content://templates")
	templates := payload["templates"].(map[string]any)
	require.Len(t, templates, 4)

	twitter := templates["twitter"].(map[string]any)
	assert.Equal(t, "concise", twitter["style"])
	assert.Equal(t, float64(280), twitter["max_length"])
	assert.Equal(t, float64(3), twitter["max_hashtags"])
	assert.Equal(t, []any{"09:00", "15:00", "18:00"}, twitter["optimal_times"])
	assert.Equal(t, float64(220), twitter["content_types"].(map[string]any)["poll"])

	sizes := twitter["image_sizes"].([]any)
	require.Len(t, sizes, 1)
	assert.Equal(t, map[string]any{"width": float64(1200), "height": float64(675)}, sizes[0])

	linkedin := templates["linkedin"].(map[string]any)
	assert.Equal(t, "professional", linkedin["style"])
	assert.Equal(t, float64(3000), linkedin["max_length"])
}

func TestAnalyticsResource(t *testing.T) {
	fs := newFakeStore()
	fs.system = &store.SystemStats{
		TotalProjects:  3,
		TotalContent:   40,
		PostsPublished: 17,
		Platforms:      map[string]int{"twitter": 25, "linkedin": 15},
	}
	s := newTestContentServer(t, fs, &fakeGenerator{}, &fakeScheduler{}, &fakeIndex{})

	payload := readResource(t, s, "content://analytics")
	stats := payload["system_analytics"].(map[string]any)
	assert.Equal(t, float64(3), stats["total_projects"])
	assert.Equal(t, float64(40), stats["total_content_generated"])
	assert.Equal(t, float64(17), stats["total_posts_published"])
	assert.Equal(t, map[string]any{"twitter": float64(25), "linkedin": float64(15)}, stats["platforms"])
}

func TestPlatformPrompts(t *testing.T) {
	s := newTestContentServer(t, newFakeStore(), &fakeGenerator{}, &fakeScheduler{}, &fakeIndex{})

	for _, platform := range content.Platforms() {
		t.Run(platform, func(t *testing.T) {
			rendered, err := s.GetPrompt(platform+"_post", map[string]string{"topic": "launch week"})
			require.NoError(t, err)
			assert.Contains(t, rendered, "launch week")
			assert.Contains(t, rendered, platform)
			assert.Contains(t, rendered, content.SpecFor(platform).Style)
		})
	}

	rendered, err := s.GetPrompt("twitter_post", map[string]string{"topic": "launch week"})
	require.NoError(t, err)
	assert.Contains(t, rendered, "280 characters")
	assert.Contains(t, rendered, fmt.Sprintf("at most %d hashtags", 3))
}
