package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/types"
)

func TestInstagramPost(t *testing.T) {
	fixed := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)

	t.Run("returns a stub result for media posts", func(t *testing.T) {
		ig := NewInstagram(config.InstagramConfig{AccessToken: "ig-token"}, nil)
		ig.now = func() time.Time { return fixed }

		result, err := ig.Post(context.Background(), &PostRequest{
			Content:   "Look at this",
			MediaPath: "/tmp/shot.jpg",
		})
		require.NoError(t, err)

		assert.Equal(t, "instagram", result.Platform)
		assert.Equal(t, "ig_1787481000000", result.PostID)
		assert.Equal(t, fixed, result.PostedAt)
		assert.Equal(t, instagramNote, result.Note)
	})

	t.Run("media is required", func(t *testing.T) {
		ig := NewInstagram(config.InstagramConfig{AccessToken: "ig-token"}, nil)
		_, err := ig.Post(context.Background(), &PostRequest{Content: "text only"})
		require.Error(t, err)
		assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "require media content")
	})

	t.Run("missing token rejected", func(t *testing.T) {
		ig := NewInstagram(config.InstagramConfig{}, nil)
		_, err := ig.Post(context.Background(), &PostRequest{Content: "x", MediaPath: "/tmp/shot.jpg"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "INSTAGRAM_ACCESS_TOKEN")
	})
}

func TestInstagramTestConnection(t *testing.T) {
	t.Run("configured token", func(t *testing.T) {
		ig := NewInstagram(config.InstagramConfig{AccessToken: "ig-token"}, nil)
		status, err := ig.TestConnection(context.Background())
		require.NoError(t, err)
		assert.True(t, status.OK)
	})

	t.Run("missing token", func(t *testing.T) {
		ig := NewInstagram(config.InstagramConfig{}, nil)
		status, err := ig.TestConnection(context.Background())
		require.NoError(t, err)
		assert.False(t, status.OK)
		assert.Equal(t, "instagram token not configured", status.Message)
	})
}

func TestInstagramAnalytics(t *testing.T) {
	ig := NewInstagram(config.InstagramConfig{AccessToken: "ig-token"}, nil)
	analytics, err := ig.Analytics(context.Background(), "ig_123")
	require.NoError(t, err)
	assert.Equal(t, "instagram", analytics["platform"])
	assert.Contains(t, analytics["note"], "Business API")
}
