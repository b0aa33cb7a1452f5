package social

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/types"
)

type stubPublisher struct {
	name    string
	lastReq *PostRequest
	result  *PostResult
	err     error
	status  *ConnectionStatus
	metrics map[string]any
}

func (s *stubPublisher) Name() string { return s.name }

func (s *stubPublisher) Post(_ context.Context, req *PostRequest) (*PostResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubPublisher) TestConnection(context.Context) (*ConnectionStatus, error) {
	return s.status, nil
}

func (s *stubPublisher) Analytics(context.Context, string) (map[string]any, error) {
	return s.metrics, nil
}

type publishRecorder struct {
	events []string
}

func (r *publishRecorder) RecordPostPublished(platform, status string) {
	r.events = append(r.events, platform+"/"+status)
}

func TestServicePost(t *testing.T) {
	t.Run("normalizes the platform and formats before delegating", func(t *testing.T) {
		rec := &publishRecorder{}
		svc := NewService(config.SocialConfig{}, nil, rec)
		stub := &stubPublisher{name: "twitter", result: &PostResult{Platform: "twitter", PostID: "1"}}
		svc.Register(stub)

		req := &PostRequest{Content: "**Big**   news here", ContentType: "post"}
		result, err := svc.Post(context.Background(), "X", req)
		require.NoError(t, err)

		require.NotNil(t, stub.lastReq)
		assert.Equal(t, "Big news here", stub.lastReq.Content)
		assert.Equal(t, "**Big**   news here", req.Content, "caller's request is not mutated")
		assert.Equal(t, "1", result.PostID)
		assert.Equal(t, []string{"twitter/success"}, rec.events)
	})

	t.Run("thread content reaches the publisher unformatted", func(t *testing.T) {
		svc := NewService(config.SocialConfig{}, nil, nil)
		stub := &stubPublisher{name: "twitter", result: &PostResult{}}
		svc.Register(stub)

		_, err := svc.Post(context.Background(), "twitter", &PostRequest{
			Content:     "One\n---\nTwo",
			ContentType: "thread",
		})
		require.NoError(t, err)
		assert.Equal(t, "One\n---\nTwo", stub.lastReq.Content)
	})

	t.Run("publisher failure recorded and propagated", func(t *testing.T) {
		rec := &publishRecorder{}
		svc := NewService(config.SocialConfig{}, nil, rec)
		svc.Register(&stubPublisher{
			name: "linkedin",
			err:  types.NewError(types.ErrUnauthorized, "bad token"),
		})

		_, err := svc.Post(context.Background(), "linkedin", &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Equal(t, types.ErrUnauthorized, types.GetErrorCode(err))
		assert.Equal(t, []string{"linkedin/error"}, rec.events)
	})

	t.Run("unsupported platform", func(t *testing.T) {
		svc := NewService(config.SocialConfig{}, nil, nil)
		_, err := svc.Post(context.Background(), "myspace", &PostRequest{Content: "x"})
		require.Error(t, err)
		assert.Equal(t, types.ErrInvalidRequest, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "unsupported platform: myspace")
	})
}

func TestServicePlatforms(t *testing.T) {
	svc := NewService(config.SocialConfig{}, nil, nil)
	assert.Equal(t, []string{"facebook", "instagram", "linkedin", "twitter"}, svc.Platforms())
}

func TestServicePublisherLookup(t *testing.T) {
	svc := NewService(config.SocialConfig{}, nil, nil)

	p, ok := svc.Publisher("X")
	require.True(t, ok)
	assert.Equal(t, "twitter", p.Name())

	_, ok = svc.Publisher("myspace")
	assert.False(t, ok)
}

func TestServiceTestConnection(t *testing.T) {
	svc := NewService(config.SocialConfig{}, nil, nil)
	svc.Register(&stubPublisher{
		name:   "facebook",
		status: &ConnectionStatus{OK: true, Message: "fine"},
	})

	status, err := svc.TestConnection(context.Background(), "facebook")
	require.NoError(t, err)
	assert.True(t, status.OK)

	_, err = svc.TestConnection(context.Background(), "myspace")
	require.Error(t, err)
}

func TestServiceAnalytics(t *testing.T) {
	svc := NewService(config.SocialConfig{}, nil, nil)
	svc.Register(&stubPublisher{
		name:    "twitter",
		metrics: map[string]any{"like_count": 7},
	})

	analytics, err := svc.Analytics(context.Background(), "x", "1234")
	require.NoError(t, err)
	assert.Equal(t, 7, analytics["like_count"])

	_, err = svc.Analytics(context.Background(), "myspace", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics not supported")
}
