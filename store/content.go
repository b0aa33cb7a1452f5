package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

// SaveContent inserts generated content for a project and returns its
// hex ID. New content always starts as a draft.
func (s *Store) SaveContent(ctx context.Context, projectID string, c *Content) (string, error) {
	defer s.timed("content", "insert")()

	oid, err := parseID(projectID)
	if err != nil {
		return "", err
	}

	c.ID = bson.NewObjectID()
	c.ProjectID = oid
	c.Status = ContentStatusDraft
	c.CreatedAt = time.Now().UTC()
	if c.Hashtags == nil {
		c.Hashtags = []string{}
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}

	if _, err := s.content.InsertOne(ctx, c); err != nil {
		return "", fmt.Errorf("failed to save content: %w", err)
	}

	s.logger.Info("content saved",
		zap.String("content_id", c.ID.Hex()),
		zap.String("project_id", projectID),
		zap.String("platform", c.Platform))
	return c.ID.Hex(), nil
}

// GetContent returns a content document by hex ID.
func (s *Store) GetContent(ctx context.Context, id string) (*Content, error) {
	defer s.timed("content", "find_one")()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var c Content
	err = s.content.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("content %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &c, nil
}

// ListProjectContent returns every content document for a project,
// never nil.
func (s *Store) ListProjectContent(ctx context.Context, projectID string) ([]Content, error) {
	defer s.timed("content", "find")()

	oid, err := parseID(projectID)
	if err != nil {
		return nil, err
	}

	cur, err := s.content.Find(ctx, bson.M{"project_id": oid})
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}

	out := make([]Content, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}
	return out, nil
}

// UpdateContentStatus moves content through its lifecycle. A non-nil
// postResult marks the publish moment: the raw platform response is
// stored and posted_at is stamped.
func (s *Store) UpdateContentStatus(ctx context.Context, id string, status ContentStatus, postResult map[string]any) error {
	defer s.timed("content", "update_one")()

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	set := bson.M{
		"status":     status,
		"updated_at": now,
	}
	if postResult != nil {
		set["post_result"] = postResult
		set["posted_at"] = now
	}

	res, err := s.content.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update content status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("content %s: %w", id, ErrNotFound)
	}

	s.logger.Info("content status updated",
		zap.String("content_id", id),
		zap.String("status", string(status)))
	return nil
}

// DeleteProjectContent removes all content for a project. Used when a
// project is purged together with its vector collection.
func (s *Store) DeleteProjectContent(ctx context.Context, projectID string) (int64, error) {
	defer s.timed("content", "delete_many")()

	oid, err := parseID(projectID)
	if err != nil {
		return 0, err
	}

	res, err := s.content.DeleteMany(ctx, bson.M{"project_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete project content: %w", err)
	}
	return res.DeletedCount, nil
}
