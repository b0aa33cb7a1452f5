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

// CreateProject inserts a new project and returns its hex ID. Names
// are unique across the collection.
func (s *Store) CreateProject(ctx context.Context, p *Project) (string, error) {
	defer s.timed("projects", "insert")()

	now := time.Now().UTC()
	p.ID = bson.NewObjectID()
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	if p.Platforms == nil {
		p.Platforms = []string{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.projects.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		return "", fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("name", p.Name))
	return p.ID.Hex(), nil
}

// GetProject returns a project by hex ID.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	defer s.timed("projects", "find_one")()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var p Project
	err = s.projects.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all active projects. Deleted projects are
// filtered out; the result is never nil.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	defer s.timed("projects", "find")()

	cur, err := s.projects.Find(ctx, bson.M{"status": ProjectStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]Project, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return out, nil
}

// UpdateProject applies a partial update. Returns ErrNotFound when the
// project does not exist.
func (s *Store) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) error {
	defer s.timed("projects", "update_one")()

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.BrandVoice != nil {
		set["brand_voice"] = *upd.BrandVoice
	}
	if upd.Platforms != nil {
		set["platforms"] = upd.Platforms
	}
	if upd.Industry != nil {
		set["industry"] = *upd.Industry
	}
	if upd.TargetAudience != nil {
		set["target_audience"] = *upd.TargetAudience
	}

	res, err := s.projects.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, *upd.Name)
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteProject soft-deletes a project; its content and history stay
// queryable by ID.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	defer s.timed("projects", "update_one")()

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.projects.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"status":     ProjectStatusDeleted,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}

	s.logger.Info("project deleted", zap.String("project_id", id))
	return nil
}
