package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// SystemStats is the service-wide content footprint across all
// projects.
type SystemStats struct {
	TotalProjects  int64          `json:"total_projects"`
	TotalContent   int64          `json:"total_content_generated"`
	PostsPublished int64          `json:"total_posts_published"`
	Platforms      map[string]int `json:"platforms"`
}

// ProjectStats summarizes one project's generated and published
// content.
type ProjectStats struct {
	TotalContent   int64          `json:"total_content"`
	PostsPublished int64          `json:"posts_published"`
	Platforms      map[string]int `json:"platforms"`
}

// SystemStats aggregates totals over every project. Deleted projects
// are excluded from the project count but their content still counts;
// history does not disappear with a soft delete.
func (s *Store) SystemStats(ctx context.Context) (*SystemStats, error) {
	defer s.timed("content", "aggregate")()

	projects, err := s.projects.CountDocuments(ctx, bson.M{"status": ProjectStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	total, err := s.content.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	posted, err := s.content.CountDocuments(ctx, bson.M{"status": ContentStatusPosted})
	if err != nil {
		return nil, fmt.Errorf("failed to count posted content: %w", err)
	}
	platforms, err := s.platformCounts(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	return &SystemStats{
		TotalProjects:  projects,
		TotalContent:   total,
		PostsPublished: posted,
		Platforms:      platforms,
	}, nil
}

// ProjectStats aggregates content totals for a single project.
func (s *Store) ProjectStats(ctx context.Context, projectID string) (*ProjectStats, error) {
	defer s.timed("content", "aggregate")()

	oid, err := parseID(projectID)
	if err != nil {
		return nil, err
	}

	total, err := s.content.CountDocuments(ctx, bson.M{"project_id": oid})
	if err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}
	posted, err := s.content.CountDocuments(ctx, bson.M{
		"project_id": oid,
		"status":     ContentStatusPosted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count posted content: %w", err)
	}
	platforms, err := s.platformCounts(ctx, bson.M{"project_id": oid})
	if err != nil {
		return nil, err
	}

	return &ProjectStats{
		TotalContent:   total,
		PostsPublished: posted,
		Platforms:      platforms,
	}, nil
}

// platformCounts groups the content matching the filter by platform.
func (s *Store) platformCounts(ctx context.Context, match bson.M) (map[string]int, error) {
	cur, err := s.content.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$platform"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platform counts: %w", err)
	}

	var rows []struct {
		Platform string `bson:"_id"`
		Count    int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode platform counts: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		key := row.Platform
		if key == "" {
			key = "unknown"
		}
		out[key] += row.Count
	}
	return out, nil
}
