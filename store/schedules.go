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

// SaveSchedule inserts a pending schedule and returns its hex ID. The
// schedule time is normalized to UTC so the due query compares like
// with like.
func (s *Store) SaveSchedule(ctx context.Context, sc *Schedule) (string, error) {
	defer s.timed("schedules", "insert")()

	sc.ID = bson.NewObjectID()
	sc.Status = ScheduleStatusPending
	sc.ScheduleTime = sc.ScheduleTime.UTC()
	sc.CreatedAt = time.Now().UTC()

	if _, err := s.schedules.InsertOne(ctx, sc); err != nil {
		return "", fmt.Errorf("failed to save schedule: %w", err)
	}

	s.logger.Info("schedule saved",
		zap.String("schedule_id", sc.ID.Hex()),
		zap.String("content_id", sc.ContentID.Hex()),
		zap.Time("schedule_time", sc.ScheduleTime))
	return sc.ID.Hex(), nil
}

// GetSchedule returns a schedule by hex ID.
func (s *Store) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	defer s.timed("schedules", "find_one")()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var sc Schedule
	err = s.schedules.FindOne(ctx, bson.M{"_id": oid}).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &sc, nil
}

// DuePendingSchedules returns pending schedules whose time has come,
// never nil. The poll loop calls this every tick.
func (s *Store) DuePendingSchedules(ctx context.Context) ([]Schedule, error) {
	defer s.timed("schedules", "find")()

	filter := bson.M{
		"status":        ScheduleStatusPending,
		"schedule_time": bson.M{"$lte": time.Now().UTC()},
	}
	cur, err := s.schedules.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}

	out := make([]Schedule, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return out, nil
}

// UpdateScheduleStatus records the outcome of an execution attempt and
// stamps executed_at.
func (s *Store) UpdateScheduleStatus(ctx context.Context, id string, status ScheduleStatus) error {
	defer s.timed("schedules", "update_one")()

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := s.schedules.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"status":      status,
		"executed_at": now,
	}})
	if err != nil {
		return fmt.Errorf("failed to update schedule status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}

	s.logger.Info("schedule status updated",
		zap.String("schedule_id", id),
		zap.String("status", string(status)))
	return nil
}

// CancelSchedule cancels a schedule only while it is still pending.
// The status guard in the filter makes the operation race-free against
// a concurrent executor picking the schedule up.
func (s *Store) CancelSchedule(ctx context.Context, id string) error {
	defer s.timed("schedules", "update_one")()

	oid, err := parseID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": ScheduleStatusPending}
	res, err := s.schedules.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":      ScheduleStatusCancelled,
		"executed_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to cancel schedule: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("pending schedule %s: %w", id, ErrNotFound)
	}

	s.logger.Info("schedule cancelled", zap.String("schedule_id", id))
	return nil
}

// ListSchedulesByContent returns all schedules for a content document,
// never nil.
func (s *Store) ListSchedulesByContent(ctx context.Context, contentID string) ([]Schedule, error) {
	defer s.timed("schedules", "find")()

	oid, err := parseID(contentID)
	if err != nil {
		return nil, err
	}

	cur, err := s.schedules.Find(ctx, bson.M{"content_id": oid})
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	out := make([]Schedule, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %w", err)
	}
	return out, nil
}

// SaveAnalytics stores a snapshot of platform metrics for a content
// document. Write-only; readers aggregate from the vector index.
func (s *Store) SaveAnalytics(ctx context.Context, contentID string, platform string, metrics map[string]any) (string, error) {
	defer s.timed("analytics", "insert")()

	oid, err := parseID(contentID)
	if err != nil {
		return "", err
	}

	rec := AnalyticsRecord{
		ID:         bson.NewObjectID(),
		ContentID:  oid,
		Platform:   platform,
		Metrics:    metrics,
		RecordedAt: time.Now().UTC(),
	}
	if rec.Metrics == nil {
		rec.Metrics = map[string]any{}
	}

	if _, err := s.analytics.InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to save analytics: %w", err)
	}
	return rec.ID.Hex(), nil
}
