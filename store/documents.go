package store

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectStatusActive is the default state; only active projects
	// are listed.
	ProjectStatusActive ProjectStatus = "active"

	// ProjectStatusDeleted marks a soft-deleted project. Documents are
	// never removed.
	ProjectStatusDeleted ProjectStatus = "deleted"
)

// ContentStatus is the lifecycle state of a content document.
type ContentStatus string

const (
	// ContentStatusDraft is the state content is created in.
	ContentStatusDraft ContentStatus = "draft"

	// ContentStatusPosted is set after a successful publish.
	ContentStatusPosted ContentStatus = "posted"
)

// ScheduleStatus is the lifecycle state of a scheduled post.
type ScheduleStatus string

const (
	ScheduleStatusPending   ScheduleStatus = "pending"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusFailed    ScheduleStatus = "failed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// IsTerminal reports whether the schedule will never execute again.
func (s ScheduleStatus) IsTerminal() bool {
	switch s {
	case ScheduleStatusCompleted, ScheduleStatusFailed, ScheduleStatusCancelled:
		return true
	default:
		return false
	}
}

// Project is a brand/campaign container that content is generated for.
type Project struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string        `bson:"name" json:"name"`
	Description    string        `bson:"description" json:"description"`
	BrandVoice     string        `bson:"brand_voice" json:"brand_voice"`
	Platforms      []string      `bson:"platforms" json:"platforms"`
	Industry       string        `bson:"industry" json:"industry"`
	TargetAudience string        `bson:"target_audience" json:"target_audience"`
	Status         ProjectStatus `bson:"status" json:"status"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// ProjectUpdate is a partial update for a project. Nil fields are left
// untouched.
type ProjectUpdate struct {
	Name           *string
	Description    *string
	BrandVoice     *string
	Platforms      []string
	Industry       *string
	TargetAudience *string
}

// Content is one generated piece of platform content.
type Content struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProjectID   bson.ObjectID  `bson:"project_id" json:"project_id"`
	Content     string         `bson:"content" json:"content"`
	Platform    string         `bson:"platform" json:"platform"`
	ContentType string         `bson:"content_type" json:"content_type"`
	Hashtags    []string       `bson:"hashtags" json:"hashtags"`
	Status      ContentStatus  `bson:"status" json:"status"`
	MediaPath   string         `bson:"media_path,omitempty" json:"media_path,omitempty"`
	Metadata    map[string]any `bson:"metadata" json:"metadata"`
	PostResult  map[string]any `bson:"post_result,omitempty" json:"post_result,omitempty"`
	CreatedAt   time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	PostedAt    *time.Time     `bson:"posted_at,omitempty" json:"posted_at,omitempty"`
}

// Schedule is a pending or executed publish of a content document.
type Schedule struct {
	ID           bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	ContentID    bson.ObjectID  `bson:"content_id" json:"content_id"`
	ScheduleTime time.Time      `bson:"schedule_time" json:"schedule_time"`
	Platform     string         `bson:"platform" json:"platform"`
	Status       ScheduleStatus `bson:"status" json:"status"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	ExecutedAt   *time.Time     `bson:"executed_at,omitempty" json:"executed_at,omitempty"`
}

// AnalyticsRecord is a snapshot of platform metrics for one piece of
// posted content.
type AnalyticsRecord struct {
	ID         bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	ContentID  bson.ObjectID  `bson:"content_id" json:"content_id"`
	Platform   string         `bson:"platform" json:"platform"`
	Metrics    map[string]any `bson:"metrics" json:"metrics"`
	RecordedAt time.Time      `bson:"recorded_at" json:"recorded_at"`
}
