package vector

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/llm/embedding"
)

// DefaultSearchLimit is the number of hits returned when the caller
// does not ask for a specific count.
const DefaultSearchLimit = 5

// scrollPageSize caps how many points the analytics path inspects.
const scrollPageSize = 1000

// Recorder receives index operation outcomes. Satisfied by
// metrics.Collector.
type Recorder interface {
	RecordVectorOp(operation, status string)
	RecordEmbeddingRequest(provider, status string)
}

// SimilarContent is one semantic search hit.
type SimilarContent struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// ProjectAnalytics summarizes a project's indexed content.
type ProjectAnalytics struct {
	TotalContent int64          `json:"total_content"`
	Platforms    map[string]int `json:"platforms"`
	VectorSize   int            `json:"vector_size"`
}

// ContentIndex ties the embedding provider to the vector store. Each
// project gets its own collection so similarity search never crosses
// project boundaries.
type ContentIndex struct {
	client   *Client
	embedder embedding.Provider
	logger   *zap.Logger
	rec      Recorder
}

// NewContentIndex builds the index over a Qdrant client and an
// embedding provider.
func NewContentIndex(client *Client, embedder embedding.Provider, logger *zap.Logger, rec Recorder) *ContentIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentIndex{
		client:   client,
		embedder: embedder,
		logger:   logger,
		rec:      rec,
	}
}

// PointID derives the deterministic point ID for a piece of content.
// The MD5 digest is folded into a UUID because Qdrant only accepts
// unsigned ints or UUIDs as point IDs. Same content, same ID: upserts
// dedupe instead of piling up near-duplicates.
func PointID(content string) string {
	sum := md5.Sum([]byte(content)) //nolint:gosec // content addressing, not cryptography
	digest := hex.EncodeToString(sum[:])
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(digest)).String()
}

func collectionName(projectID string) string {
	return "project_" + projectID
}

// Index embeds text and upserts it into the project's collection. An
// empty text after trimming is skipped silently, matching how drafts
// with no body are handled upstream.
func (ix *ContentIndex) Index(ctx context.Context, projectID, text string, meta map[string]any) error {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		ix.logger.Warn("skipping empty content", zap.String("project_id", projectID))
		return nil
	}

	name := collectionName(projectID)
	if err := ix.client.EnsureCollection(ctx, name); err != nil {
		ix.record("index", "error")
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	vec := ix.embed(ctx, normalized)
	point := Point{
		ID:     PointID(normalized),
		Vector: vec,
		Payload: map[string]any{
			"content":      normalized,
			"metadata":     meta,
			"timestamp":    metaString(meta, "created_at"),
			"platform":     metaString(meta, "platform"),
			"content_type": metaString(meta, "content_type"),
		},
	}

	if err := ix.client.Upsert(ctx, name, []Point{point}); err != nil {
		ix.record("index", "error")
		return err
	}

	ix.record("index", "success")
	ix.logger.Info("content indexed",
		zap.String("project_id", projectID),
		zap.String("point_id", point.ID))
	return nil
}

// Search embeds the query and returns the nearest indexed content. A
// project with no collection yet yields an empty result, not an error.
func (ix *ContentIndex) Search(ctx context.Context, projectID, query string, limit int) ([]SimilarContent, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vec := ix.embed(ctx, query)
	hits, err := ix.client.Search(ctx, collectionName(projectID), vec, limit)
	if errors.Is(err, ErrCollectionNotFound) {
		return make([]SimilarContent, 0), nil
	}
	if err != nil {
		ix.record("search", "error")
		return nil, err
	}

	out := make([]SimilarContent, 0, len(hits))
	for _, hit := range hits {
		sc := SimilarContent{
			Score:    hit.Score,
			Metadata: map[string]any{},
		}
		if s, ok := hit.Payload["content"].(string); ok {
			sc.Content = s
		}
		if m, ok := hit.Payload["metadata"].(map[string]any); ok {
			sc.Metadata = m
		}
		out = append(out, sc)
	}

	ix.record("search", "success")
	return out, nil
}

// Analytics reports the indexed volume and the per-platform breakdown
// for a project. A project with no collection reports zeros.
func (ix *ContentIndex) Analytics(ctx context.Context, projectID string) (*ProjectAnalytics, error) {
	name := collectionName(projectID)

	info, err := ix.client.GetCollection(ctx, name)
	if errors.Is(err, ErrCollectionNotFound) {
		return &ProjectAnalytics{
			Platforms:  map[string]int{},
			VectorSize: VectorSize,
		}, nil
	}
	if err != nil {
		ix.record("analytics", "error")
		return nil, err
	}

	points, err := ix.client.Scroll(ctx, name, scrollPageSize)
	if err != nil {
		ix.record("analytics", "error")
		return nil, err
	}

	platforms := map[string]int{}
	for _, p := range points {
		platform := metaString(p.Payload, "platform")
		if platform == "" {
			platform = "unknown"
		}
		platforms[platform]++
	}

	ix.record("analytics", "success")
	return &ProjectAnalytics{
		TotalContent: info.PointsCount,
		Platforms:    platforms,
		VectorSize:   info.Config.Params.Vectors.Size,
	}, nil
}

// EnsureProject creates the project's collection if it does not exist
// yet. Called at project creation so the first search does not race
// the first index.
func (ix *ContentIndex) EnsureProject(ctx context.Context, projectID string) error {
	if err := ix.client.EnsureCollection(ctx, collectionName(projectID)); err != nil {
		ix.record("ensure", "error")
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	ix.record("ensure", "success")
	return nil
}

// DeleteProject drops the project's collection. Deleting a collection
// that never existed is not an error.
func (ix *ContentIndex) DeleteProject(ctx context.Context, projectID string) error {
	err := ix.client.DeleteCollection(ctx, collectionName(projectID))
	if errors.Is(err, ErrCollectionNotFound) {
		return nil
	}
	if err != nil {
		ix.record("delete", "error")
		return err
	}
	ix.record("delete", "success")
	return nil
}

// embed converts text to a vector, degrading to the zero vector when
// the provider fails. Indexing must not fail a content request just
// because the embedding backend is down; the zero vector keeps the
// payload searchable by scroll and replaceable by a later upsert.
func (ix *ContentIndex) embed(ctx context.Context, text string) []float64 {
	vec, err := ix.embedder.EmbedQuery(ctx, text)
	if err != nil {
		ix.logger.Warn("embedding failed, falling back to zero vector", zap.Error(err))
		if ix.rec != nil {
			ix.rec.RecordEmbeddingRequest(ix.embedder.Name(), "error")
		}
		return make([]float64, VectorSize)
	}
	if ix.rec != nil {
		ix.rec.RecordEmbeddingRequest(ix.embedder.Name(), "success")
	}
	return vec
}

func (ix *ContentIndex) record(operation, status string) {
	if ix.rec != nil {
		ix.rec.RecordVectorOp(operation, status)
	}
}

func metaString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
