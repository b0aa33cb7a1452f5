package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

// Common errors. Handlers map these to HTTP semantics; nothing below
// the API boundary speaks status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("project name already exists")
	ErrInvalidID     = errors.New("invalid object id")
)

// OpRecorder receives per-operation latency. Satisfied by the metrics
// collector; nil disables recording.
type OpRecorder interface {
	RecordMongoOp(collection, operation string, duration time.Duration)
}

// Config holds the MongoDB connection settings.
type Config struct {
	// URI is the full MongoDB connection string.
	URI string

	// Database name. Defaults to "content_system".
	Database string

	// ConnectTimeout bounds the initial ping. Defaults to 10s.
	ConnectTimeout time.Duration
}

// Store is the MongoDB persistence layer: projects, generated content,
// schedules and analytics snapshots.
type Store struct {
	client    *mongo.Client
	projects  *mongo.Collection
	content   *mongo.Collection
	schedules *mongo.Collection
	analytics *mongo.Collection
	logger    *zap.Logger
	rec       OpRecorder
}

// New connects to MongoDB, verifies the connection, and ensures the
// indexes. Index failures are logged but not fatal; a failed ping is.
func New(ctx context.Context, cfg Config, logger *zap.Logger, rec OpRecorder) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "content_system"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:    client,
		projects:  db.Collection("projects"),
		content:   db.Collection("content"),
		schedules: db.Collection("schedules"),
		analytics: db.Collection("analytics"),
		logger:    logger,
		rec:       rec,
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		// Degraded but usable, matching the lenient startup behavior
		// the deployment expects.
		logger.Error("failed to create indexes", zap.Error(err))
	} else {
		logger.Info("database indexes created successfully")
	}

	return s, nil
}

// EnsureIndexes creates the collection indexes. Safe to call more than
// once; Mongo treats identical index specs as a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("projects.name index: %w", err)
	}

	_, err = s.content.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("content indexes: %w", err)
	}

	_, err = s.schedules.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "schedule_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("schedules indexes: %w", err)
	}

	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// parseID validates a hex ObjectID from the API layer. A malformed ID
// is a caller error, never a driver panic.
func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// timed records operation latency when a recorder is configured.
func (s *Store) timed(collection, operation string) func() {
	start := time.Now()
	return func() {
		if s.rec != nil {
			s.rec.RecordMongoOp(collection, operation, time.Since(start))
		}
	}
}
