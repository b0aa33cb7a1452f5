package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/social"
	"github.com/Arshmittal/Ai-social-media/store"
)

// claimTTL is how long an execution mark blocks a second poller from
// picking up the same schedule. Longer than any execution timeout.
const claimTTL = 10 * time.Minute

// Store is the subset of persistence operations the scheduler drives.
type Store interface {
	GetContent(ctx context.Context, id string) (*store.Content, error)
	UpdateContentStatus(ctx context.Context, id string, status store.ContentStatus, postResult map[string]any) error
	DuePendingSchedules(ctx context.Context) ([]store.Schedule, error)
	SaveSchedule(ctx context.Context, sc *store.Schedule) (string, error)
	UpdateScheduleStatus(ctx context.Context, id string, status store.ScheduleStatus) error
	CancelSchedule(ctx context.Context, id string) error
}

var _ Store = (*store.Store)(nil)

// Poster publishes content to a platform. Satisfied by social.Service.
type Poster interface {
	Post(ctx context.Context, platform string, req *social.PostRequest) (*social.PostResult, error)
}

var _ Poster = (*social.Service)(nil)

// Marker hands out execution marks. Satisfied by cache.Manager; a nil
// marker means every claim succeeds.
type Marker interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// Recorder receives execution metrics. Satisfied by metrics.Collector.
type Recorder interface {
	RecordScheduleExecuted(outcome string)
}

// Scheduler polls for due schedules and publishes them. One poll loop;
// schedules within a tick run sequentially, each under its own timeout,
// and a failing schedule never takes the loop down.
type Scheduler struct {
	cfg    config.SchedulerConfig
	store  Store
	poster Poster
	marks  Marker
	rec    Recorder
	logger *zap.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a scheduler. marks and rec may be nil.
func New(cfg config.SchedulerConfig, st Store, poster Poster, marks Marker, rec Recorder, logger *zap.Logger) *Scheduler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.ExecutionTimeout <= 0 {
		cfg.ExecutionTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:    cfg,
		store:  st,
		poster: poster,
		marks:  marks,
		rec:    rec,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the poll loop. Call once.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("scheduler started",
		zap.Duration("poll_interval", s.cfg.PollInterval),
		zap.Duration("execution_timeout", s.cfg.ExecutionTimeout))
}

// Stop shuts the poll loop down and waits for an in-flight tick.
func (s *Scheduler) Stop() {
	close(s.done)
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.done:
			return
		}
	}
}

// tick loads everything due and executes it in order.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExecutionTimeout)
	due, err := s.store.DuePendingSchedules(ctx)
	cancel()
	if err != nil {
		s.logger.Error("failed to list due schedules", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Info("executing due schedules", zap.Int("count", len(due)))
	for i := range due {
		s.execute(&due[i])
	}
}

// execute runs one due schedule under its own timeout.
func (s *Scheduler) execute(sc *store.Schedule) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExecutionTimeout)
	defer cancel()

	id := sc.ID.Hex()
	logger := s.logger.With(
		zap.String("schedule_id", id),
		zap.String("content_id", sc.ContentID.Hex()))

	if !s.claim(ctx, id) {
		logger.Info("schedule already claimed, skipping")
		return
	}

	outcome := s.executeOnce(ctx, sc, logger)
	if s.rec != nil {
		s.rec.RecordScheduleExecuted(outcome)
	}
}

func (s *Scheduler) executeOnce(ctx context.Context, sc *store.Schedule, logger *zap.Logger) string {
	id := sc.ID.Hex()

	doc, err := s.store.GetContent(ctx, sc.ContentID.Hex())
	if err != nil {
		logger.Error("content missing for schedule", zap.Error(err))
		s.fail(ctx, id, logger)
		return "failed"
	}

	platform := sc.Platform
	if platform == "" {
		platform = doc.Platform
	}

	result, err := s.poster.Post(ctx, platform, &social.PostRequest{
		Content:     doc.Content,
		ContentType: doc.ContentType,
		MediaPath:   doc.MediaPath,
	})
	if err != nil {
		logger.Error("scheduled post failed",
			zap.String("platform", platform), zap.Error(err))
		s.fail(ctx, id, logger)
		return "failed"
	}

	if err := s.store.UpdateContentStatus(ctx, sc.ContentID.Hex(), store.ContentStatusPosted, result.AsMap()); err != nil {
		logger.Error("failed to mark content posted", zap.Error(err))
	}
	if err := s.store.UpdateScheduleStatus(ctx, id, store.ScheduleStatusCompleted); err != nil {
		logger.Error("failed to mark schedule completed", zap.Error(err))
	}

	logger.Info("scheduled content posted",
		zap.String("platform", platform),
		zap.String("post_id", result.PostID))
	return "completed"
}

func (s *Scheduler) fail(ctx context.Context, scheduleID string, logger *zap.Logger) {
	if err := s.store.UpdateScheduleStatus(ctx, scheduleID, store.ScheduleStatusFailed); err != nil {
		logger.Error("failed to mark schedule failed", zap.Error(err))
	}
}

// claim takes the execution mark for a schedule. Cache trouble must
// not stop posting, so errors count as a successful claim.
func (s *Scheduler) claim(ctx context.Context, scheduleID string) bool {
	if s.marks == nil {
		return true
	}
	ok, err := s.marks.SetNX(ctx, "schedule:exec:"+scheduleID, "1", claimTTL)
	if err != nil {
		s.logger.Warn("execution mark unavailable", zap.Error(err))
		return true
	}
	return ok
}

// SchedulePost validates the content and inserts a pending schedule.
// An empty platform defaults to the content's platform; a zero time
// defaults to the platform's next optimal slot.
func (s *Scheduler) SchedulePost(ctx context.Context, contentID string, at time.Time, platform string) (string, error) {
	doc, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		return "", err
	}

	if platform == "" {
		platform = doc.Platform
	}
	platform = content.NormalizePlatform(platform)

	if at.IsZero() {
		at = NextOptimalTime(platform, time.Now().UTC())
	}

	id, err := s.store.SaveSchedule(ctx, &store.Schedule{
		ContentID:    doc.ID,
		ScheduleTime: at.UTC(),
		Platform:     platform,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("content scheduled",
		zap.String("schedule_id", id),
		zap.String("content_id", contentID),
		zap.String("platform", platform),
		zap.Time("schedule_time", at.UTC()))
	return id, nil
}

// Cancel cancels a schedule that has not executed yet.
func (s *Scheduler) Cancel(ctx context.Context, scheduleID string) error {
	return s.store.CancelSchedule(ctx, scheduleID)
}
