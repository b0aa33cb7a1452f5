package content

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Arshmittal/Ai-social-media/llm"
	"github.com/Arshmittal/Ai-social-media/llm/tokenizer"
)

// maxConcurrentGenerations bounds the multi-platform fan-out.
const maxConcurrentGenerations = 4

// threadSeparator splits the parts of a twitter thread.
const threadSeparator = "\n---\n"

// Request describes one piece of content to generate.
type Request struct {
	ProjectID    string
	Topic        string
	Platform     string
	ContentType  string
	BrandVoice   string
	Context      string
	IncludeMedia bool
	MediaPath    string
}

// Draft is generated content, post-processed and ready to persist.
type Draft struct {
	Content     string         `json:"content"`
	Hashtags    []string       `json:"hashtags"`
	Platform    string         `json:"platform"`
	ContentType string         `json:"content_type"`
	Topic       string         `json:"topic"`
	MediaPath   string         `json:"media_path,omitempty"`
	Metadata    map[string]any `json:"metadata"`
}

// Recorder receives generation metrics. Satisfied by
// metrics.Collector.
type Recorder interface {
	RecordContentGenerated(platform, contentType, status string, duration time.Duration)
	RecordLLMRequest(provider, model, status string, duration time.Duration, promptTokens, completionTokens int)
}

// Generator runs the prompt -> completion -> post-process pipeline.
type Generator struct {
	provider llm.Provider
	model    string
	logger   *zap.Logger
	rec      Recorder
}

// NewGenerator builds a Generator on top of an LLM provider. model may
// be empty, in which case the provider's default applies and token
// counting falls back to the estimator. A nil provider produces only
// deterministic fallback drafts.
func NewGenerator(provider llm.Provider, model string, logger *zap.Logger, rec Recorder) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		model:    model,
		logger:   logger,
		rec:      rec,
	}
}

// Generate produces one draft. An LLM failure is absorbed into
// deterministic fallback content; only invalid input is an error.
func (g *Generator) Generate(ctx context.Context, req Request) (*Draft, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}

	platform := NormalizePlatform(req.Platform)
	contentType := strings.ToLower(req.ContentType)
	if contentType == "" {
		contentType = "post"
	}
	limit := LimitFor(platform, contentType)

	prompt := BuildPrompt(PromptInput{
		Platform:     platform,
		ContentType:  contentType,
		Topic:        req.Topic,
		BrandVoice:   req.BrandVoice,
		Context:      req.Context,
		IncludeMedia: req.IncludeMedia,
	})
	promptTokens, _ := tokenizer.GetTokenizerOrEstimator(g.model).CountTokens(prompt)

	start := time.Now()
	var (
		text     string
		fallback bool
		duration time.Duration
	)
	if g.provider == nil {
		// No provider configured; every draft is deterministic.
		fallback = true
		text = FallbackContent(req.Topic, platform, contentType, limit, req.IncludeMedia)
	} else if resp, err := g.provider.Completion(ctx, &llm.ChatRequest{
		Model:    g.model,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	}); err != nil {
		duration = time.Since(start)
		fallback = true
		g.logger.Warn("generation failed, using fallback content",
			zap.String("platform", platform),
			zap.String("content_type", contentType),
			zap.Error(err))
		if g.rec != nil {
			g.rec.RecordLLMRequest(g.provider.Name(), g.model, "error", duration, promptTokens, 0)
		}
		text = FallbackContent(req.Topic, platform, contentType, limit, req.IncludeMedia)
	} else {
		duration = time.Since(start)
		if g.rec != nil {
			g.rec.RecordLLMRequest(g.provider.Name(), g.model, "success", duration,
				resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}
		text = CleanAgentOutput(resp.Text())
		if strings.TrimSpace(text) == "" {
			fallback = true
			text = FallbackContent(req.Topic, platform, contentType, limit, req.IncludeMedia)
		}
	}

	if platform == "twitter" && contentType == "thread" {
		text = postProcessThread(text, limit)
	} else {
		text = PostProcess(text, limit)
	}

	status := "success"
	if fallback {
		status = "fallback"
	}
	if g.rec != nil {
		g.rec.RecordContentGenerated(platform, contentType, status, time.Since(start))
	}
	g.logger.Info("content generated",
		zap.String("platform", platform),
		zap.String("content_type", contentType),
		zap.Int("chars", len([]rune(text))),
		zap.Int("prompt_tokens", promptTokens),
		zap.Bool("fallback", fallback),
		zap.Duration("duration", duration))

	return &Draft{
		Content:     text,
		Hashtags:    ExtractHashtags(text),
		Platform:    platform,
		ContentType: contentType,
		Topic:       req.Topic,
		MediaPath:   req.MediaPath,
		Metadata: map[string]any{
			"generated_at":  time.Now().UTC().Format(time.RFC3339),
			"prompt_tokens": promptTokens,
			"fallback":      fallback,
		},
	}, nil
}

// GenerateForPlatforms fans one request out across platforms and
// collects the drafts per platform.
func (g *Generator) GenerateForPlatforms(ctx context.Context, req Request, platforms []string) (map[string]*Draft, error) {
	if len(platforms) == 0 {
		return nil, fmt.Errorf("at least one platform is required")
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentGenerations)

	var mu sync.Mutex
	drafts := make(map[string]*Draft, len(platforms))

	for _, platform := range platforms {
		eg.Go(func() error {
			perReq := req
			perReq.Platform = platform
			draft, err := g.Generate(egCtx, perReq)
			if err != nil {
				return fmt.Errorf("%s: %w", platform, err)
			}
			mu.Lock()
			drafts[NormalizePlatform(platform)] = draft
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return drafts, nil
}

// postProcessThread applies post-processing per thread part so the
// per-tweet limit binds each tweet, not the thread as a whole.
func postProcessThread(text string, perPartLimit int) string {
	parts := splitThread(text)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		processed := PostProcess(part, perPartLimit)
		if processed != "" {
			out = append(out, processed)
		}
	}
	return strings.Join(out, threadSeparator)
}

// splitThread splits thread text on separator lines made of dashes.
func splitThread(text string) []string {
	lines := strings.Split(text, "\n")
	var parts []string
	var current []string
	flush := func() {
		part := strings.TrimSpace(strings.Join(current, "\n"))
		if part != "" {
			parts = append(parts, part)
		}
		current = current[:0]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && strings.Trim(trimmed, "-") == "" && len(trimmed) >= 3 {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	if len(parts) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return parts
}
