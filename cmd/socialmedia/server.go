package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/api/handlers"
	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/content"
	"github.com/Arshmittal/Ai-social-media/internal/cache"
	"github.com/Arshmittal/Ai-social-media/internal/metrics"
	"github.com/Arshmittal/Ai-social-media/internal/server"
	"github.com/Arshmittal/Ai-social-media/internal/telemetry"
	"github.com/Arshmittal/Ai-social-media/llm"
	"github.com/Arshmittal/Ai-social-media/llm/embedding"
	llmfactory "github.com/Arshmittal/Ai-social-media/llm/factory"
	"github.com/Arshmittal/Ai-social-media/llm/retry"
	"github.com/Arshmittal/Ai-social-media/mcp"
	"github.com/Arshmittal/Ai-social-media/scheduler"
	"github.com/Arshmittal/Ai-social-media/social"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/vector"
)

// Server wires the content service together: persistence, cache,
// vector index, LLM pipeline, social publishers, scheduler, MCP
// endpoint, and the HTTP surface.
type Server struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger

	collector *metrics.Collector
	otel      *telemetry.Providers

	store        *store.Store
	cache        *cache.Manager
	vectorClient *vector.Client
	index        *vector.ContentIndex
	generator    *content.Generator
	socialSvc    *social.Service
	scheduler    *scheduler.Scheduler

	httpManager    *server.Manager
	metricsManager *server.Manager
	mcpManager     *server.Manager

	healthHandler    *handlers.HealthHandler
	hotReloadManager *config.HotReloadManager
	configAPIHandler *config.ConfigAPIHandler

	rateLimiterCancel context.CancelFunc
}

// NewServer holds the dependencies until Start builds them. configPath
// enables config hot reload when non-empty.
func NewServer(cfg *config.Config, configPath string, logger *zap.Logger, otel *telemetry.Providers) *Server {
	return &Server{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		otel:       otel,
	}
}

// Start builds every component and launches the HTTP, metrics, and
// MCP servers plus the scheduler. It is non-blocking; follow with
// WaitForShutdown.
func (s *Server) Start(ctx context.Context) error {
	s.collector = metrics.NewCollector("socialmedia", s.logger)

	if err := s.initBackends(ctx); err != nil {
		return err
	}
	s.initPipeline()
	if err := s.initHotReloadManager(ctx); err != nil {
		return fmt.Errorf("failed to init hot reload manager: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	if s.cfg.MCP.Enabled {
		if err := s.startMCPServer(); err != nil {
			return fmt.Errorf("failed to start MCP server: %w", err)
		}
	}

	if s.cfg.Scheduler.Enabled {
		s.scheduler.Start()
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("mcp_enabled", s.cfg.MCP.Enabled),
		zap.Bool("scheduler_enabled", s.cfg.Scheduler.Enabled),
		zap.Bool("hot_reload_enabled", s.configPath != ""),
	)
	return nil
}

// initBackends connects MongoDB, Redis, and Qdrant. Mongo is required;
// Redis and Qdrant degrade (no caching, empty search results) rather
// than block startup.
func (s *Server) initBackends(ctx context.Context) error {
	st, err := store.New(ctx, store.Config{
		URI:            s.cfg.Mongo.URI,
		Database:       s.cfg.Mongo.Database,
		ConnectTimeout: s.cfg.Mongo.Timeout,
	}, s.logger, s.collector)
	if err != nil {
		return fmt.Errorf("failed to connect mongodb: %w", err)
	}
	s.store = st

	cacheManager, err := cache.NewManager(cache.Config{
		Addr:         s.cfg.Redis.Addr,
		Password:     s.cfg.Redis.Password,
		DB:           s.cfg.Redis.DB,
		KeyPrefix:    "socialmedia:",
		PoolSize:     s.cfg.Redis.PoolSize,
		MinIdleConns: s.cfg.Redis.MinIdleConns,
	}, s.logger)
	if err != nil {
		s.logger.Warn("Redis not available, caching disabled", zap.Error(err))
	} else {
		s.cache = cacheManager
	}

	vc, err := vector.NewClient(vector.Config{
		BaseURL: s.cfg.Qdrant.Endpoint(),
		APIKey:  s.cfg.Qdrant.APIKey,
		Timeout: s.cfg.Qdrant.Timeout,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to build qdrant client: %w", err)
	}
	s.vectorClient = vc

	return nil
}

// initPipeline builds the LLM provider, embedding index, generator,
// social service, and scheduler on top of the backends.
func (s *Server) initPipeline() {
	provider, err := llmfactory.FromLLMConfig(s.cfg.LLM, s.logger)
	if err != nil {
		// The generator turns every completion failure into fallback
		// content, so the service stays useful without a key.
		s.logger.Warn("No LLM provider configured, generation falls back to templates", zap.Error(err))
	}

	var resilient llm.Provider
	var model string
	if provider != nil {
		policy := retry.DefaultRetryPolicy()
		if s.cfg.LLM.MaxRetries > 0 {
			policy.MaxRetries = s.cfg.LLM.MaxRetries
		}
		resilient = llm.NewResilientProvider(provider, policy, s.logger)
		model = s.modelFor(provider.Name())
	}
	s.generator = content.NewGenerator(resilient, model, s.logger, s.collector)

	embedder := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey:     s.cfg.LLM.OpenAIAPIKey,
		Model:      s.cfg.LLM.EmbeddingModel,
		Dimensions: s.cfg.LLM.EmbeddingDimensions,
		Timeout:    s.cfg.LLM.Timeout,
	})
	s.index = vector.NewContentIndex(s.vectorClient, embedder, s.logger, s.collector)

	s.socialSvc = social.NewService(s.cfg.Social, s.logger, s.collector)

	var marker scheduler.Marker
	if s.cache != nil {
		marker = s.cache
	}
	s.scheduler = scheduler.New(s.cfg.Scheduler, s.store, s.socialSvc, marker, s.collector, s.logger)
}

// modelFor returns the configured chat model for the active provider.
func (s *Server) modelFor(providerName string) string {
	if providerName == "mistral" {
		return s.cfg.LLM.MistralModel
	}
	return s.cfg.LLM.OpenAIModel
}

// initHotReloadManager starts config hot reload and its admin API.
func (s *Server) initHotReloadManager(ctx context.Context) error {
	opts := []config.HotReloadOption{
		config.WithHotReloadLogger(s.logger),
		config.WithValidateFunc((*config.Config).Validate),
	}
	if s.configPath != "" {
		opts = append(opts, config.WithConfigPath(s.configPath))
	}

	manager, err := config.NewHotReloadManager(s.cfg, opts...)
	if err != nil {
		return err
	}
	s.hotReloadManager = manager

	s.hotReloadManager.OnChange(func(change config.ConfigChange) {
		s.logger.Info("Configuration changed",
			zap.String("path", change.Path),
			zap.String("source", change.Source),
			zap.Bool("requires_restart", change.RequiresRestart),
		)
	})
	s.hotReloadManager.OnReload(func(oldCfg, newCfg *config.Config) error {
		s.logger.Info("Configuration reloaded")
		s.cfg = newCfg
		return nil
	})

	if err := s.hotReloadManager.Start(ctx); err != nil {
		return err
	}

	s.configAPIHandler = config.NewConfigAPIHandler(s.hotReloadManager, s.cfg.Server.CORSAllowedOrigins...)
	return nil
}

// startHTTPServer registers the API routes and starts the main server.
func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	var cacheIface handlers.Cache
	if s.cache != nil {
		cacheIface = s.cache
	}

	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("mongodb", s.store.Ping))
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("qdrant", s.vectorClient.Ping))
	if s.cache != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", s.cache.Ping))
	}

	projectHandler := handlers.NewProjectHandler(s.store, s.index, cacheIface, s.logger)
	contentHandler := handlers.NewContentHandler(s.store, s.generator, s.index, s.socialSvc, cacheIface, s.logger)
	scheduleHandler := handlers.NewScheduleHandler(s.scheduler, s.store, s.logger)
	analyticsHandler := handlers.NewAnalyticsHandler(s.store, s.index, cacheIface, s.logger)
	socialHandler := handlers.NewSocialHandler(s.socialSvc, cacheIface, s.logger)

	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("GET /ready", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("GET /test_facebook", socialHandler.HandleTestFacebook)
	mux.HandleFunc("GET /test_linkedin", socialHandler.HandleTestLinkedIn)

	mux.HandleFunc("POST /create_project", projectHandler.HandleCreate)
	mux.HandleFunc("GET /projects", projectHandler.HandleList)
	mux.HandleFunc("GET /projects/{project_id}", projectHandler.HandleGet)
	mux.HandleFunc("POST /edit_project/{project_id}", projectHandler.HandleEdit)
	mux.HandleFunc("POST /delete_project/{project_id}", projectHandler.HandleDelete)

	mux.HandleFunc("POST /generate_content/{project_id}", contentHandler.HandleGenerate)
	mux.HandleFunc("POST /regenerate_content", contentHandler.HandleRegenerate)
	mux.HandleFunc("GET /api/content/{project_id}", contentHandler.HandleListContent)
	mux.HandleFunc("POST /post_now", contentHandler.HandlePostNow)

	mux.HandleFunc("POST /schedule_content", scheduleHandler.HandleSchedule)
	mux.HandleFunc("GET /analytics/{project_id}", analyticsHandler.HandleProjectAnalytics)

	// The config admin surface carries its own auth so it never
	// depends on the global chain's ordering.
	configAuth := config.NewConfigAPIMiddleware(s.firstAPIKey())
	mux.HandleFunc("/api/v1/config", configAuth.RequireAuth(s.configAPIHandler.HandleConfig))
	mux.HandleFunc("/api/v1/config/reload", configAuth.RequireAuth(s.configAPIHandler.HandleReload))
	mux.HandleFunc("/api/v1/config/fields", configAuth.RequireAuth(s.configAPIHandler.HandleFields))
	mux.HandleFunc("/api/v1/config/changes", configAuth.RequireAuth(s.configAPIHandler.HandleChanges))

	skipAuthPaths := []string{
		"/health", "/healthz", "/ready", "/readyz", "/version", "/metrics",
		"/test_facebook", "/test_linkedin",
	}
	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel

	middlewares := []Middleware{
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.collector),
	}
	if s.cfg.Telemetry.Enabled {
		middlewares = append(middlewares, OTelTracing())
	}
	middlewares = append(middlewares,
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		BodyLimit(s.cfg.Server.MaxBodyBytes),
	)
	switch {
	case len(s.cfg.Server.APIKeys) > 0:
		middlewares = append(middlewares, APIKeyAuth(s.cfg.Server.APIKeys, skipAuthPaths, s.logger))
	case s.cfg.Server.SecretKey != "":
		middlewares = append(middlewares, JWTAuth(s.cfg.Server.SecretKey, skipAuthPaths, s.logger))
	}

	handler := Chain(mux, middlewares...)

	s.httpManager = server.NewManager(handler, server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}
	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// startMetricsServer serves /metrics on its own port.
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s.metricsManager = server.NewManager(mux, server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}
	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// startMCPServer exposes the content tools over WebSocket and SSE on
// the MCP address.
func (s *Server) startMCPServer() error {
	mcpServer, err := mcp.NewContentServer(mcp.Services{
		Store:     s.store,
		Generator: s.generator,
		Scheduler: s.scheduler,
		Index:     s.index,
	}, Version, s.logger)
	if err != nil {
		return err
	}

	s.mcpManager = server.NewManager(mcp.NewHandler(mcpServer, s.logger), server.Config{
		Addr:            s.cfg.MCP.Addr(),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    0, // streaming transports hold the connection open
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	if err := s.mcpManager.Start(); err != nil {
		return err
	}
	s.logger.Info("MCP server started", zap.String("addr", s.cfg.MCP.Addr()))
	return nil
}

// firstAPIKey returns the key guarding the config admin API; empty
// means the middleware skips the check.
func (s *Server) firstAPIKey() string {
	if len(s.cfg.Server.APIKeys) > 0 {
		return s.cfg.Server.APIKeys[0]
	}
	return ""
}

// WaitForShutdown blocks until SIGINT/SIGTERM, then shuts down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown stops everything: scheduler first so no post starts
// mid-teardown, then the listeners, then the backends.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}
	if s.scheduler != nil && s.cfg.Scheduler.Enabled {
		s.scheduler.Stop()
	}
	if s.hotReloadManager != nil {
		if err := s.hotReloadManager.Stop(); err != nil {
			s.logger.Error("Hot reload manager shutdown error", zap.Error(err))
		}
	}
	if s.mcpManager != nil {
		if err := s.mcpManager.Shutdown(ctx); err != nil {
			s.logger.Error("MCP server shutdown error", zap.Error(err))
		}
	}
	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error("MongoDB close error", zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("Redis close error", zap.Error(err))
		}
	}
	if s.otel != nil {
		if err := s.otel.Shutdown(ctx); err != nil {
			s.logger.Error("Telemetry shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}
