// =============================================================================
// Default configuration
// =============================================================================
// Sensible defaults for every configuration section. Ports and database
// names match the original deployment so an existing .env keeps working.
// =============================================================================
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Mongo:     DefaultMongoConfig(),
		Redis:     DefaultRedisConfig(),
		Qdrant:    DefaultQdrantConfig(),
		LLM:       DefaultLLMConfig(),
		Social:    DefaultSocialConfig(),
		Content:   DefaultContentConfig(),
		Scheduler: DefaultSchedulerConfig(),
		MCP:       DefaultMCPConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        5000,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
		MaxBodyBytes:    16 << 20,
	}
}

// DefaultMongoConfig returns the default MongoDB configuration.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:      "mongodb://localhost:27017/",
		Database: "content_system",
		Timeout:  10 * time.Second,
	}
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultQdrantConfig returns the default Qdrant configuration.
func DefaultQdrantConfig() QdrantConfig {
	return QdrantConfig{
		Host:    "localhost",
		Port:    6333,
		Timeout: 30 * time.Second,
	}
}

// DefaultLLMConfig returns the default LLM configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		DefaultProvider:     "openai",
		OpenAIModel:         "gpt-4",
		MistralModel:        "mistral-small-latest",
		EmbeddingModel:      "text-embedding-ada-002",
		EmbeddingDimensions: 1536,
		Timeout:             2 * time.Minute,
		MaxRetries:          3,
	}
}

// DefaultSocialConfig returns the default social platform configuration.
func DefaultSocialConfig() SocialConfig {
	return SocialConfig{
		Timeout: 30 * time.Second,
	}
}

// DefaultContentConfig returns the default content configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		UploadFolder:   "uploads",
		ImageFolder:    "static/images",
		MaxUploadBytes: 16 << 20,
	}
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:          true,
		PollInterval:     30 * time.Second,
		ExecutionTimeout: 2 * time.Minute,
	}
}

// DefaultMCPConfig returns the default MCP server configuration.
func DefaultMCPConfig() MCPConfig {
	return MCPConfig{
		Enabled: true,
		Host:    "localhost",
		Port:    8001,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "socialmedia",
		SampleRate:   0.1,
	}
}
