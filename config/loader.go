// =============================================================================
// Configuration loader
// =============================================================================
// Unified configuration loading: defaults → YAML file → environment
// variables. Env overrides use the SOCIALMEDIA prefix plus the well-known
// deployment variable names recognized in wellknown.go.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    Load()
// =============================================================================
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Mongo     MongoConfig     `yaml:"mongo" env:"MONGO"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
	Qdrant    QdrantConfig    `yaml:"qdrant" env:"QDRANT"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Social    SocialConfig    `yaml:"social" env:"SOCIAL"`
	Content   ContentConfig   `yaml:"content" env:"CONTENT"`
	Scheduler SchedulerConfig `yaml:"scheduler" env:"SCHEDULER"`
	MCP       MCPConfig       `yaml:"mcp" env:"MCP"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// APIKeys enables X-API-Key auth on mutating routes when non-empty.
	APIKeys            []string `yaml:"api_keys" env:"API_KEYS"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// SecretKey signs session JWTs. Populated from FLASK_SECRET_KEY for
	// drop-in compatibility with existing deployments.
	SecretKey    string `yaml:"secret_key" env:"SECRET_KEY"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string        `yaml:"uri" env:"URI"`
	Database string        `yaml:"database" env:"DATABASE"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// RedisConfig holds the Redis cache settings.
type RedisConfig struct {
	Addr         string `yaml:"addr" env:"ADDR"`
	Password     string `yaml:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// QdrantConfig holds the vector store settings. URL wins over
// Host/Port when both are set (managed-cloud deployments).
type QdrantConfig struct {
	URL     string        `yaml:"url" env:"URL"`
	Host    string        `yaml:"host" env:"HOST"`
	Port    int           `yaml:"port" env:"PORT"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Endpoint returns the base URL for REST calls.
func (q *QdrantConfig) Endpoint() string {
	if q.URL != "" {
		return strings.TrimRight(q.URL, "/")
	}
	return fmt.Sprintf("http://%s:%d", q.Host, q.Port)
}

// LLMConfig holds the language-model provider settings.
type LLMConfig struct {
	DefaultProvider     string        `yaml:"default_provider" env:"DEFAULT_PROVIDER"`
	OpenAIAPIKey        string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL       string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OpenAIModel         string        `yaml:"openai_model" env:"OPENAI_MODEL"`
	MistralAPIKey       string        `yaml:"mistral_api_key" env:"MISTRAL_API_KEY"`
	MistralBaseURL      string        `yaml:"mistral_base_url" env:"MISTRAL_BASE_URL"`
	MistralModel        string        `yaml:"mistral_model" env:"MISTRAL_MODEL"`
	EmbeddingModel      string        `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
	EmbeddingDimensions int           `yaml:"embedding_dimensions" env:"EMBEDDING_DIMENSIONS"`
	Timeout             time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries          int           `yaml:"max_retries" env:"MAX_RETRIES"`
}

// SocialConfig holds per-platform publishing credentials.
type SocialConfig struct {
	Facebook  FacebookConfig  `yaml:"facebook" env:"FACEBOOK"`
	Twitter   TwitterConfig   `yaml:"twitter" env:"TWITTER"`
	LinkedIn  LinkedInConfig  `yaml:"linkedin" env:"LINKEDIN"`
	Instagram InstagramConfig `yaml:"instagram" env:"INSTAGRAM"`
	Timeout   time.Duration   `yaml:"timeout" env:"TIMEOUT"`
}

// FacebookConfig holds Graph API credentials. PageAccessToken is
// preferred over AccessToken for page posting when both are set.
type FacebookConfig struct {
	PageID          string `yaml:"page_id" env:"PAGE_ID"`
	AccessToken     string `yaml:"access_token" env:"ACCESS_TOKEN"`
	PageAccessToken string `yaml:"page_access_token" env:"PAGE_ACCESS_TOKEN"`
}

// TwitterConfig holds Twitter/X API v2 credentials.
type TwitterConfig struct {
	APIKey            string `yaml:"api_key" env:"API_KEY"`
	APISecret         string `yaml:"api_secret" env:"API_SECRET"`
	AccessToken       string `yaml:"access_token" env:"ACCESS_TOKEN"`
	AccessTokenSecret string `yaml:"access_token_secret" env:"ACCESS_TOKEN_SECRET"`
	BearerToken       string `yaml:"bearer_token" env:"BEARER_TOKEN"`
}

// LinkedInConfig holds LinkedIn API credentials.
type LinkedInConfig struct {
	ClientID    string `yaml:"client_id" env:"CLIENT_ID"`
	AccessToken string `yaml:"access_token" env:"ACCESS_TOKEN"`
	PersonURN   string `yaml:"person_urn" env:"PERSON_URN"`
}

// InstagramConfig holds Instagram Graph credentials.
type InstagramConfig struct {
	AccessToken string `yaml:"access_token" env:"ACCESS_TOKEN"`
}

// ContentConfig holds content and media handling settings.
type ContentConfig struct {
	UploadFolder   string `yaml:"upload_folder" env:"UPLOAD_FOLDER"`
	ImageFolder    string `yaml:"image_folder" env:"IMAGE_FOLDER"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// SchedulerConfig holds the posting scheduler settings.
type SchedulerConfig struct {
	Enabled          bool          `yaml:"enabled" env:"ENABLED"`
	PollInterval     time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	ExecutionTimeout time.Duration `yaml:"execution_timeout" env:"EXECUTION_TIMEOUT"`
}

// MCPConfig holds the MCP server settings.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Host    string `yaml:"host" env:"HOST"`
	Port    int    `yaml:"port" env:"PORT"`
}

// Addr returns the listen address for the MCP server.
func (m *MCPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// LogConfig holds the zap logger settings.
type LogConfig struct {
	Level            string   `yaml:"level" env:"LEVEL"`
	Format           string   `yaml:"format" env:"FORMAT"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller     bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
	EnableStacktrace bool     `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// TelemetryConfig holds the OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Loader loads configuration using the builder pattern.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "SOCIALMEDIA",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a config validator.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads configuration with precedence:
// defaults → YAML file → prefixed env vars → well-known env vars.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyWellKnownEnv(cfg)

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile loads configuration from the YAML file. A missing
// file is not an error; defaults apply.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv overrides fields from prefixed environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv recursively sets struct fields from PREFIX_TAG keys.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue sets a single field from its string representation.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetUint(u)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// comma-separated string slices
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).WithValidator((*Config).Validate).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Mongo.URI == "" {
		errs = append(errs, "mongo URI is required")
	}
	if c.Mongo.Database == "" {
		errs = append(errs, "mongo database name is required")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		errs = append(errs, "rate limit values must be non-negative")
	}
	if c.Scheduler.Enabled && c.Scheduler.PollInterval <= 0 {
		errs = append(errs, "scheduler poll interval must be positive")
	}
	if c.MCP.Enabled && (c.MCP.Port <= 0 || c.MCP.Port > 65535) {
		errs = append(errs, "invalid MCP port")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
