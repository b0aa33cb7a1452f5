// =============================================================================
// Runtime configuration hot reload
// =============================================================================
// HotReloadManager applies configuration changes to a running service
// without a restart: file edits are picked up by the watcher, individual
// fields can be updated through the admin API, and every applied change
// is validated, recorded, and reversible. Reload callbacks that fail or
// panic trigger an automatic rollback to the previous configuration.
// =============================================================================
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMaxHistorySize = 10
	maxChangeLogSize      = 1000
	redactedPlaceholder   = "[REDACTED]"
)

// ConfigChange records a single applied (or rejected) field change.
type ConfigChange struct {
	Timestamp       time.Time `json:"timestamp"`
	Source          string    `json:"source"`
	Path            string    `json:"path"`
	OldValue        any       `json:"old_value,omitempty"`
	NewValue        any       `json:"new_value,omitempty"`
	RequiresRestart bool      `json:"requires_restart"`
	Applied         bool      `json:"applied"`
	Error           string    `json:"error,omitempty"`
}

// ConfigSnapshot is one version of the configuration kept in history.
type ConfigSnapshot struct {
	Config    *Config   `json:"config"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   int       `json:"version"`
	Checksum  string    `json:"checksum"`
}

// RollbackEvent describes a restore to an earlier configuration version.
type RollbackEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	FromVersion int       `json:"from_version"`
	ToVersion   int       `json:"to_version"`
	Reason      string    `json:"reason"`
}

// HotReloadableField describes a configuration field the admin API may
// change at runtime. Fields marked RequiresRestart are still recorded
// and applied, but only take full effect after a process restart.
type HotReloadableField struct {
	Path            string          `json:"path"`
	Description     string          `json:"description"`
	RequiresRestart bool            `json:"requires_restart"`
	Sensitive       bool            `json:"sensitive"`
	Validator       func(any) error `json:"-"`
}

// hotReloadableFields is the registry of fields the admin API can set.
// Paths use Go field names, dot separated.
var hotReloadableFields = map[string]HotReloadableField{
	"Log.Level": {
		Path:        "Log.Level",
		Description: "Logging level (debug, info, warn, error)",
		Validator:   validateLogLevel,
	},
	"Log.Format": {
		Path:        "Log.Format",
		Description: "Log output format (console, json)",
		Validator:   validateLogFormat,
	},
	"LLM.Timeout": {
		Path:        "LLM.Timeout",
		Description: "Timeout for LLM completion requests",
		Validator:   validatePositiveDuration,
	},
	"LLM.MaxRetries": {
		Path:        "LLM.MaxRetries",
		Description: "Retry attempts for failed LLM requests",
		Validator:   validateNonNegativeInt,
	},
	"Telemetry.Enabled": {
		Path:        "Telemetry.Enabled",
		Description: "Enable OpenTelemetry export",
	},
	"Telemetry.SampleRate": {
		Path:        "Telemetry.SampleRate",
		Description: "Trace sampling ratio (0.0 to 1.0)",
		Validator:   validateSampleRate,
	},
	"Scheduler.PollInterval": {
		Path:        "Scheduler.PollInterval",
		Description: "How often the scheduler polls for due posts",
		Validator:   validatePositiveDuration,
	},
	"Scheduler.ExecutionTimeout": {
		Path:        "Scheduler.ExecutionTimeout",
		Description: "Per-execution timeout for scheduled posts",
		Validator:   validatePositiveDuration,
	},
	"Server.RateLimitRPS": {
		Path:        "Server.RateLimitRPS",
		Description: "Per-client request rate limit (requests per second)",
		Validator:   validatePositiveNumber,
	},
	"Server.RateLimitBurst": {
		Path:        "Server.RateLimitBurst",
		Description: "Per-client request burst allowance",
		Validator:   validateNonNegativeInt,
	},
	"Social.Timeout": {
		Path:        "Social.Timeout",
		Description: "Timeout for social platform API calls",
		Validator:   validatePositiveDuration,
	},
	"Content.MaxUploadBytes": {
		Path:        "Content.MaxUploadBytes",
		Description: "Maximum accepted media upload size in bytes",
		Validator:   validatePositiveNumber,
	},

	"Server.HTTPPort": {
		Path:            "Server.HTTPPort",
		Description:     "HTTP listen port",
		RequiresRestart: true,
		Validator:       validatePort,
	},
	"Server.MetricsPort": {
		Path:            "Server.MetricsPort",
		Description:     "Prometheus metrics listen port",
		RequiresRestart: true,
		Validator:       validatePort,
	},
	"Server.ReadTimeout": {
		Path:            "Server.ReadTimeout",
		Description:     "HTTP server read timeout",
		RequiresRestart: true,
		Validator:       validatePositiveDuration,
	},
	"Server.WriteTimeout": {
		Path:            "Server.WriteTimeout",
		Description:     "HTTP server write timeout",
		RequiresRestart: true,
		Validator:       validatePositiveDuration,
	},
	"Server.SecretKey": {
		Path:            "Server.SecretKey",
		Description:     "JWT signing secret for the admin surface",
		RequiresRestart: true,
		Sensitive:       true,
	},
	"Mongo.URI": {
		Path:            "Mongo.URI",
		Description:     "MongoDB connection string",
		RequiresRestart: true,
		Sensitive:       true,
	},
	"Redis.Addr": {
		Path:            "Redis.Addr",
		Description:     "Redis server address",
		RequiresRestart: true,
	},
	"Redis.Password": {
		Path:            "Redis.Password",
		Description:     "Redis password",
		RequiresRestart: true,
		Sensitive:       true,
	},
	"Qdrant.URL": {
		Path:            "Qdrant.URL",
		Description:     "Qdrant base URL",
		RequiresRestart: true,
	},
	"Qdrant.APIKey": {
		Path:            "Qdrant.APIKey",
		Description:     "Qdrant API key",
		RequiresRestart: true,
		Sensitive:       true,
	},
	"LLM.OpenAIAPIKey": {
		Path:            "LLM.OpenAIAPIKey",
		Description:     "OpenAI API key",
		RequiresRestart: true,
		Sensitive:       true,
	},
	"LLM.MistralAPIKey": {
		Path:            "LLM.MistralAPIKey",
		Description:     "Mistral API key",
		RequiresRestart: true,
		Sensitive:       true,
	},
	"MCP.Port": {
		Path:            "MCP.Port",
		Description:     "MCP server listen port",
		RequiresRestart: true,
		Validator:       validatePort,
	},
}

// HotReloadManager owns the live configuration of a running service.
type HotReloadManager struct {
	mu sync.RWMutex

	config         *Config
	previousConfig *Config
	configPath     string
	version        int

	configHistory  []ConfigSnapshot
	maxHistorySize int
	changeLog      []ConfigChange

	validateFunc func(*Config) error
	watcher      *FileWatcher

	changeCallbacks   []func(ConfigChange)
	reloadCallbacks   []func(oldCfg, newCfg *Config) error
	rollbackCallbacks []func(RollbackEvent)

	logger  *zap.Logger
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// HotReloadOption configures the HotReloadManager.
type HotReloadOption func(*HotReloadManager)

// WithHotReloadLogger sets the logger.
func WithHotReloadLogger(logger *zap.Logger) HotReloadOption {
	return func(m *HotReloadManager) {
		m.logger = logger
	}
}

// WithConfigPath sets the file to watch and reload from.
func WithConfigPath(path string) HotReloadOption {
	return func(m *HotReloadManager) {
		m.configPath = path
	}
}

// WithMaxHistorySize bounds the number of retained config snapshots.
func WithMaxHistorySize(n int) HotReloadOption {
	return func(m *HotReloadManager) {
		if n > 0 {
			m.maxHistorySize = n
		}
	}
}

// WithValidateFunc sets a validator run against every candidate config
// before it is applied.
func WithValidateFunc(fn func(*Config) error) HotReloadOption {
	return func(m *HotReloadManager) {
		m.validateFunc = fn
	}
}

// NewHotReloadManager creates a manager seeded with the given config.
func NewHotReloadManager(cfg *Config, opts ...HotReloadOption) (*HotReloadManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	m := &HotReloadManager{
		maxHistorySize: defaultMaxHistorySize,
		configHistory:  make([]ConfigSnapshot, 0, defaultMaxHistorySize),
		changeLog:      make([]ConfigChange, 0),
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	initial, err := deepCopyConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to copy initial config: %w", err)
	}

	m.config = initial
	m.version = 1
	m.pushHistoryLocked("initial")

	return m, nil
}

// Start begins watching the config file, if one was configured. The
// manager itself works without a watcher; Start is then a no-op apart
// from lifecycle bookkeeping.
func (m *HotReloadManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("hot reload manager already running")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)

	if m.configPath != "" {
		watcher, err := NewFileWatcher(
			[]string{m.configPath},
			WithDebounceDelay(500*time.Millisecond),
			WithWatcherLogger(m.logger),
		)
		if err != nil {
			m.cancel()
			return fmt.Errorf("failed to create config watcher: %w", err)
		}

		watcher.OnChange(m.handleFileChange)

		if err := watcher.Start(m.ctx); err != nil {
			m.cancel()
			return fmt.Errorf("failed to start config watcher: %w", err)
		}

		m.watcher = watcher
	}

	m.running = true
	m.logger.Info("hot reload manager started",
		zap.String("config_path", m.configPath),
		zap.Bool("watching", m.watcher != nil))

	return nil
}

// Stop stops the watcher and the manager.
func (m *HotReloadManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}

	if m.cancel != nil {
		m.cancel()
	}
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			m.logger.Warn("failed to stop config watcher", zap.Error(err))
		}
	}

	m.running = false
	m.logger.Info("hot reload manager stopped")
	return nil
}

func (m *HotReloadManager) handleFileChange(event FileEvent) {
	if event.Op == FileOpRemove {
		m.logger.Warn("config file removed, keeping current configuration",
			zap.String("path", event.Path))
		return
	}

	m.logger.Info("config file changed, reloading",
		zap.String("path", event.Path),
		zap.String("op", event.Op.String()))

	if err := m.ReloadFromFile(); err != nil {
		m.logger.Error("config reload failed, keeping current configuration",
			zap.Error(err))
	}
}

// ReloadFromFile loads the config file from disk, validates it, and
// applies it.
func (m *HotReloadManager) ReloadFromFile() error {
	m.mu.RLock()
	path := m.configPath
	m.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("no config path configured")
	}

	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return m.ApplyConfig(cfg, "file")
}

// ApplyConfig replaces the live configuration. Changes are detected
// field by field, recorded, and announced to change callbacks. Reload
// callbacks run after the swap; if any fails the previous configuration
// is restored.
func (m *HotReloadManager) ApplyConfig(newCfg *Config, source string) error {
	if newCfg == nil {
		return fmt.Errorf("config must not be nil")
	}
	if m.validateFunc != nil {
		if err := m.validateFunc(newCfg); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	applied, err := deepCopyConfig(newCfg)
	if err != nil {
		return fmt.Errorf("failed to copy config: %w", err)
	}

	m.mu.Lock()

	changes := detectChanges(m.config, applied, source)
	if len(changes) == 0 {
		m.mu.Unlock()
		m.logger.Debug("config unchanged, nothing to apply",
			zap.String("source", source))
		return nil
	}

	oldCfg := m.config
	m.previousConfig = oldCfg
	m.config = applied
	m.version++
	m.pushHistoryLocked(source)
	m.appendChangeLogLocked(changes)

	reloadCallbacks := make([]func(*Config, *Config) error, len(m.reloadCallbacks))
	copy(reloadCallbacks, m.reloadCallbacks)
	changeCallbacks := make([]func(ConfigChange), len(m.changeCallbacks))
	copy(changeCallbacks, m.changeCallbacks)

	m.mu.Unlock()

	m.logger.Info("configuration applied",
		zap.String("source", source),
		zap.Int("changes", len(changes)))

	if err := m.notifyReload(oldCfg, applied, reloadCallbacks); err != nil {
		m.mu.Lock()
		event, rollbackCallbacks := m.rollbackLocked(oldCfg,
			fmt.Sprintf("reload callback failed: %v", err))
		m.mu.Unlock()
		m.notifyRollback(event, rollbackCallbacks)
		return fmt.Errorf("config change rejected by reload callback: %w", err)
	}

	m.notifyChanges(changes, changeCallbacks)
	return nil
}

// UpdateField changes a single registered field on the live config.
func (m *HotReloadManager) UpdateField(path string, value any) error {
	field, ok := hotReloadableFields[path]
	if !ok {
		return fmt.Errorf("field %s is not runtime-updatable", path)
	}
	if field.Validator != nil {
		if err := field.Validator(value); err != nil {
			return fmt.Errorf("validation failed for %s: %w", path, err)
		}
	}

	m.mu.RLock()
	updated, err := deepCopyConfig(m.config)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to copy config: %w", err)
	}

	if err := setNestedField(updated, path, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}

	return m.ApplyConfig(updated, "api")
}

// Rollback restores the previously applied configuration.
func (m *HotReloadManager) Rollback(reason string) error {
	m.mu.Lock()
	if m.previousConfig == nil {
		m.mu.Unlock()
		return fmt.Errorf("no previous configuration to roll back to")
	}
	event, callbacks := m.rollbackLocked(m.previousConfig, reason)
	m.mu.Unlock()

	m.notifyRollback(event, callbacks)
	return nil
}

// RollbackToVersion restores a specific version from history.
func (m *HotReloadManager) RollbackToVersion(version int, reason string) error {
	m.mu.Lock()

	var target *Config
	for _, snap := range m.configHistory {
		if snap.Version == version {
			target = snap.Config
			break
		}
	}
	if target == nil {
		m.mu.Unlock()
		return fmt.Errorf("version %d not found in history", version)
	}

	event, callbacks := m.rollbackLocked(target, reason)
	m.mu.Unlock()

	m.notifyRollback(event, callbacks)
	return nil
}

// rollbackLocked swaps target in as the live config and records the
// event. Callers hold m.mu and invoke the returned callbacks after
// releasing it.
func (m *HotReloadManager) rollbackLocked(target *Config, reason string) (RollbackEvent, []func(RollbackEvent)) {
	fromVersion := m.version

	restored, err := deepCopyConfig(target)
	if err != nil {
		// Share the snapshot rather than fail the rollback.
		restored = target
	}

	m.previousConfig = m.config
	m.config = restored
	m.version++
	m.pushHistoryLocked("rollback")
	m.appendChangeLogLocked([]ConfigChange{{
		Timestamp: time.Now(),
		Source:    "rollback",
		Path:      "*",
		Applied:   true,
	}})

	event := RollbackEvent{
		Timestamp:   time.Now(),
		FromVersion: fromVersion,
		ToVersion:   m.version,
		Reason:      reason,
	}

	callbacks := make([]func(RollbackEvent), len(m.rollbackCallbacks))
	copy(callbacks, m.rollbackCallbacks)

	m.logger.Warn("configuration rolled back",
		zap.Int("from_version", fromVersion),
		zap.Int("to_version", m.version),
		zap.String("reason", reason))

	return event, callbacks
}

// OnChange registers a callback invoked once per applied field change.
func (m *HotReloadManager) OnChange(cb func(ConfigChange)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeCallbacks = append(m.changeCallbacks, cb)
}

// OnReload registers a callback invoked after a new config is applied.
// Returning an error vetoes the change and triggers a rollback.
func (m *HotReloadManager) OnReload(cb func(oldCfg, newCfg *Config) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloadCallbacks = append(m.reloadCallbacks, cb)
}

// OnRollback registers a callback invoked after a rollback.
func (m *HotReloadManager) OnRollback(cb func(RollbackEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollbackCallbacks = append(m.rollbackCallbacks, cb)
}

// GetConfig returns a copy of the live configuration.
func (m *HotReloadManager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, err := deepCopyConfig(m.config)
	if err != nil {
		m.logger.Error("failed to copy config", zap.Error(err))
		return m.config
	}
	return cfg
}

// GetCurrentVersion returns the version number of the live config.
func (m *HotReloadManager) GetCurrentVersion() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// GetConfigHistory returns the retained snapshots, oldest first.
func (m *HotReloadManager) GetConfigHistory() []ConfigSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]ConfigSnapshot, len(m.configHistory))
	copy(history, m.configHistory)
	return history
}

// GetChangeLog returns the most recent limit change records, newest
// last. limit <= 0 returns the full log.
func (m *HotReloadManager) GetChangeLog(limit int) []ConfigChange {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.changeLog)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]ConfigChange, limit)
	copy(out, m.changeLog[n-limit:])
	return out
}

// GetHotReloadableFields lists the registered fields, sorted by path.
func (m *HotReloadManager) GetHotReloadableFields() []HotReloadableField {
	fields := make([]HotReloadableField, 0, len(hotReloadableFields))
	for _, f := range hotReloadableFields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields
}

// IsHotReloadable reports whether a field can change without a restart.
func IsHotReloadable(path string) bool {
	f, ok := hotReloadableFields[path]
	return ok && !f.RequiresRestart
}

// SanitizedConfig returns the live config as a JSON-style map with
// credential-bearing values redacted.
func (m *HotReloadManager) SanitizedConfig() (map[string]any, error) {
	m.mu.RLock()
	data, err := json.Marshal(m.config)
	m.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	redactSensitiveFields(out)
	return out, nil
}

// pushHistoryLocked appends a snapshot of the live config. Caller
// holds m.mu (or is the constructor).
func (m *HotReloadManager) pushHistoryLocked(source string) {
	m.configHistory = append(m.configHistory, ConfigSnapshot{
		Config:    m.config,
		Timestamp: time.Now(),
		Source:    source,
		Version:   m.version,
		Checksum:  computeConfigChecksum(m.config),
	})
	if len(m.configHistory) > m.maxHistorySize {
		m.configHistory = m.configHistory[len(m.configHistory)-m.maxHistorySize:]
	}
}

func (m *HotReloadManager) appendChangeLogLocked(changes []ConfigChange) {
	m.changeLog = append(m.changeLog, changes...)
	if len(m.changeLog) > maxChangeLogSize {
		m.changeLog = m.changeLog[len(m.changeLog)-maxChangeLogSize:]
	}
}

func (m *HotReloadManager) notifyReload(oldCfg, newCfg *Config, callbacks []func(*Config, *Config) error) error {
	for _, cb := range callbacks {
		if err := runReloadCallback(cb, oldCfg, newCfg); err != nil {
			return err
		}
	}
	return nil
}

func runReloadCallback(cb func(*Config, *Config) error, oldCfg, newCfg *Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reload callback panicked: %v", r)
		}
	}()
	return cb(oldCfg, newCfg)
}

func (m *HotReloadManager) notifyChanges(changes []ConfigChange, callbacks []func(ConfigChange)) {
	for _, change := range changes {
		for _, cb := range callbacks {
			func() {
				defer func() {
					if r := recover(); r != nil {
						m.logger.Error("change callback panicked",
							zap.String("path", change.Path),
							zap.Any("panic", r))
					}
				}()
				cb(change)
			}()
		}
	}
}

func (m *HotReloadManager) notifyRollback(event RollbackEvent, callbacks []func(RollbackEvent)) {
	for _, cb := range callbacks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("rollback callback panicked", zap.Any("panic", r))
				}
			}()
			cb(event)
		}()
	}
}

// detectChanges walks both configs and records every differing leaf
// field. Sensitive values are redacted in the change records.
func detectChanges(oldCfg, newCfg *Config, source string) []ConfigChange {
	var changes []ConfigChange
	compareStructs(
		reflect.ValueOf(oldCfg).Elem(),
		reflect.ValueOf(newCfg).Elem(),
		"", source, &changes,
	)
	return changes
}

func compareStructs(oldVal, newVal reflect.Value, prefix, source string, changes *[]ConfigChange) {
	t := oldVal.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		of := oldVal.Field(i)
		nf := newVal.Field(i)

		if of.Kind() == reflect.Struct && of.Type() != reflect.TypeOf(time.Time{}) {
			compareStructs(of, nf, path, source, changes)
			continue
		}

		if reflect.DeepEqual(of.Interface(), nf.Interface()) {
			continue
		}

		oldValue := of.Interface()
		newValue := nf.Interface()
		if isSensitivePath(path) {
			oldValue = redactedPlaceholder
			newValue = redactedPlaceholder
		}

		*changes = append(*changes, ConfigChange{
			Timestamp:       time.Now(),
			Source:          source,
			Path:            path,
			OldValue:        oldValue,
			NewValue:        newValue,
			RequiresRestart: fieldRequiresRestart(path),
			Applied:         true,
		})
	}
}

// fieldRequiresRestart is conservative: fields outside the registry
// are treated as restart-required.
func fieldRequiresRestart(path string) bool {
	if f, ok := hotReloadableFields[path]; ok {
		return f.RequiresRestart
	}
	return true
}

func isSensitivePath(path string) bool {
	if f, ok := hotReloadableFields[path]; ok && f.Sensitive {
		return true
	}
	parts := splitPath(path)
	return isSensitiveKey(parts[len(parts)-1])
}

var sensitiveKeySubstrings = []string{
	"password", "apikey", "api_key", "secret", "token", "credential", "uri",
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeySubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// redactSensitiveFields walks a JSON-style map and replaces values
// under credential-bearing keys.
func redactSensitiveFields(m map[string]any) {
	for key, value := range m {
		switch v := value.(type) {
		case map[string]any:
			redactSensitiveFields(v)
		case []any:
			for _, item := range v {
				if sub, ok := item.(map[string]any); ok {
					redactSensitiveFields(sub)
				}
			}
		case string:
			if v != "" && isSensitiveKey(key) {
				m[key] = redactedPlaceholder
			}
		}
	}
}

// deepCopyConfig copies a Config through a JSON round trip.
func deepCopyConfig(cfg *Config) (*Config, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// computeConfigChecksum fingerprints a config for history entries.
func computeConfigChecksum(cfg *Config) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

// getNestedField resolves a dot-separated path on a Config.
func getNestedField(cfg *Config, path string) (any, error) {
	v := reflect.ValueOf(cfg).Elem()
	for _, part := range splitPath(path) {
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("cannot descend into %s at %q", v.Kind(), part)
		}
		v = v.FieldByName(part)
		if !v.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", path)
		}
	}
	return v.Interface(), nil
}

// setNestedField assigns a value to a dot-separated path on a Config.
// JSON-decoded numbers (float64) are converted to the field's numeric
// type; durations additionally accept strings like "30s".
func setNestedField(cfg *Config, path string, value any) error {
	parts := splitPath(path)
	v := reflect.ValueOf(cfg).Elem()

	for _, part := range parts[:len(parts)-1] {
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("cannot descend into %s at %q", v.Kind(), part)
		}
		v = v.FieldByName(part)
		if !v.IsValid() {
			return fmt.Errorf("unknown field: %s", path)
		}
	}

	field := v.FieldByName(parts[len(parts)-1])
	if !field.IsValid() {
		return fmt.Errorf("unknown field: %s", path)
	}
	if !field.CanSet() {
		return fmt.Errorf("field %s is not settable", path)
	}

	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		if s, ok := value.(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", s, err)
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}
	}

	// Strings only accept strings; numeric-to-string conversion via
	// reflect would produce a rune, not a decimal.
	if field.Kind() == reflect.String {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s expects a string, got %T", path, value)
		}
		field.SetString(s)
		return nil
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("field %s cannot be set to null", path)
	}
	if val.Type() == field.Type() {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to field %s (%s)", value, path, field.Type())
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// Field validators. Values arrive as JSON-decoded types: numbers are
// float64, durations may be strings.

func validateLogLevel(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level %q", s)
}

func validateLogFormat(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	switch strings.ToLower(s) {
	case "console", "json":
		return nil
	}
	return fmt.Errorf("invalid log format %q", s)
}

func validatePositiveDuration(v any) error {
	d, err := asDuration(v)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

func asDuration(v any) (time.Duration, error) {
	switch t := v.(type) {
	case time.Duration:
		return t, nil
	case string:
		d, err := time.ParseDuration(t)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", t, err)
		}
		return d, nil
	case float64:
		return time.Duration(t), nil
	case int:
		return time.Duration(t), nil
	case int64:
		return time.Duration(t), nil
	default:
		return 0, fmt.Errorf("expected a duration, got %T", v)
	}
}

func validateNonNegativeInt(v any) error {
	n, err := asInt64(v)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("value must not be negative, got %d", n)
	}
	return nil
}

func validatePositiveNumber(v any) error {
	n, err := asFloat64(v)
	if err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("value must be positive, got %v", n)
	}
	return nil
}

func validateSampleRate(v any) error {
	n, err := asFloat64(v)
	if err != nil {
		return err
	}
	if n < 0 || n > 1 {
		return fmt.Errorf("sample rate must be between 0 and 1, got %v", n)
	}
	return nil
}

func validatePort(v any) error {
	n, err := asInt64(v)
	if err != nil {
		return err
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", n)
	}
	return nil
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func asFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case float64:
		return t, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
