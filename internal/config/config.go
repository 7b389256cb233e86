// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/buhofis/buho-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete buho configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Backend is the RAG service the chat talks to.
	Backend BackendConfig `toml:"backend" json:"backend" yaml:"backend"`

	// Session controls where chats are kept for the lifetime of a tab.
	Session SessionConfig `toml:"session" json:"session" yaml:"session"`

	Navigation NavigationConfig `toml:"navigation" json:"navigation" yaml:"navigation"`
	Offline    OfflineConfig    `toml:"offline" json:"offline" yaml:"offline"`
	UI         UIConfig         `toml:"ui" json:"ui" yaml:"ui"`
	Logging    LoggingConfig    `toml:"logging" json:"logging" yaml:"logging"`
	Telemetry  TelemetryConfig  `toml:"telemetry" json:"telemetry" yaml:"telemetry"`
	Mock       MockConfig       `toml:"mock" json:"mock" yaml:"mock"`
}

// BackendConfig describes the RAG backend.
type BackendConfig struct {
	// BaseURL is the backend origin, e.g. http://localhost:8000
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url" validate:"required,http_url"`
	// TimeoutSecs bounds non-streaming requests. Streams are bounded only
	// by cancellation.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs" validate:"gte=1,lte=600"`
	// OptimizeQuery is sent as optimize_query with every RAG question.
	OptimizeQuery bool `toml:"optimize_query" json:"optimize_query" yaml:"optimize_query"`
	// PingPath is probed to detect reachability.
	PingPath string `toml:"ping_path" json:"ping_path" yaml:"ping_path" validate:"required,startswith=/"`
	// PingIntervalSecs is the time between liveness probes.
	PingIntervalSecs int `toml:"ping_interval_secs" json:"ping_interval_secs" yaml:"ping_interval_secs" validate:"gte=1"`
	// PingTimeoutMs bounds each probe.
	PingTimeoutMs int `toml:"ping_timeout_ms" json:"ping_timeout_ms" yaml:"ping_timeout_ms" validate:"gte=100"`
}

// SessionConfig selects the tab store backend.
type SessionConfig struct {
	// Storage is one of memory, file, redis.
	Storage string `toml:"storage" json:"storage" yaml:"storage" validate:"oneof=memory file redis"`
	// TabID overrides the detected terminal tab identity.
	TabID string `toml:"tab_id" json:"tab_id" yaml:"tab_id"`
	// Dir is the file store root (default ~/.buho/tabs).
	Dir string `toml:"dir" json:"dir" yaml:"dir"`
	// TTLHours is how long a tab's chats outlive its last write.
	TTLHours int `toml:"ttl_hours" json:"ttl_hours" yaml:"ttl_hours" validate:"gte=1,lte=720"`
	// RedisURL is used when Storage is redis.
	RedisURL string `toml:"redis_url" json:"redis_url" yaml:"redis_url" validate:"required_if=Storage redis"`
}

// NavigationConfig controls the bundled guided-flow tree.
type NavigationConfig struct {
	// TreeFile replaces the bundled tree with a YAML or JSON file.
	TreeFile string `toml:"tree_file" json:"tree_file" yaml:"tree_file"`
	// Watch reloads TreeFile when it changes.
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`
}

// OfflineConfig tunes the simulated answers used while the backend is down.
type OfflineConfig struct {
	TokenIntervalMs int `toml:"token_interval_ms" json:"token_interval_ms" yaml:"token_interval_ms" validate:"gte=0,lte=5000"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// ShowSources attaches cited documents to answers.
	ShowSources bool `toml:"show_sources" json:"show_sources" yaml:"show_sources"`
	// Theme is auto, dark or light.
	Theme string `toml:"theme" json:"theme" yaml:"theme" validate:"oneof=auto dark light"`
	// Markdown renders bot answers with glamour.
	Markdown bool `toml:"markdown" json:"markdown" yaml:"markdown"`
	// SidebarWidth is the chat list width in cells; 0 hides it.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width" yaml:"sidebar_width" validate:"gte=0,lte=60"`
}

// LoggingConfig configures the rotating log file.
type LoggingConfig struct {
	Level      string `toml:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File       string `toml:"file" json:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `toml:"max_backups" json:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days" validate:"gte=0"`
}

// TelemetryConfig enables OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
	// Endpoint is the OTLP/HTTP collector host:port.
	Endpoint    string  `toml:"endpoint" json:"endpoint" yaml:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool    `toml:"insecure" json:"insecure" yaml:"insecure"`
	ServiceName string  `toml:"service_name" json:"service_name" yaml:"service_name"`
	SampleRatio float64 `toml:"sample_ratio" json:"sample_ratio" yaml:"sample_ratio" validate:"gte=0,lte=1"`
}

// MockConfig configures the development mock backend.
type MockConfig struct {
	Addr            string `toml:"addr" json:"addr" yaml:"addr" validate:"required,hostname_port"`
	TokenIntervalMs int    `toml:"token_interval_ms" json:"token_interval_ms" yaml:"token_interval_ms" validate:"gte=0"`
	// FilesDir is served under /files/download. Empty disables downloads.
	FilesDir string `toml:"files_dir" json:"files_dir" yaml:"files_dir"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// CurrentVersion is the config schema version written by SaveTOML.
const CurrentVersion = "1"

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Backend: BackendConfig{
			BaseURL:          "http://localhost:8000",
			TimeoutSecs:      30,
			OptimizeQuery:    true,
			PingPath:         "/health",
			PingIntervalSecs: 25,
			PingTimeoutMs:    3500,
		},
		Session: SessionConfig{
			Storage:  "memory",
			TTLHours: 12,
			RedisURL: "redis://localhost:6379/0",
		},
		Offline: OfflineConfig{
			TokenIntervalMs: 220,
		},
		UI: UIConfig{
			ShowSources:  true,
			Theme:        "auto",
			Markdown:     true,
			SidebarWidth: 28,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "buho-tui",
			SampleRatio: 1,
		},
		Mock: MockConfig{
			Addr:            "localhost:8000",
			TokenIntervalMs: 250,
		},
	}
}

// Timeout returns the request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// PingInterval returns the time between probes.
func (b BackendConfig) PingInterval() time.Duration {
	return time.Duration(b.PingIntervalSecs) * time.Second
}

// PingTimeout returns the per-probe timeout.
func (b BackendConfig) PingTimeout() time.Duration {
	return time.Duration(b.PingTimeoutMs) * time.Millisecond
}

// TTL returns the tab store TTL.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// TokenInterval returns the simulated token cadence.
func (o OfflineConfig) TokenInterval() time.Duration {
	return time.Duration(o.TokenIntervalMs) * time.Millisecond
}

// TokenInterval returns the mock backend token cadence.
func (m MockConfig) TokenInterval() time.Duration {
	return time.Duration(m.TokenIntervalMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the buho configuration directory path. BUHO_HOME
// overrides it.
func ConfigDir() (string, error) {
	if dir := os.Getenv("BUHO_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".buho"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

// DefaultLogFile returns ~/.buho/logs/buho.log.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "buho.log")
	}
	return filepath.Join(dir, "logs", "buho.log")
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config files to 0600. The redis URL may
// carry a password.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.buho, trying config.toml, config.json and
// config.yaml in that order, then built-in defaults. A .env file in the
// working directory or the config directory is read before environment
// overrides are applied; it never replaces variables already set.
//
// When a file exists but cannot be parsed, defaults are used and the parse
// error is returned alongside the usable config.
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := Default()
	var loadErr error

	loaders := []struct {
		path func() (string, error)
		load func(*Config, string) error
	}{
		{ConfigPathTOML, LoadTOML},
		{ConfigPathJSON, LoadJSON},
		{ConfigPathYAML, LoadYAML},
	}
	for _, l := range loaders {
		path, err := l.path()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if err := l.load(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
			cfg = Default()
			continue
		}
		loadErr = nil
		break
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads a specific file; the format follows the extension
// (.json, .yaml/.yml, otherwise TOML).
func LoadFromPath(path string) (*Config, error) {
	LoadDotEnv()

	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies env overrides, fills gaps and validates.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadDotEnv reads .env from the working directory and the config
// directory. Missing files are ignored.
func LoadDotEnv() {
	candidates := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	// SECURITY: Check and fix file permissions if needed
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file over cfg.
func LoadYAML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# buho configuration file\n")
	buf.WriteString("# Environment variables (BUHO_*) and .env override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

// newValidator reports fields by their TOML names so errors read like the
// config file.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the configuration and returns ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: describe(fe),
			})
		}
	}

	// SECURITY: credentials belong in redis_url, never in the backend URL,
	// which is logged and shown in the status bar.
	if u, err := url.Parse(c.Backend.BaseURL); err == nil && u.User != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: "must not contain credentials",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return fmt.Sprintf("is required when %s", strings.Replace(fe.Param(), " ", " is ", 1))
	case "http_url":
		return fmt.Sprintf("invalid URL '%v', must be http or https", fe.Value())
	case "oneof":
		return fmt.Sprintf("invalid value '%v', must be one of: %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with '%s'", fe.Param())
	case "hostname_port":
		return fmt.Sprintf("invalid address '%v', expected host:port", fe.Value())
	default:
		return fmt.Sprintf("failed '%s' check", fe.Tag())
	}
}

// SetDefaults fills zero values left by partial config files.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = d.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Backend.PingPath == "" {
		c.Backend.PingPath = d.Backend.PingPath
	}
	if c.Backend.PingIntervalSecs == 0 {
		c.Backend.PingIntervalSecs = d.Backend.PingIntervalSecs
	}
	if c.Backend.PingTimeoutMs == 0 {
		c.Backend.PingTimeoutMs = d.Backend.PingTimeoutMs
	}

	c.Session.Storage = strings.ToLower(c.Session.Storage)
	if c.Session.Storage == "" {
		c.Session.Storage = d.Session.Storage
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = d.Session.TTLHours
	}
	if c.Session.RedisURL == "" {
		c.Session.RedisURL = d.Session.RedisURL
	}

	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = DefaultLogFile()
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = d.Logging.MaxSizeMB
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}

	if c.Mock.Addr == "" {
		c.Mock.Addr = d.Mock.Addr
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - BUHO_API_BASE_URL: overrides backend.base_url
//   - BUHO_STORAGE: overrides session.storage
//   - BUHO_TAB_ID: overrides session.tab_id
//   - BUHO_REDIS_URL: overrides session.redis_url
//   - BUHO_LOG_LEVEL, BUHO_LOG_FILE: override logging.level and logging.file
//   - BUHO_TELEMETRY: "1" or "true" enables tracing
//   - BUHO_OTLP_ENDPOINT: overrides telemetry.endpoint
//   - BUHO_SHOW_SOURCES: "0" or "false" hides cited sources
//   - BUHO_FLOW_TREE: overrides navigation.tree_file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BUHO_API_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("BUHO_STORAGE"); v != "" {
		c.Session.Storage = v
	}
	if v := os.Getenv("BUHO_TAB_ID"); v != "" {
		c.Session.TabID = v
	}
	if v := os.Getenv("BUHO_REDIS_URL"); v != "" {
		c.Session.RedisURL = v
	}
	if v := os.Getenv("BUHO_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BUHO_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("BUHO_TELEMETRY"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("BUHO_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
	if v := os.Getenv("BUHO_SHOW_SOURCES"); v != "" {
		c.UI.ShowSources = parseBool(v)
	}
	if v := os.Getenv("BUHO_FLOW_TREE"); v != "" {
		c.Navigation.TreeFile = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if field.Kind() == reflect.Struct {
		return fmt.Errorf("cannot set section: %s", key)
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct by TOML names.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(strings.TrimSpace(key), ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i], "."))
		}
		field, ok := fieldByTOMLName(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return v, nil
}

func fieldByTOMLName(v reflect.Value, name string) (reflect.Value, bool) {
	name = strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlName(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	return strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("nil value")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns all configuration keys in dot notation.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := prefix + tomlName(f)
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name+".")
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the config. Config holds no reference types, so
// a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON for display.
// SECURITY: Redacts the redis password so it never reaches logs or the
// terminal scrollback.
func (c *Config) String() string {
	safe := c.Clone()
	safe.Session.RedisURL = redactURL(safe.Session.RedisURL)

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
	}
	return u.String()
}
