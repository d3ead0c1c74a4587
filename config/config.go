// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Limits    LimitsConfig    `yaml:"limits"`
	Usage     UsageConfig     `yaml:"usage"`
	Retry     RetryConfig     `yaml:"retry"`
	Features  FeaturesConfig  `yaml:"features"`
	Providers ProvidersConfig `yaml:"providers"`
	Auth      AuthConfig      `yaml:"auth"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RateLimitConfig configures the IP rate limiter.
type RateLimitConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// LimitsConfig configures static operation caps and per-plan quotas.
type LimitsConfig struct {
	MaxImagesPerRequest int        `yaml:"max_images_per_request"`
	MaxBatchSize        int        `yaml:"max_batch_size"`
	Demo                PlanLimits `yaml:"demo"`
	Basic               PlanLimits `yaml:"basic"`
	Pro                 PlanLimits `yaml:"pro"`
}

// PlanLimits is the per-period quota for one plan.
type PlanLimits struct {
	MaxRequests int `yaml:"max_requests"`
	MaxImages   int `yaml:"max_images"`
}

// UsageConfig configures usage accounting.
// Store "memory" keeps records in process memory; "sqlite" persists them.
type UsageConfig struct {
	Store    string `yaml:"store"` // "memory" or "sqlite"
	DSN      string `yaml:"dsn"`
	DemoMode bool   `yaml:"demo_mode"`
}

// RetryConfig configures the provider-call retry wrapper.
type RetryConfig struct {
	Retries int           `yaml:"retries"`
	Timeout time.Duration `yaml:"timeout"`
}

// FeaturesConfig holds operational kill switches. Everything is enabled
// unless explicitly disabled, so an empty config serves all operations.
type FeaturesConfig struct {
	DisablePromptGeneration  bool `yaml:"disable_prompt_generation"`
	DisableImageGeneration   bool `yaml:"disable_image_generation"`
	DisableBackgroundRemoval bool `yaml:"disable_background_removal"`
}

// ProvidersConfig configures external providers.
type ProvidersConfig struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// AuthConfig configures optional API-key identity resolution.
// Without keys, callers resolve to the anonymous identity and the plan is
// derived from demo mode.
type AuthConfig struct {
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig binds a bcrypt-hashed API key to a user and plan.
type APIKeyConfig struct {
	UserID string `yaml:"user_id"`
	Plan   string `yaml:"plan"`
	Hash   string `yaml:"hash"` // bcrypt hash of the key
}

// SweepConfig configures background pruning of stale store entries.
type SweepConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Schedule       string        `yaml:"schedule"` // cron expression
	UsageRetention time.Duration `yaml:"usage_retention"`
	RateRetention  time.Duration `yaml:"rate_retention"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file, applies PAGECRAFT_* environment
// overrides, fills defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables referenced in the file
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables,
// for container deployments that ship no config file.
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falling back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies PAGECRAFT_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAGECRAFT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PAGECRAFT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PAGECRAFT_RATELIMIT_ENABLED"); v != "" {
		cfg.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("PAGECRAFT_RATELIMIT_MAX"); v != "" {
		if max, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.MaxRequests = max
		}
	}
	if v := os.Getenv("PAGECRAFT_RATELIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if v := os.Getenv("PAGECRAFT_USAGE_STORE"); v != "" {
		cfg.Usage.Store = v
	}
	if v := os.Getenv("PAGECRAFT_USAGE_DSN"); v != "" {
		cfg.Usage.DSN = v
	}
	if v := os.Getenv("PAGECRAFT_DEMO_MODE"); v != "" {
		cfg.Usage.DemoMode = parseBool(v)
	}
	if v := os.Getenv("PAGECRAFT_GEMINI_API_KEY"); v != "" {
		cfg.Providers.GeminiAPIKey = v
	}
	if v := os.Getenv("PAGECRAFT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PAGECRAFT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PAGECRAFT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Must cover the worst-case retry latency: (retries+1) x timeout.
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 20
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}

	if cfg.Limits.MaxImagesPerRequest == 0 {
		cfg.Limits.MaxImagesPerRequest = 4
	}
	if cfg.Limits.MaxBatchSize == 0 {
		cfg.Limits.MaxBatchSize = 6
	}
	if cfg.Limits.Demo == (PlanLimits{}) {
		cfg.Limits.Demo = PlanLimits{MaxRequests: 20, MaxImages: 40}
	}
	if cfg.Limits.Basic == (PlanLimits{}) {
		cfg.Limits.Basic = PlanLimits{MaxRequests: 200, MaxImages: 400}
	}
	if cfg.Limits.Pro == (PlanLimits{}) {
		cfg.Limits.Pro = PlanLimits{MaxRequests: 1000, MaxImages: 3000}
	}

	if cfg.Usage.Store == "" {
		cfg.Usage.Store = "memory"
	}
	if cfg.Usage.DSN == "" {
		cfg.Usage.DSN = "pagecraft.db"
	}

	if cfg.Retry.Retries == 0 {
		cfg.Retry.Retries = 2
	}
	if cfg.Retry.Timeout == 0 {
		cfg.Retry.Timeout = 8 * time.Second
	}

	if cfg.Sweep.Schedule == "" {
		cfg.Sweep.Schedule = "0 * * * *" // hourly
	}
	if cfg.Sweep.UsageRetention == 0 {
		cfg.Sweep.UsageRetention = 2 * 31 * 24 * time.Hour // roughly two periods
	}
	if cfg.Sweep.RateRetention == 0 {
		cfg.Sweep.RateRetention = time.Hour
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.MaxRequests < 1 {
		return fmt.Errorf("rate_limit.max_requests must be positive, got %d", cfg.RateLimit.MaxRequests)
	}
	if cfg.RateLimit.Window < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s, got %s", cfg.RateLimit.Window)
	}
	if cfg.Usage.Store != "memory" && cfg.Usage.Store != "sqlite" {
		return fmt.Errorf("usage.store must be \"memory\" or \"sqlite\", got %q", cfg.Usage.Store)
	}
	if cfg.Retry.Retries < 0 {
		return fmt.Errorf("retry.retries must not be negative, got %d", cfg.Retry.Retries)
	}
	if cfg.Retry.Timeout < time.Millisecond {
		return fmt.Errorf("retry.timeout too small: %s", cfg.Retry.Timeout)
	}
	for i, k := range cfg.Auth.Keys {
		if k.UserID == "" {
			return fmt.Errorf("auth.keys[%d]: user_id is required", i)
		}
		if k.Hash == "" {
			return fmt.Errorf("auth.keys[%d]: hash is required", i)
		}
	}
	for plan, pl := range map[string]PlanLimits{
		"demo": cfg.Limits.Demo, "basic": cfg.Limits.Basic, "pro": cfg.Limits.Pro,
	} {
		if pl.MaxRequests < 1 || pl.MaxImages < 1 {
			return fmt.Errorf("limits.%s: max_requests and max_images must be positive", plan)
		}
	}
	return nil
}
