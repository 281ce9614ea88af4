// Package config loads scoreauth settings from an optional .env-style file
// and SCOREAUTH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sportae/scoreauth"
	"github.com/sportae/scoreauth/api"
	"github.com/sportae/scoreauth/session"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "SCOREAUTH"

// Config holds every setting of the client.
type Config struct {
	API     APIConfig
	Redis   RedisConfig
	Storage StorageConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
	Log     LogConfig
}

// APIConfig locates the auth service.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// RedisConfig holds Redis connection settings. An empty Addr selects the
// in-process store.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig lays out the credential slots.
type StorageConfig struct {
	KeyPrefix string
	Namespace string
	TTL       time.Duration
}

type SessionConfig struct {
	DiscardExpiredTokens bool
	TokenLeeway          time.Duration
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level string
	// Format is "json" or "console".
	Format string
}

// Load reads settings from the environment and, when present, a .env file in
// the working directory.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// A missing .env is fine; env vars and defaults still apply.
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath reads settings from path, then lets the environment override
// them. A missing file is an error.
func LoadWithPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := scoreauth.DefaultConfig()

	// API
	v.SetDefault("API_BASE_URL", api.DefaultBaseURL)
	v.SetDefault("API_TIMEOUT", defaults.API.Timeout.String())
	v.SetDefault("API_USER_AGENT", "scoreauth")

	// Redis
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Storage
	v.SetDefault("STORAGE_KEY_PREFIX", session.DefaultKeyPrefix)
	v.SetDefault("STORAGE_NAMESPACE", "scoreauth")
	v.SetDefault("STORAGE_TTL", "0s")

	// Session
	v.SetDefault("SESSION_DISCARD_EXPIRED_TOKENS", false)
	v.SetDefault("SESSION_TOKEN_LEEWAY", defaults.Session.TokenLeeway.String())

	// Audit
	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("AUDIT_BUFFER_SIZE", defaults.Audit.BufferSize)
	v.SetDefault("AUDIT_DROP_IF_FULL", defaults.Audit.DropIfFull)

	// Metrics
	v.SetDefault("METRICS_ENABLED", defaults.Metrics.Enabled)
	v.SetDefault("METRICS_LATENCY_HISTOGRAMS", false)

	// Log
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// API
	cfg.API.BaseURL = v.GetString("API_BASE_URL")
	cfg.API.Timeout = v.GetDuration("API_TIMEOUT")
	cfg.API.UserAgent = v.GetString("API_USER_AGENT")

	// Redis
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Storage
	cfg.Storage.KeyPrefix = v.GetString("STORAGE_KEY_PREFIX")
	cfg.Storage.Namespace = v.GetString("STORAGE_NAMESPACE")
	cfg.Storage.TTL = v.GetDuration("STORAGE_TTL")

	// Session
	cfg.Session.DiscardExpiredTokens = v.GetBool("SESSION_DISCARD_EXPIRED_TOKENS")
	cfg.Session.TokenLeeway = v.GetDuration("SESSION_TOKEN_LEEWAY")

	// Audit
	cfg.Audit.Enabled = v.GetBool("AUDIT_ENABLED")
	cfg.Audit.BufferSize = v.GetInt("AUDIT_BUFFER_SIZE")
	cfg.Audit.DropIfFull = v.GetBool("AUDIT_DROP_IF_FULL")

	// Metrics
	cfg.Metrics.Enabled = v.GetBool("METRICS_ENABLED")
	cfg.Metrics.EnableLatencyHistograms = v.GetBool("METRICS_LATENCY_HISTOGRAMS")

	// Log
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")
}

// Validate checks the settings the Manager does not check itself.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Redis.Addr != "" && c.Redis.PoolSize <= 0 {
		return errors.New("REDIS_POOL_SIZE must be > 0")
	}
	if c.Redis.DB < 0 {
		return errors.New("REDIS_DB must be >= 0")
	}
	mc := c.ManagerConfig()
	return mc.Validate()
}

// ManagerConfig maps the settings onto [scoreauth.Config].
func (c *Config) ManagerConfig() scoreauth.Config {
	return scoreauth.Config{
		API: scoreauth.APIConfig{
			BaseURL:   c.API.BaseURL,
			Timeout:   c.API.Timeout,
			UserAgent: c.API.UserAgent,
		},
		Storage: scoreauth.StorageConfig{
			KeyPrefix: c.Storage.KeyPrefix,
			Namespace: c.Storage.Namespace,
			TTL:       c.Storage.TTL,
		},
		Session: scoreauth.SessionConfig{
			DiscardExpiredTokens: c.Session.DiscardExpiredTokens,
			TokenLeeway:          c.Session.TokenLeeway,
		},
		Audit: scoreauth.AuditConfig{
			Enabled:    c.Audit.Enabled,
			BufferSize: c.Audit.BufferSize,
			DropIfFull: c.Audit.DropIfFull,
		},
		Metrics: scoreauth.MetricsConfig{
			Enabled:                 c.Metrics.Enabled,
			EnableLatencyHistograms: c.Metrics.EnableLatencyHistograms,
		},
	}
}

// UsesRedis reports whether a Redis address is configured.
func (c *Config) UsesRedis() bool {
	return c.Redis.Addr != ""
}

// RedisOptions returns connection options for the configured server.
func (c *Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:         c.Redis.Addr,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		PoolSize:     c.Redis.PoolSize,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
	}
}

// Logger builds the configured zap logger.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
