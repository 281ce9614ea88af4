package scoreauth

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sportae/scoreauth/api"
	"github.com/sportae/scoreauth/session"
)

// Config configures a [Manager]. Build one with [DefaultConfig] and override
// fields; a Config is copied at Build time.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Session SessionConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the remote auth service.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig lays out the credential slots.
type StorageConfig struct {
	// KeyPrefix prefixes the three slot names ("@sportae:" by default).
	KeyPrefix string
	// Namespace prefixes Redis keys when the Redis store is used.
	Namespace string
	// TTL expires Redis slots; zero keeps them until logout.
	TTL time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig tunes restore behavior.
type SessionConfig struct {
	// DiscardExpiredTokens clears a stored session at Restore when its token
	// is a JWT whose exp has passed. Opaque tokens are always restored.
	DiscardExpiredTokens bool
	// TokenLeeway tolerates clock skew when judging expiry.
	TokenLeeway time.Duration
}

// AuditConfig controls asynchronous audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: api.DefaultBaseURL,
			Timeout: 15 * time.Second,
		},
		Storage: StorageConfig{
			KeyPrefix: session.DefaultKeyPrefix,
		},
		Session: SessionConfig{
			TokenLeeway: 30 * time.Second,
		},
		Audit: AuditConfig{
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("API.BaseURL must be an absolute URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("API.BaseURL scheme must be http or https")
		}
	}
	if c.API.Timeout < 0 {
		return errors.New("API.Timeout must be >= 0")
	}
	if c.Storage.TTL < 0 {
		return errors.New("Storage.TTL must be >= 0")
	}
	if strings.ContainsAny(c.Storage.KeyPrefix, " \t\r\n") {
		return errors.New("Storage.KeyPrefix must not contain whitespace")
	}
	if c.Session.TokenLeeway < 0 || c.Session.TokenLeeway > 10*time.Minute {
		return errors.New("Session.TokenLeeway must be within [0, 10m]")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics.EnableLatencyHistograms requires Metrics.Enabled")
	}
	return nil
}
