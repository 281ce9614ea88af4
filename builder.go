package scoreauth

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sportae/scoreauth/api"
	"github.com/sportae/scoreauth/jwt"
	"github.com/sportae/scoreauth/session"
)

// Builder assembles a [Manager]. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.Store
	client AuthClient
	logger *zap.Logger

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis persists credentials in Redis. Ignored when WithStore is also set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore persists credentials in store.
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithClient replaces the HTTP client built from Config.API.
func (b *Builder) WithClient(client AuthClient) *Builder {
	b.client = client
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink routes audit events to sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Manager with an empty,
// not yet ready session. Call [Manager.Restore] next.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("credential store required: use WithStore or WithRedis")
		}
		store = session.NewRedisStore(b.redis, cfg.Storage.Namespace, cfg.Storage.TTL)
	}

	client := b.client
	if client == nil {
		c, err := api.New(api.Config{
			BaseURL:   cfg.API.BaseURL,
			Timeout:   cfg.API.Timeout,
			UserAgent: cfg.API.UserAgent,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		client = c
	}

	m := &Manager{
		config:    cfg,
		creds:     session.NewCredentialSet(store, session.KeysWithPrefix(cfg.Storage.KeyPrefix)),
		client:    client,
		inspector: jwt.NewInspector(cfg.Session.TokenLeeway),
		logger:    logger.Named("session"),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
	}

	b.built = true
	return m, nil
}
