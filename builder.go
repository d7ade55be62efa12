package goToken

import (
	"errors"

	"github.com/MrEthical07/goToken/jwt"
	"go.uber.org/zap"
)

// ErrBuilderUsed is returned when Build is called a second time.
var ErrBuilderUsed = errors.New("builder already used")

// Builder assembles an Engine. It is single-use: after Build succeeds or
// fails, further Build calls return ErrBuilderUsed.
type Builder struct {
	config    Config
	clock     Clock
	auditSink AuditSink
	logger    *zap.Logger

	built bool
}

// New returns a Builder seeded with the default configuration. Credentials
// must still be supplied through WithConfig or WithCredentials.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. cfg is cloned.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCredentials replaces only the credential section. cc is cloned.
func (b *Builder) WithCredentials(cc CredentialConfig) *Builder {
	b.config.Credentials = cc.clone()
	return b
}

// WithClock sets the time source. Tests use it to pin "now".
func (b *Builder) WithClock(c Clock) *Builder {
	b.clock = c
	return b
}

// WithAuditSink sets the sink audit events are delivered to. Events are only
// produced when Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithLogger sets the logger Build reports configuration lint warnings to.
// The engine itself never logs.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns a ready Engine.
//
// Every validation failure is a *ConfigurationError. Lint warnings do not
// fail the build; they are logged once at Warn.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Credentials = cfg.Credentials.normalized()

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, w := range cfg.Lint() {
		logger.Warn("credential configuration warning",
			zap.String("code", w.Code),
			zap.String("detail", w.Message),
			zap.String("audience", cfg.Credentials.Audience),
		)
	}

	jm, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.Credentials.SigningMethod),
		Audience:      cfg.Credentials.Audience,
		Access: jwt.KeyConfig{
			Secret:      cfg.Credentials.AccessSecret,
			TTL:         cfg.Credentials.AccessTTL,
			ValidateExp: cfg.Credentials.AccessValidateExp,
		},
		Refresh: jwt.KeyConfig{
			Secret:      cfg.Credentials.RefreshSecret,
			TTL:         cfg.Credentials.RefreshTTL,
			ValidateExp: cfg.Credentials.RefreshValidateExp,
		},
	})
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &Engine{
		config:     cfg,
		jwtManager: jm,
		clock:      clock,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink, clock),
		metrics:    NewMetrics(cfg.Metrics),
	}, nil
}
