package goToken

import (
	"bytes"
	"strings"
	"time"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/MrEthical07/goToken/secret"
)

// Config aggregates everything an Engine is built from.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Credentials CredentialConfig
	Metrics     MetricsConfig
	Audit       AuditConfig
	Security    SecurityConfig
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig describes signing secrets, audience, lifetimes and
// expiration-check toggles for both credential kinds.
//
// Lifetimes are truncated to whole seconds and must be at least one second.
// AccessTTL should not exceed RefreshTTL; Lint reports it but Validate does not.
type CredentialConfig struct {
	AccessSecret       []byte
	RefreshSecret      []byte
	Audience           string
	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	AccessValidateExp  bool
	RefreshValidateExp bool
	SigningMethod      string // "hs256" (default), "hs384", "hs512"
}

// NewCredentialConfig validates the six credential fields and returns an
// independent copy. The returned error is always a *ConfigurationError.
func NewCredentialConfig(
	accessSecret, refreshSecret []byte,
	audience string,
	accessTTL, refreshTTL time.Duration,
	accessValidateExp, refreshValidateExp bool,
) (CredentialConfig, error) {
	c := CredentialConfig{
		AccessSecret:       cloneBytes(accessSecret),
		RefreshSecret:      cloneBytes(refreshSecret),
		Audience:           audience,
		AccessTTL:          accessTTL,
		RefreshTTL:         refreshTTL,
		AccessValidateExp:  accessValidateExp,
		RefreshValidateExp: refreshValidateExp,
	}
	if err := c.Validate(); err != nil {
		return CredentialConfig{}, err
	}
	return c.normalized(), nil
}

// Validate reports the first rule c violates as a *ConfigurationError.
func (c CredentialConfig) Validate() error {
	if len(c.AccessSecret) == 0 {
		return configErr("AccessSecret", "must not be empty")
	}
	if len(c.RefreshSecret) == 0 {
		return configErr("RefreshSecret", "must not be empty")
	}
	if strings.TrimSpace(c.Audience) == "" {
		return configErr("Audience", "must not be empty")
	}
	if c.AccessTTL < time.Second {
		return configErr("AccessTTL", "must be >= 1s")
	}
	if c.RefreshTTL < time.Second {
		return configErr("RefreshTTL", "must be >= 1s")
	}
	switch jwt.SigningMethod(strings.ToLower(c.SigningMethod)) {
	case "", jwt.MethodHS256, jwt.MethodHS384, jwt.MethodHS512:
	default:
		return configErr("SigningMethod", "must be hs256, hs384 or hs512")
	}
	return nil
}

func (c CredentialConfig) normalized() CredentialConfig {
	c.AccessTTL = c.AccessTTL.Truncate(time.Second)
	c.RefreshTTL = c.RefreshTTL.Truncate(time.Second)
	c.SigningMethod = strings.ToLower(c.SigningMethod)
	if c.SigningMethod == "" {
		c.SigningMethod = string(jwt.MethodHS256)
	}
	return c
}

func (c CredentialConfig) clone() CredentialConfig {
	c.AccessSecret = cloneBytes(c.AccessSecret)
	c.RefreshSecret = cloneBytes(c.RefreshSecret)
	return c
}

// MetricsConfig toggles in-process counters and the verify latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// SecurityConfig holds hardening switches that tighten Validate.
type SecurityConfig struct {
	ProductionMode  bool
	MinSecretLength int
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Credentials: CredentialConfig{
			AccessTTL:          5 * time.Minute,
			RefreshTTL:         7 * 24 * time.Hour,
			AccessValidateExp:  true,
			RefreshValidateExp: true,
			SigningMethod:      string(jwt.MethodHS256),
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Security: SecurityConfig{
			ProductionMode:  false,
			MinSecretLength: 32,
		},
	}
}

// DefaultConfig returns the baseline configuration for audience with freshly
// generated, independent access and refresh secrets.
func DefaultConfig(audience string) Config {
	cfg := defaultConfig()
	cfg.Credentials.Audience = audience
	cfg.Credentials.AccessSecret = secret.MustGenerate(secret.DefaultLength)
	cfg.Credentials.RefreshSecret = secret.MustGenerate(secret.DefaultLength)
	return cfg
}

// HighSecurityConfig returns DefaultConfig with production checks enabled,
// HS512 signing and shorter lifetimes.
func HighSecurityConfig(audience string) Config {
	cfg := DefaultConfig(audience)
	cfg.Credentials.SigningMethod = string(jwt.MethodHS512)
	cfg.Credentials.AccessSecret = secret.MustGenerate(64)
	cfg.Credentials.RefreshSecret = secret.MustGenerate(64)
	cfg.Credentials.AccessTTL = 2 * time.Minute
	cfg.Credentials.RefreshTTL = 24 * time.Hour
	cfg.Security.ProductionMode = true
	cfg.Security.MinSecretLength = 64
	return cfg
}

// DevelopmentConfig returns DefaultConfig with metrics enabled and long-lived
// access tokens for local work. It never passes ProductionMode checks.
func DevelopmentConfig(audience string) Config {
	cfg := DefaultConfig(audience)
	cfg.Credentials.AccessTTL = time.Hour
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Credentials = cfg.Credentials.clone()
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the credential rules and, in production mode, the
// hardening rules. Every returned error is a *ConfigurationError.
func (c *Config) Validate() error {
	if err := c.Credentials.Validate(); err != nil {
		return err
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return configErr("Audit.BufferSize", "must be > 0 when audit is enabled")
	}
	if c.Security.MinSecretLength < 0 {
		return configErr("Security.MinSecretLength", "must be >= 0")
	}

	if c.Security.ProductionMode {
		minLen := c.Security.MinSecretLength
		if minLen < 32 {
			minLen = 32
		}
		if len(c.Credentials.AccessSecret) < minLen {
			return configErr("AccessSecret", "is shorter than the production minimum")
		}
		if len(c.Credentials.RefreshSecret) < minLen {
			return configErr("RefreshSecret", "is shorter than the production minimum")
		}
		if bytes.Equal(c.Credentials.AccessSecret, c.Credentials.RefreshSecret) {
			return configErr("RefreshSecret", "must differ from AccessSecret in production mode")
		}
		if c.Credentials.AccessTTL > 15*time.Minute {
			return configErr("AccessTTL", "must be <= 15m in production mode")
		}
		if c.Credentials.RefreshTTL > 30*24*time.Hour {
			return configErr("RefreshTTL", "must be <= 30d in production mode")
		}
		if !c.Credentials.AccessValidateExp || !c.Credentials.RefreshValidateExp {
			return configErr("ValidateExp", "expiration checks cannot be disabled in production mode")
		}
	}

	return nil
}
