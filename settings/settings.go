package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/secret"
)

var (
	// ErrUnsupportedFormat is returned for a settings file whose extension is
	// not .yaml, .yml, .json or .jsonc.
	ErrUnsupportedFormat = errors.New("unsupported settings format")
	// ErrConflictingSecrets is returned when a master secret is combined with
	// explicit access or refresh secrets.
	ErrConflictingSecrets = errors.New("master_secret cannot be combined with access_secret or refresh_secret")
)

// Settings is the on-disk shape of an engine configuration.
type Settings struct {
	Credentials Credentials `yaml:"credentials" json:"credentials"`
	Metrics     Metrics     `yaml:"metrics" json:"metrics"`
	Audit       Audit       `yaml:"audit" json:"audit"`
	Security    Security    `yaml:"security" json:"security"`
	Log         Log         `yaml:"log" json:"log"`
}

// Credentials mirrors goToken.CredentialConfig in file-friendly units.
type Credentials struct {
	Audience           string `yaml:"audience" json:"audience" env:"GOTOKEN_AUDIENCE"`
	AccessSecret       string `yaml:"access_secret" json:"access_secret" env:"GOTOKEN_ACCESS_SECRET"`
	RefreshSecret      string `yaml:"refresh_secret" json:"refresh_secret" env:"GOTOKEN_REFRESH_SECRET"`
	MasterSecret       string `yaml:"master_secret" json:"master_secret" env:"GOTOKEN_MASTER_SECRET"`
	AccessTTLSeconds   int64  `yaml:"access_ttl_seconds" json:"access_ttl_seconds" env:"GOTOKEN_ACCESS_TTL_SECONDS"`
	RefreshTTLSeconds  int64  `yaml:"refresh_ttl_seconds" json:"refresh_ttl_seconds" env:"GOTOKEN_REFRESH_TTL_SECONDS"`
	AccessValidateExp  bool   `yaml:"access_validate_exp" json:"access_validate_exp" env:"GOTOKEN_ACCESS_VALIDATE_EXP"`
	RefreshValidateExp bool   `yaml:"refresh_validate_exp" json:"refresh_validate_exp" env:"GOTOKEN_REFRESH_VALIDATE_EXP"`
	SigningMethod      string `yaml:"signing_method" json:"signing_method" env:"GOTOKEN_SIGNING_METHOD"`
}

type Metrics struct {
	Enabled          bool `yaml:"enabled" json:"enabled" env:"GOTOKEN_METRICS_ENABLED"`
	LatencyHistogram bool `yaml:"latency_histogram" json:"latency_histogram" env:"GOTOKEN_METRICS_LATENCY"`
}

type Audit struct {
	Enabled    bool `yaml:"enabled" json:"enabled" env:"GOTOKEN_AUDIT_ENABLED"`
	BufferSize int  `yaml:"buffer_size" json:"buffer_size" env:"GOTOKEN_AUDIT_BUFFER_SIZE"`
	DropIfFull bool `yaml:"drop_if_full" json:"drop_if_full" env:"GOTOKEN_AUDIT_DROP_IF_FULL"`
}

type Security struct {
	ProductionMode  bool `yaml:"production_mode" json:"production_mode" env:"GOTOKEN_PRODUCTION_MODE"`
	MinSecretLength int  `yaml:"min_secret_length" json:"min_secret_length" env:"GOTOKEN_MIN_SECRET_LENGTH"`
}

// Log selects the zap logger built by the command line tool.
type Log struct {
	Level    string `yaml:"level" json:"level" env:"GOTOKEN_LOG_LEVEL"`
	Mode     string `yaml:"mode" json:"mode" env:"GOTOKEN_LOG_MODE"`
	Encoding string `yaml:"encoding" json:"encoding" env:"GOTOKEN_LOG_ENCODING"`
}

// Default returns settings matching goToken's baseline configuration with no
// audience and no secrets.
func Default() Settings {
	return Settings{
		Credentials: Credentials{
			AccessTTLSeconds:   300,
			RefreshTTLSeconds:  7 * 24 * 3600,
			AccessValidateExp:  true,
			RefreshValidateExp: true,
			SigningMethod:      "hs256",
		},
		Audit: Audit{
			BufferSize: 1024,
			DropIfFull: true,
		},
		Security: Security{
			MinSecretLength: 32,
		},
		Log: Log{
			Level:    "info",
			Mode:     "production",
			Encoding: "json",
		},
	}
}

// Read returns Default overlaid with the file at path and then the
// environment. An empty path reads the environment only.
func Read(path string) (Settings, error) {
	s := Default()
	if err := Load(path, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load decodes the file at path into out, choosing the decoder by extension,
// then applies env tags. Fields absent from both keep their current values.
// out must be a non-nil pointer to a struct.
func Load(path string, out any) error {
	if path != "" {
		if err := decodeFile(path, out); err != nil {
			return err
		}
	}
	if err := env.Parse(out); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	return nil
}

func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), out); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Config converts s into a goToken.Config. Secrets are decoded but the result
// is not validated; the engine builder does that.
func (s Settings) Config() (goToken.Config, error) {
	access, refresh, err := s.Credentials.secrets()
	if err != nil {
		return goToken.Config{}, err
	}

	return goToken.Config{
		Credentials: goToken.CredentialConfig{
			AccessSecret:       access,
			RefreshSecret:      refresh,
			Audience:           s.Credentials.Audience,
			AccessTTL:          time.Duration(s.Credentials.AccessTTLSeconds) * time.Second,
			RefreshTTL:         time.Duration(s.Credentials.RefreshTTLSeconds) * time.Second,
			AccessValidateExp:  s.Credentials.AccessValidateExp,
			RefreshValidateExp: s.Credentials.RefreshValidateExp,
			SigningMethod:      s.Credentials.SigningMethod,
		},
		Metrics: goToken.MetricsConfig{
			Enabled:                 s.Metrics.Enabled,
			EnableLatencyHistograms: s.Metrics.LatencyHistogram,
		},
		Audit: goToken.AuditConfig{
			Enabled:    s.Audit.Enabled,
			BufferSize: s.Audit.BufferSize,
			DropIfFull: s.Audit.DropIfFull,
		},
		Security: goToken.SecurityConfig{
			ProductionMode:  s.Security.ProductionMode,
			MinSecretLength: s.Security.MinSecretLength,
		},
	}, nil
}

func (c Credentials) secrets() (access, refresh []byte, err error) {
	if c.MasterSecret != "" {
		if c.AccessSecret != "" || c.RefreshSecret != "" {
			return nil, nil, ErrConflictingSecrets
		}
		master, err := secret.Decode(c.MasterSecret)
		if err != nil {
			return nil, nil, fmt.Errorf("master_secret: %w", err)
		}
		return secret.DerivePair(master, secret.DefaultLength)
	}

	access, err = secret.Decode(c.AccessSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("access_secret: %w", err)
	}
	refresh, err = secret.Decode(c.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh_secret: %w", err)
	}
	return access, refresh, nil
}
