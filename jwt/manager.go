package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod names the HMAC variant used to seal tokens.
type SigningMethod string

const (
	// MethodHS256 signs with HMAC-SHA256. It is the default.
	MethodHS256 SigningMethod = "hs256"
	// MethodHS384 signs with HMAC-SHA384.
	MethodHS384 SigningMethod = "hs384"
	// MethodHS512 signs with HMAC-SHA512.
	MethodHS512 SigningMethod = "hs512"
)

// Kind distinguishes the two credential kinds. It is embedded in every token
// as the private "typ" claim.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrSignature is returned when a token is malformed or its signature does
	// not verify under the expected secret and algorithm.
	ErrSignature = errors.New("token signature invalid")
	// ErrAudience is returned when a correctly signed token names a different audience.
	ErrAudience = errors.New("token audience mismatch")
	// ErrExpired is returned when expiration is enforced and exp <= now.
	ErrExpired = errors.New("token expired")
)

// KeyConfig carries the sealing parameters for one credential kind.
type KeyConfig struct {
	Secret      []byte
	TTL         time.Duration
	ValidateExp bool
}

// Config defines the signing parameters for both credential kinds.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	SigningMethod SigningMethod
	Audience      string
	Access        KeyConfig
	Refresh       KeyConfig
}

// Manager seals and unseals access and refresh tokens. It holds no mutable state.
type Manager struct {
	method   jwt.SigningMethod
	audience string
	keys     map[Kind]KeyConfig
	parser   *jwt.Parser
}

// Claims is the wire payload of every token.
type Claims struct {
	Kind Kind `json:"typ"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager. Secrets are copied.
func NewManager(cfg Config) (*Manager, error) {
	method, err := resolveMethod(cfg.SigningMethod)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("audience is required")
	}

	keys := make(map[Kind]KeyConfig, 2)
	for kind, kc := range map[Kind]KeyConfig{KindAccess: cfg.Access, KindRefresh: cfg.Refresh} {
		if len(kc.Secret) == 0 {
			return nil, fmt.Errorf("%s secret is required", kind)
		}
		ttl := kc.TTL.Truncate(time.Second)
		if ttl < time.Second {
			return nil, fmt.Errorf("%s TTL must be >= 1s", kind)
		}
		secret := make([]byte, len(kc.Secret))
		copy(secret, kc.Secret)
		keys[kind] = KeyConfig{Secret: secret, TTL: ttl, ValidateExp: kc.ValidateExp}
	}

	// Claims validation is done by hand in Parse so that the
	// signature -> audience -> expiry order and the per-kind exp toggle hold.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithoutClaimsValidation(),
		jwt.WithStrictDecoding(),
	)

	return &Manager{
		method:   method,
		audience: cfg.Audience,
		keys:     keys,
		parser:   parser,
	}, nil
}

// Algorithm returns the JWS "alg" value written into token headers.
func (m *Manager) Algorithm() string {
	return m.method.Alg()
}

// TTL returns the lifetime configured for kind.
func (m *Manager) TTL(kind Kind) time.Duration {
	return m.keys[kind].TTL
}

// Issue seals a new token of the given kind for subject at now.
// Timestamps are whole Unix seconds.
func (m *Manager) Issue(kind Kind, subject string, now time.Time) (string, *Claims, error) {
	kc, ok := m.keys[kind]
	if !ok {
		return "", nil, fmt.Errorf("unknown token kind %q", kind)
	}

	issuedAt := time.Unix(now.Unix(), 0)
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(kc.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(kc.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, claims, nil
}

// Parse unseals tokenStr as a token of the given kind and checks it against
// now. Every failure wraps exactly one of ErrSignature, ErrAudience or ErrExpired.
func (m *Manager) Parse(kind Kind, tokenStr string, now time.Time) (*Claims, error) {
	kc, ok := m.keys[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token kind %q", ErrSignature, kind)
	}

	claims := &Claims{}
	token, err := m.parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return kc.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if !token.Valid {
		return nil, ErrSignature
	}

	if err := checkStructure(kind, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	if claims.Audience[0] != m.audience {
		return nil, fmt.Errorf("%w: got %q", ErrAudience, claims.Audience[0])
	}
	if kc.ValidateExp && claims.ExpiresAt.Unix() <= now.Unix() {
		return nil, ErrExpired
	}

	return claims, nil
}

func checkStructure(kind Kind, c *Claims) error {
	switch {
	case c.Kind != kind:
		return fmt.Errorf("token kind %q, want %q", c.Kind, kind)
	case c.Subject == "":
		return errors.New("missing sub")
	case c.IssuedAt == nil:
		return errors.New("missing iat")
	case c.ExpiresAt == nil:
		return errors.New("missing exp")
	case len(c.Audience) != 1:
		return fmt.Errorf("expected exactly one audience, got %d", len(c.Audience))
	}
	return nil
}

func resolveMethod(m SigningMethod) (jwt.SigningMethod, error) {
	switch SigningMethod(strings.ToLower(string(m))) {
	case "", MethodHS256:
		return jwt.SigningMethodHS256, nil
	case MethodHS384:
		return jwt.SigningMethodHS384, nil
	case MethodHS512:
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing method %q", m)
	}
}
