package middleware

import (
	"errors"
	"net/http"
	"strings"

	goToken "github.com/MrEthical07/goToken"
	"go.uber.org/zap"
)

// ErrMissingToken marks a request that carried no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// Verifier verifies access tokens. *goToken.Engine satisfies it.
type Verifier interface {
	VerifyAccess(token string) (goToken.Claims, error)
}

// Option configures Guard, Optional and RotateHandler.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	extract func(*http.Request) (string, bool)
}

// WithLogger logs rejections. Audience mismatches are logged at Warn because
// they usually mean two services disagree on configuration; other rejections
// are logged at Info.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExtractor replaces Authorization header parsing, for example to read
// the token from a cookie.
func WithExtractor(extract func(*http.Request) (string, bool)) Option {
	return func(o *options) {
		if extract != nil {
			o.extract = extract
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:  zap.NewNop(),
		extract: headerToken,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Guard rejects requests that do not carry a valid access token.
func Guard(engine Verifier, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
				return
			}

			token, ok := o.extract(r)
			if !ok {
				WriteRejection(w, RejectionFor(ErrMissingToken))
				return
			}

			claims, err := engine.VerifyAccess(token)
			if err != nil {
				logRejection(o.logger, r, err)
				WriteRejection(w, RejectionFor(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(goToken.WithClaims(r.Context(), claims)))
		})
	}
}

// Optional attaches claims when a valid token is sent and passes anonymous
// requests through untouched. A token that is sent but fails verification is
// still rejected.
func Optional(engine Verifier, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := o.extract(r)
			if !ok || engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := engine.VerifyAccess(token)
			if err != nil {
				logRejection(o.logger, r, err)
				WriteRejection(w, RejectionFor(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(goToken.WithClaims(r.Context(), claims)))
		})
	}
}

func headerToken(r *http.Request) (string, bool) {
	return BearerToken(r.Header.Get("Authorization"))
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

func logRejection(logger *zap.Logger, r *http.Request, err error) {
	kind := goToken.KindOf(err)
	fields := []zap.Field{
		zap.String("kind", kind.String()),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if kind == goToken.KindAudienceMismatch {
		logger.Warn("token rejected", fields...)
		return
	}
	logger.Info("token rejected", fields...)
}
