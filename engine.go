package goToken

import (
	"time"

	"github.com/MrEthical07/goToken/internal/flows"
	"github.com/MrEthical07/goToken/jwt"
)

// Engine mints, verifies and rotates credentials.
//
// Engine instances are immutable after Build and safe for concurrent use. They
// hold no per-token state: every verification is decided from the token, the
// configuration and the clock alone.
type Engine struct {
	config     Config
	jwtManager *jwt.Manager
	clock      Clock
	audit      *auditDispatcher
	metrics    *Metrics
}

// NewEngine builds an Engine from cc with default metrics, audit and security
// settings. It is shorthand for New().WithCredentials(cc).Build().
func NewEngine(cc CredentialConfig) (*Engine, error) {
	return New().WithCredentials(cc).Build()
}

// Close flushes and stops the audit dispatcher. The engine keeps minting and
// verifying after Close; only auditing stops.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Audience returns the audience every token from this engine is bound to.
func (e *Engine) Audience() string {
	if e == nil {
		return ""
	}
	return e.config.Credentials.Audience
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) mintDeps() flows.MintDeps {
	return flows.MintDeps{
		Issue: e.jwtManager.Issue,
		Now:   e.clock.Now,
	}
}

/*
====================================
MINT
====================================
*/

// MintAccess issues an access token for subject valid from now for AccessTTL.
func (e *Engine) MintAccess(subject string) (string, error) {
	token, _, err := e.MintAccessWithClaims(subject)
	return token, err
}

// MintAccessWithClaims is MintAccess that also returns the claims sealed into
// the token, so callers can report expires_at without parsing it back.
func (e *Engine) MintAccessWithClaims(subject string) (string, Claims, error) {
	if e == nil || e.jwtManager == nil {
		return "", Claims{}, ErrEngineNotReady
	}

	res := flows.RunMintAccess(subject, e.mintDeps())
	if res.Failure != flows.FailureNone {
		err := e.mintError(res.Failure, TokenAccess, res.Err)
		e.emitFailure(auditEventAccessMinted, subject, TokenAccess, err)
		return "", Claims{}, err
	}

	claims := claimsFromWire(res.Claims)
	e.metricInc(MetricAccessMinted)
	e.emitSuccess(auditEventAccessMinted, claims)
	return res.Token, claims, nil
}

// MintPair issues an access and a refresh token for subject. Both are stamped
// with the same issue instant.
func (e *Engine) MintPair(subject string) (TokenPair, error) {
	if e == nil || e.jwtManager == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	res := flows.RunMintPair(subject, e.mintDeps())
	if res.Failure != flows.FailureNone {
		err := e.mintError(res.Failure, "", res.Err)
		e.emitFailure(auditEventPairMinted, subject, "", err)
		return TokenPair{}, err
	}

	pair := TokenPair{
		AccessToken:   res.AccessToken,
		RefreshToken:  res.RefreshToken,
		AccessClaims:  claimsFromWire(res.AccessClaims),
		RefreshClaims: claimsFromWire(res.RefreshClaims),
	}
	e.metricInc(MetricPairMinted)
	e.emitPairSuccess(pair)
	return pair, nil
}

func (e *Engine) mintError(kind flows.FailureKind, credential TokenKind, cause error) error {
	if kind == flows.FailureSubject {
		e.metricInc(MetricMintRejected)
		return &TokenError{Kind: KindInvalidSubject, Credential: credential}
	}
	// Issue only fails when HMAC signing itself fails, which golang-jwt
	// reports for an unusable key. That is a configuration problem.
	return &ConfigurationError{Field: "SigningMethod", Reason: "signing failed: " + cause.Error()}
}

/*
====================================
VERIFY
====================================
*/

// VerifyAccess checks token as an access credential and returns its claims.
//
// Checks run in order: signature and structure, audience, then expiry when
// AccessValidateExp is set. The first failure is returned as a *TokenError.
func (e *Engine) VerifyAccess(token string) (Claims, error) {
	return e.verify(jwt.KindAccess, token)
}

// VerifyRefresh checks token as a refresh credential. It applies the same
// order as VerifyAccess using the refresh secret and RefreshValidateExp.
func (e *Engine) VerifyRefresh(token string) (Claims, error) {
	return e.verify(jwt.KindRefresh, token)
}

func (e *Engine) verify(kind jwt.Kind, token string) (Claims, error) {
	if e == nil || e.jwtManager == nil {
		return Claims{}, ErrEngineNotReady
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	res := flows.RunVerify(kind, token, flows.VerifyDeps{
		Parse: e.jwtManager.Parse,
		Now:   e.clock.Now,
	})

	if !start.IsZero() {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}

	credential := TokenKind(kind)
	if res.Failure != flows.FailureNone {
		err := e.verifyError(res.Failure, credential, res.Err)
		e.emitFailure(auditEventVerifyFailure, "", credential, err)
		return Claims{}, err
	}

	claims := claimsFromWire(res.Claims)
	if kind == jwt.KindAccess {
		e.metricInc(MetricAccessVerified)
	} else {
		e.metricInc(MetricRefreshVerified)
	}
	e.emitSuccess(auditEventVerifySuccess, claims)
	return claims, nil
}

func (e *Engine) verifyError(kind flows.FailureKind, credential TokenKind, cause error) *TokenError {
	te := &TokenError{Credential: credential, Err: cause}
	switch kind {
	case flows.FailureAudience:
		te.Kind = KindAudienceMismatch
		e.metricInc(MetricAudienceMismatch)
	case flows.FailureExpired:
		te.Kind = KindExpired
		if credential == TokenAccess {
			e.metricInc(MetricAccessExpired)
		} else {
			e.metricInc(MetricRefreshExpired)
		}
	default:
		te.Kind = KindInvalidSignature
		e.metricInc(MetricInvalidSignature)
	}
	return te
}

/*
====================================
ROTATE
====================================
*/

// Rotate exchanges a refresh token for a new access token bound to the same
// subject.
//
// The refresh token is verified exactly as VerifyRefresh would; on any
// failure that error is returned and nothing is minted. The new access token
// is stamped with the current time, so its iat is never earlier than the
// refresh token's. The refresh token stays valid until it expires.
func (e *Engine) Rotate(refreshToken string) (string, Claims, error) {
	if e == nil || e.jwtManager == nil {
		return "", Claims{}, ErrEngineNotReady
	}

	res := flows.RunRotate(refreshToken, flows.RotateDeps{
		Parse: e.jwtManager.Parse,
		Issue: e.jwtManager.Issue,
		Now:   e.clock.Now,
	})

	switch res.Failure {
	case flows.FailureNone:
	case flows.FailureIssue:
		err := e.mintError(res.Failure, TokenAccess, res.Err)
		e.metricInc(MetricRotateFailure)
		e.emitFailure(auditEventRotateFailure, res.Refresh.Subject, TokenAccess, err)
		return "", Claims{}, err
	default:
		err := e.verifyError(res.Failure, TokenRefresh, res.Err)
		e.metricInc(MetricRotateFailure)
		e.emitFailure(auditEventRotateFailure, "", TokenRefresh, err)
		return "", Claims{}, err
	}

	claims := claimsFromWire(res.Claims)
	e.metricInc(MetricRefreshVerified)
	e.metricInc(MetricAccessMinted)
	e.metricInc(MetricRotateSuccess)
	e.emitRotateSuccess(claims, res.Refresh.ID)
	return res.Token, claims, nil
}
