package goToken

import (
	"bytes"
	"time"
)

// LintWarning is an advisory finding about a configuration that Validate
// accepts but that is probably not what a production deployment wants.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the ordered result of Config.Lint.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Has reports whether a warning with code is present.
func (ws LintWarnings) Has(code string) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

const (
	lintAccessExceedsRefresh = "access_ttl_exceeds_refresh_ttl"
	lintAccessExpDisabled    = "access_exp_validation_disabled"
	lintRefreshExpDisabled   = "refresh_exp_validation_disabled"
	lintSharedSecret         = "shared_secret"
	lintShortSecret          = "short_secret"
	lintAccessTTLLong        = "access_ttl_long"
	lintRefreshTTLLong       = "refresh_ttl_long"
)

// Lint returns advisory warnings. It never fails; callers decide whether to
// log, surface or ignore them.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	cc := c.Credentials

	if cc.AccessTTL > cc.RefreshTTL {
		ws = append(ws, LintWarning{
			Code:    lintAccessExceedsRefresh,
			Message: "AccessTTL is longer than RefreshTTL; rotation can never extend access",
		})
	}
	if !cc.AccessValidateExp {
		ws = append(ws, LintWarning{
			Code:    lintAccessExpDisabled,
			Message: "access token expiration is not enforced",
		})
	}
	if !cc.RefreshValidateExp {
		ws = append(ws, LintWarning{
			Code:    lintRefreshExpDisabled,
			Message: "refresh token expiration is not enforced",
		})
	}
	if len(cc.AccessSecret) > 0 && bytes.Equal(cc.AccessSecret, cc.RefreshSecret) {
		ws = append(ws, LintWarning{
			Code:    lintSharedSecret,
			Message: "access and refresh tokens share one signing secret",
		})
	}
	minLen := c.Security.MinSecretLength
	if minLen > 0 && (len(cc.AccessSecret) < minLen || len(cc.RefreshSecret) < minLen) {
		ws = append(ws, LintWarning{
			Code:    lintShortSecret,
			Message: "a signing secret is shorter than Security.MinSecretLength",
		})
	}
	if cc.AccessTTL > 15*time.Minute {
		ws = append(ws, LintWarning{
			Code:    lintAccessTTLLong,
			Message: "AccessTTL exceeds 15m",
		})
	}
	if cc.RefreshTTL > 30*24*time.Hour {
		ws = append(ws, LintWarning{
			Code:    lintRefreshTTLLong,
			Message: "RefreshTTL exceeds 30d",
		})
	}

	return ws
}
