package flows

import (
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

// RotateDeps captures refresh-for-access exchange dependencies.
type RotateDeps struct {
	Parse ParseFunc
	Issue IssueFunc
	Now   func() time.Time
}

// RotateResult carries the new access token or failure metadata. Refresh is
// set whenever the refresh token verified, even if issuing then failed.
type RotateResult struct {
	Failure FailureKind
	Err     error
	Refresh *jwt.Claims
	Token   string
	Claims  *jwt.Claims
}

// RunRotate verifies refreshToken exactly as RunVerify would and, only on
// success, mints an access token for its subject at the current time. The
// refresh token is left valid.
func RunRotate(refreshToken string, deps RotateDeps) RotateResult {
	verified := RunVerify(jwt.KindRefresh, refreshToken, VerifyDeps{Parse: deps.Parse, Now: deps.Now})
	if verified.Failure != FailureNone {
		return RotateResult{Failure: verified.Failure, Err: verified.Err}
	}

	minted := mintAt(jwt.KindAccess, verified.Claims.Subject, deps.Now(), MintDeps{Issue: deps.Issue})
	if minted.Failure != FailureNone {
		return RotateResult{Failure: minted.Failure, Err: minted.Err, Refresh: verified.Claims}
	}

	return RotateResult{
		Refresh: verified.Claims,
		Token:   minted.Token,
		Claims:  minted.Claims,
	}
}
