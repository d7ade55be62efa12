package flows

import (
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

// ParseFunc unseals a token of kind at now.
type ParseFunc func(kind jwt.Kind, token string, now time.Time) (*jwt.Claims, error)

// VerifyDeps captures verification dependencies.
type VerifyDeps struct {
	Parse ParseFunc
	Now   func() time.Time
}

// VerifyResult carries either the verified claims or failure metadata.
type VerifyResult struct {
	Failure FailureKind
	Err     error
	Claims  *jwt.Claims
}

// RunVerify checks signature, audience and (if enabled for kind) expiry.
func RunVerify(kind jwt.Kind, token string, deps VerifyDeps) VerifyResult {
	claims, err := deps.Parse(kind, token, deps.Now())
	if err != nil {
		return VerifyResult{Failure: Classify(err), Err: err}
	}
	return VerifyResult{Claims: claims}
}
