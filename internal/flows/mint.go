package flows

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/goToken/jwt"
)

var errEmptySubject = errors.New("empty subject")

// IssueFunc seals a token of kind for subject at now.
type IssueFunc func(kind jwt.Kind, subject string, now time.Time) (string, *jwt.Claims, error)

// MintDeps captures minting dependencies.
type MintDeps struct {
	Issue IssueFunc
	Now   func() time.Time
}

// MintResult carries one minted token or failure metadata.
type MintResult struct {
	Failure FailureKind
	Err     error
	Token   string
	Claims  *jwt.Claims
}

// PairResult carries a minted access/refresh pair or failure metadata.
type PairResult struct {
	Failure       FailureKind
	Err           error
	AccessToken   string
	RefreshToken  string
	AccessClaims  *jwt.Claims
	RefreshClaims *jwt.Claims
}

// ValidSubject reports whether subject may be minted for.
func ValidSubject(subject string) bool {
	return strings.TrimSpace(subject) != ""
}

// RunMintAccess issues one access token at the current time.
func RunMintAccess(subject string, deps MintDeps) MintResult {
	if !ValidSubject(subject) {
		return MintResult{Failure: FailureSubject, Err: errEmptySubject}
	}
	return mintAt(jwt.KindAccess, subject, deps.Now(), deps)
}

// RunMintPair issues an access and a refresh token from one captured instant.
func RunMintPair(subject string, deps MintDeps) PairResult {
	if !ValidSubject(subject) {
		return PairResult{Failure: FailureSubject, Err: errEmptySubject}
	}

	now := deps.Now()
	access := mintAt(jwt.KindAccess, subject, now, deps)
	if access.Failure != FailureNone {
		return PairResult{Failure: access.Failure, Err: access.Err}
	}
	refresh := mintAt(jwt.KindRefresh, subject, now, deps)
	if refresh.Failure != FailureNone {
		return PairResult{Failure: refresh.Failure, Err: refresh.Err}
	}

	return PairResult{
		AccessToken:   access.Token,
		RefreshToken:  refresh.Token,
		AccessClaims:  access.Claims,
		RefreshClaims: refresh.Claims,
	}
}

func mintAt(kind jwt.Kind, subject string, now time.Time, deps MintDeps) MintResult {
	token, claims, err := deps.Issue(kind, subject, now)
	if err != nil {
		return MintResult{Failure: FailureIssue, Err: err}
	}
	return MintResult{Token: token, Claims: claims}
}
