package flows

import (
	"errors"

	"github.com/MrEthical07/goToken/jwt"
)

// FailureKind classifies flow failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureSubject
	FailureSignature
	FailureAudience
	FailureExpired
	FailureIssue
)

// Classify maps a jwt.Manager error onto a FailureKind. Anything that is not
// an audience or expiry failure is treated as a signature failure so that
// unknown parse errors are never downgraded.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, jwt.ErrAudience):
		return FailureAudience
	case errors.Is(err, jwt.ErrExpired):
		return FailureExpired
	default:
		return FailureSignature
	}
}
