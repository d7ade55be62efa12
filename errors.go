package goToken

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure kinds the engine reports.
type ErrorKind int

const (
	// KindNone is returned by KindOf for nil or foreign errors.
	KindNone ErrorKind = iota
	// KindConfiguration marks invalid construction parameters.
	KindConfiguration
	// KindInvalidSignature marks a malformed token or one whose signature does not verify.
	KindInvalidSignature
	// KindAudienceMismatch marks a well-formed token issued for another audience.
	KindAudienceMismatch
	// KindExpired marks a well-formed token past its exp while expiry checks are on.
	KindExpired
	// KindInvalidSubject marks a mint request with an empty subject.
	KindInvalidSubject
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindAudienceMismatch:
		return "audience_mismatch"
	case KindExpired:
		return "expired"
	case KindInvalidSubject:
		return "invalid_subject"
	default:
		return "none"
	}
}

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("invalid credential configuration")
	// ErrInvalidSignature matches tokens that are malformed or forged.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrAudienceMismatch matches tokens issued for a different audience.
	ErrAudienceMismatch = errors.New("token audience mismatch")
	// ErrExpired matches tokens past their expiration.
	ErrExpired = errors.New("token expired")
	// ErrInvalidSubject is returned when minting for an empty subject.
	ErrInvalidSubject = errors.New("subject is required")
	// ErrEngineNotReady is returned by methods called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ConfigurationError reports why a configuration was rejected. It is fatal at
// startup: no Engine is built from a configuration that produced one.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "goToken: configuration: " + e.Reason
	}
	return fmt.Sprintf("goToken: configuration: %s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Kind returns KindConfiguration.
func (e *ConfigurationError) Kind() ErrorKind { return KindConfiguration }

func configErr(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// TokenError is returned by every verify, rotate and mint failure.
//
// Use errors.Is with ErrInvalidSignature, ErrAudienceMismatch, ErrExpired or
// ErrInvalidSubject, or switch on Kind after errors.As.
type TokenError struct {
	Kind       ErrorKind
	Credential TokenKind
	Err        error
}

func (e *TokenError) Error() string {
	msg := sentinelFor(e.Kind).Error()
	if e.Credential != "" {
		msg = string(e.Credential) + " " + msg
	}
	if e.Err != nil && !errors.Is(e.Err, sentinelFor(e.Kind)) {
		msg += ": " + e.Err.Error()
	}
	return "goToken: " + msg
}

// Is matches the sentinel for e.Kind.
func (e *TokenError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

func (e *TokenError) Unwrap() error { return e.Err }

// Retryable reports whether a fresh credential may succeed where this one
// failed. Only expiry qualifies; every other kind should be rejected outright.
func (e *TokenError) Retryable() bool {
	return e.Kind == KindExpired
}

func sentinelFor(k ErrorKind) error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindInvalidSignature:
		return ErrInvalidSignature
	case KindAudienceMismatch:
		return ErrAudienceMismatch
	case KindExpired:
		return ErrExpired
	case KindInvalidSubject:
		return ErrInvalidSubject
	default:
		return ErrInvalidSignature
	}
}

// KindOf classifies err. It returns KindNone for nil and for errors not
// produced by this package.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return KindConfiguration
	}
	return KindNone
}
