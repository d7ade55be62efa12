// Package goToken mints and verifies HMAC-signed access and refresh
// credentials bound to a subject and an audience.
//
// An [Engine] is built once from a [CredentialConfig] (or a full [Config]
// through [Builder]) and is safe to call from multiple goroutines. It keeps no
// per-token state: verification is decided by the token, the configuration
// and the clock. There is no clock-skew leeway and no revocation; a refresh
// token stays usable until it expires.
//
// # Architecture boundaries
//
// goToken is the public surface. It exposes [Engine], [Builder], [Config],
// [Claims] and the error taxonomy ([ConfigurationError], [TokenError]). The
// signing primitive lives in package jwt; flow orchestration and the
// security report live under internal/.
//
// # What this package must NOT do
//
//   - Log from Engine methods. Logging happens in Builder.Build and in the
//     transport guards.
//   - Retain secrets outside the engine's own configuration clone.
//   - Import any sub-package that re-imports goToken (no import cycles).
//
// # Performance contract
//
// VerifyAccess is the hot path. It performs one HMAC verification and no I/O.
package goToken
