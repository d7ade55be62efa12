// Package middleware adapts goToken engines to net/http.
//
// # Handlers
//
//   - [Guard] rejects requests without a valid access token.
//   - [Optional] verifies a token when one is sent and lets anonymous
//     requests through.
//   - [RotateHandler] exchanges a posted refresh token for a new access token.
//
// Guards read the Authorization header, call Engine.VerifyAccess and attach
// the verified claims to the request context with goToken.WithClaims.
//
// # What this package must NOT do
//
//   - Parse or sign tokens directly (delegates to the engine).
//   - Make authorization decisions beyond accepting or rejecting a token.
//   - Log token strings.
package middleware
