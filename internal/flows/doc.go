// Package flows contains the pure-function orchestrators behind every Engine
// operation: mint, verify and rotate.
//
// Each flow accepts a typed dependency struct (signing primitive, clock) and
// returns a result with a classified failure kind. Flows hold no state between
// calls and never log; the Engine maps results onto public errors, metrics
// and audit events.
//
// # What this package must NOT do
//
//   - Import goToken (to avoid import cycles).
//   - Consult any store: every decision uses only the token and the clock.
package flows
