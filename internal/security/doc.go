// Package security derives the posture summary exposed by
// Engine.SecurityReport from a flattened view of the configuration.
//
// # What this package must NOT do
//
//   - See secret bytes. Callers pass lengths only.
//   - Import goToken (to avoid import cycles).
package security
