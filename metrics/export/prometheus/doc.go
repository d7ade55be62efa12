// Package prometheus renders goToken engine metrics in the Prometheus text
// exposition format.
//
// Counters are named gotoken_*_total; the single histogram is
// gotoken_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register into a global Prometheus registry. Callers mount Handler.
//   - Mutate engine state.
package prometheus
