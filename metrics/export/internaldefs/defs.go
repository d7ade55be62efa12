package internaldefs

import (
	goToken "github.com/MrEthical07/goToken"
)

// CounterDef binds an engine counter to its exported name.
type CounterDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine histogram to its exported name.
type HistogramDef struct {
	ID   goToken.MetricID
	Name string
	Help string
}

// BucketCount is the number of latency buckets, +Inf included.
const BucketCount = 8

// AuditDroppedName is the counter for audit events lost to backpressure.
const (
	AuditDroppedName = "gotoken_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

var CounterDefs = []CounterDef{
	{ID: goToken.MetricAccessMinted, Name: "gotoken_access_minted_total", Help: "Access tokens issued by MintAccess and Rotate."},
	{ID: goToken.MetricPairMinted, Name: "gotoken_pair_minted_total", Help: "Access/refresh pairs issued."},
	{ID: goToken.MetricMintRejected, Name: "gotoken_mint_rejected_total", Help: "Mint calls rejected for an empty subject."},
	{ID: goToken.MetricAccessVerified, Name: "gotoken_access_verified_total", Help: "Access tokens that verified."},
	{ID: goToken.MetricRefreshVerified, Name: "gotoken_refresh_verified_total", Help: "Refresh tokens that verified."},
	{ID: goToken.MetricInvalidSignature, Name: "gotoken_invalid_signature_total", Help: "Tokens rejected as malformed or badly signed."},
	{ID: goToken.MetricAudienceMismatch, Name: "gotoken_audience_mismatch_total", Help: "Tokens rejected for a foreign audience."},
	{ID: goToken.MetricAccessExpired, Name: "gotoken_access_expired_total", Help: "Access tokens rejected as expired."},
	{ID: goToken.MetricRefreshExpired, Name: "gotoken_refresh_expired_total", Help: "Refresh tokens rejected as expired."},
	{ID: goToken.MetricRotateSuccess, Name: "gotoken_rotate_success_total", Help: "Refresh-for-access exchanges that succeeded."},
	{ID: goToken.MetricRotateFailure, Name: "gotoken_rotate_failure_total", Help: "Refresh-for-access exchanges that failed."},
}

var HistogramDefs = []HistogramDef{
	{ID: goToken.MetricVerifyLatency, Name: "gotoken_verify_latency_seconds", Help: "Token verification latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the engine's
// microsecond latency buckets.
var HistogramBounds = [BucketCount]string{
	"0.00001",
	"0.000025",
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"+Inf",
}

// HistogramBoundSuffix names each bound in instrument names, which cannot
// carry dots.
var HistogramBoundSuffix = [BucketCount]string{
	"10us",
	"25us",
	"50us",
	"100us",
	"250us",
	"500us",
	"1ms",
	"inf",
}

// CumulativeBuckets turns the engine's per-bucket counts into cumulative
// counts. Short or nil input is zero-padded.
func CumulativeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < BucketCount; i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
