package internaldefs

import (
	"github.com/sportae/scoreauth"
)

// CounterDef names one Manager counter.
type CounterDef struct {
	ID   scoreauth.MetricID
	Name string
	Help string
}

// HistogramDef names one Manager histogram.
type HistogramDef struct {
	ID   scoreauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the series for dropped audit events.
const AuditDroppedName = "scoreauth_audit_dropped_total"

var CounterDefs = []CounterDef{
	{ID: scoreauth.MetricRestoreSuccess, Name: "scoreauth_restore_success_total", Help: "Sessions restored from the credential store."},
	{ID: scoreauth.MetricRestoreEmpty, Name: "scoreauth_restore_empty_total", Help: "Restores that found no complete stored session."},
	{ID: scoreauth.MetricRestoreFailure, Name: "scoreauth_restore_failure_total", Help: "Restores aborted by a read or decode error."},
	{ID: scoreauth.MetricRestoreExpired, Name: "scoreauth_restore_expired_total", Help: "Stored sessions discarded for an expired token."},
	{ID: scoreauth.MetricLoginSuccess, Name: "scoreauth_login_success_total", Help: "Committed logins."},
	{ID: scoreauth.MetricLoginFailure, Name: "scoreauth_login_failure_total", Help: "Failed logins."},
	{ID: scoreauth.MetricLoginRollback, Name: "scoreauth_login_rollback_total", Help: "Logins rolled back after a persistence failure."},
	{ID: scoreauth.MetricSignupSuccess, Name: "scoreauth_signup_success_total", Help: "Accounts created."},
	{ID: scoreauth.MetricSignupFailure, Name: "scoreauth_signup_failure_total", Help: "Rejected account creations."},
	{ID: scoreauth.MetricProfileUpdateSuccess, Name: "scoreauth_profile_update_success_total", Help: "Committed profile updates."},
	{ID: scoreauth.MetricProfileUpdateFailure, Name: "scoreauth_profile_update_failure_total", Help: "Failed profile updates."},
	{ID: scoreauth.MetricLogout, Name: "scoreauth_logout_total", Help: "Logouts."},
	{ID: scoreauth.MetricLogoutStorageFailure, Name: "scoreauth_logout_storage_failure_total", Help: "Logouts whose credential deletion failed."},
}

var HistogramDefs = []HistogramDef{
	{ID: scoreauth.MetricLoginLatency, Name: "scoreauth_login_latency_seconds", Help: "Login round-trip latency."},
}

// HistogramBounds are the upper bounds, in seconds, of the Manager's
// latency buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds as instrument name suffixes.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to eight buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
