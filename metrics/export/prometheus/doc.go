// Package prometheus renders scoreauth Manager metrics in the Prometheus text
// exposition format.
//
// Counter names are prefixed scoreauth_ and suffixed _total; the single
// histogram is scoreauth_login_latency_seconds. Nothing is registered
// globally; callers mount [PrometheusExporter.Handler].
package prometheus
