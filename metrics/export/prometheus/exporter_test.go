package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sportae/scoreauth"
	"github.com/sportae/scoreauth/session"
)

type fakeSource struct {
	snapshot scoreauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() scoreauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: scoreauth.MetricsSnapshot{
			Counters:   map[scoreauth.MetricID]uint64{},
			Histograms: map[scoreauth.MetricID][]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: scoreauth.MetricsSnapshot{
			Counters: map[scoreauth.MetricID]uint64{
				scoreauth.MetricLoginSuccess: 7,
			},
			Histograms: map[scoreauth.MetricID][]uint64{
				scoreauth.MetricLoginLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	for _, want := range []string{
		"scoreauth_login_success_total 7",
		"scoreauth_logout_total 0",
		"scoreauth_login_latency_seconds_bucket{le=\"0.05\"} 1",
		"scoreauth_login_latency_seconds_bucket{le=\"+Inf\"} 36",
		"scoreauth_login_latency_seconds_count 36",
		"scoreauth_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: scoreauth.MetricsSnapshot{
			Counters:   map[scoreauth.MetricID]uint64{scoreauth.MetricLoginSuccess: 1},
			Histograms: map[scoreauth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRenderFromManager(t *testing.T) {
	m, err := scoreauth.New().WithStore(session.NewMemoryStore()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer m.Close()

	m.Restore(context.Background())
	m.Logout(context.Background())

	out := NewPrometheusExporter(m).Render()
	if !strings.Contains(out, "scoreauth_restore_empty_total 1") || !strings.Contains(out, "scoreauth_logout_total 1") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: scoreauth.MetricsSnapshot{
			Counters: map[scoreauth.MetricID]uint64{
				scoreauth.MetricLoginSuccess:   1000,
				scoreauth.MetricLoginFailure:   40,
				scoreauth.MetricRestoreSuccess: 800,
				scoreauth.MetricLogout:         20,
			},
			Histograms: map[scoreauth.MetricID][]uint64{
				scoreauth.MetricLoginLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
