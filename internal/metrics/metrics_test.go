package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Rows("leads", OutcomeSuccess, 99)
	m.Rows("leads", OutcomeFailed, 1)
	m.Rows("leads", OutcomeFailed, 0)
	m.Batch("leads", OutcomeSuccess)

	if got := testutil.ToFloat64(m.rows.WithLabelValues("leads", OutcomeSuccess)); got != 99 {
		t.Errorf("success rows = %v, want 99", got)
	}
	if got := testutil.ToFloat64(m.rows.WithLabelValues("leads", OutcomeFailed)); got != 1 {
		t.Errorf("failed rows = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.batches.WithLabelValues("leads", OutcomeSuccess)); got != 1 {
		t.Errorf("batches = %v, want 1", got)
	}
}

func TestMetrics_Begin(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := m.Begin("vendors")
	if got := testutil.ToFloat64(m.active); got != 1 {
		t.Errorf("active during call = %v, want 1", got)
	}
	done(errors.New("boom"))

	if got := testutil.ToFloat64(m.active); got != 0 {
		t.Errorf("active after call = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.imports.WithLabelValues("vendors", "error")); got != 1 {
		t.Errorf("error imports = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.Rows("leads", OutcomeSuccess, 1)
	m.Batch("leads", OutcomeSuccess)
	m.Begin("leads")(nil)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Rows("team_members", OutcomeSkipped, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `leaddesk_import_rows_total{outcome="skipped",table="team_members"} 3`) {
		t.Errorf("metrics output missing skipped rows counter:\n%s", body)
	}
}
