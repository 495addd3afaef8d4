package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestSimCollector_TrialCompleted(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	c.TrialCompleted(25*time.Millisecond, 12, 7)
	c.TrialCompleted(40*time.Millisecond, 8, 0)

	if got := testutil.ToFloat64(c.TrialsTotal); got != 2 {
		t.Fatalf("trials total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.TransmissionsTotal); got != 20 {
		t.Fatalf("transmissions total = %v, want 20", got)
	}
	if got := testutil.ToFloat64(c.DetectionsTotal); got != 7 {
		t.Fatalf("detections total = %v, want 7", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var duration *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "sim_trial_duration_seconds" {
			duration = mf
		}
	}
	if duration == nil {
		t.Fatalf("trial duration histogram not gathered")
	}
	if n := duration.GetMetric()[0].GetHistogram().GetSampleCount(); n != 2 {
		t.Fatalf("histogram sample count = %d, want 2", n)
	}
}

func TestSimCollector_PathRejectionAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}

	c.PathRejection()
	c.PathRejection()
	c.PathRejection()
	if got := testutil.ToFloat64(c.PathRejectionsTotal); got != 3 {
		t.Fatalf("rejections total = %v, want 3", got)
	}

	c.SetReceiverCount(9)
	if got := testutil.ToFloat64(c.ScenarioReceivers); got != 9 {
		t.Fatalf("receiver gauge = %v, want 9", got)
	}
	c.SetReceiverCount(0)
	if got := testutil.ToFloat64(c.ScenarioReceivers); got != 0 {
		t.Fatalf("receiver gauge = %v, want 0", got)
	}
}

func TestSimCollector_ReregistrationReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	first.TrialCompleted(time.Millisecond, 1, 1)

	second, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	second.TrialCompleted(time.Millisecond, 1, 1)

	// Both handles feed the same underlying counters.
	if got := testutil.ToFloat64(first.TrialsTotal); got != 2 {
		t.Fatalf("trials total = %v, want 2 across both handles", got)
	}
}

func TestSimCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewSimCollector(reg)
	if err != nil {
		t.Fatalf("NewSimCollector: %v", err)
	}
	c.SetReceiverCount(5)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := new(strings.Builder)
	if _, err := io.Copy(body, resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(body.String(), "scenario_receivers 5") {
		t.Fatalf("exposition missing receiver gauge:\n%s", body.String())
	}
}

func TestSimCollector_NilSafe(t *testing.T) {
	var c *SimCollector
	c.TrialCompleted(time.Second, 1, 1)
	c.PathRejection()
	c.SetReceiverCount(3)
}
