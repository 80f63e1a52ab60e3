package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddlewareRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := collector.Middleware(mux)

	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("POST", "POST /v1/search", "200")); got != 1 {
		t.Fatalf("proximity_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "proximity_http_request_duration_seconds", map[string]string{
		"method": "POST",
		"path":   "POST /v1/search",
	}); count != 1 {
		t.Fatalf("proximity_http_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestObserveSearchUpdatesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveSearch("csv", 10, 3, 25*time.Millisecond, map[string]int{
		"invalid_geodetic": 2,
	})

	if got := testutil.ToFloat64(collector.Searches.WithLabelValues("csv")); got != 1 {
		t.Fatalf("proximity_searches_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.RecordsEvaluated); got != 10 {
		t.Fatalf("proximity_records_evaluated_total = %v, want 10", got)
	}
	if got := testutil.ToFloat64(collector.RecordErrors.WithLabelValues("invalid_geodetic")); got != 2 {
		t.Fatalf("proximity_record_errors_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.SatellitesInView); got != 3 {
		t.Fatalf("proximity_satellites_in_view = %v, want 3", got)
	}
}

func TestRegistrationIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("second NewCollector on same registry: %v", err)
	}
}

func TestMetricsHandlerExposesSearchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	collector.ObserveSearch("n2yo", 4, 2, time.Millisecond, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"proximity_searches_total",
		"proximity_search_duration_seconds",
		"proximity_records_evaluated_total",
		"proximity_satellites_in_view",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
