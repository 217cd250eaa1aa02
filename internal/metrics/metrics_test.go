package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/gauthierbraillon/trendmix/internal/cache"
	"github.com/gauthierbraillon/trendmix/internal/youtube"
)

var (
	_ youtube.Recorder = (*Collector)(nil)
	_ cache.Recorder   = (*Collector)(nil)
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestRecordFetch_SplitsSuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetch(nil, 200*time.Millisecond)
	c.RecordFetch(nil, 300*time.Millisecond)
	c.RecordFetch(errors.New("quota"), time.Second)

	if v := gather(t, reg, "trendmix_fetch_success_total").GetMetric()[0].GetCounter().GetValue(); v != 2 {
		t.Errorf("fetch_success_total = %v, want 2", v)
	}
	if v := gather(t, reg, "trendmix_fetch_fail_total").GetMetric()[0].GetCounter().GetValue(); v != 1 {
		t.Errorf("fetch_fail_total = %v, want 1", v)
	}
	if n := gather(t, reg, "trendmix_fetch_latency_seconds").GetMetric()[0].GetHistogram().GetSampleCount(); n != 3 {
		t.Errorf("fetch_latency sample count = %d, want 3", n)
	}
}

func TestRecordAPICall_LabelsEndpointAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAPICall("videos", 200, 10*time.Millisecond)
	c.RecordAPICall("videos", 200, 10*time.Millisecond)
	c.RecordAPICall("channels", 403, 10*time.Millisecond)

	got := make(map[string]float64)
	for _, m := range gather(t, reg, "trendmix_api_requests_total").GetMetric() {
		got[labelValue(m, "endpoint")+"/"+labelValue(m, "status_code")] = m.GetCounter().GetValue()
	}

	if got["videos/200"] != 2 || got["channels/403"] != 1 {
		t.Errorf("unexpected api request counts: %v", got)
	}
}

func TestRecordCacheResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCacheResult(cache.ResultHit)
	c.RecordCacheResult(cache.ResultHit)
	c.RecordCacheResult(cache.ResultStale)

	got := make(map[string]float64)
	for _, m := range gather(t, reg, "trendmix_cache_requests_total").GetMetric() {
		got[labelValue(m, "result")] = m.GetCounter().GetValue()
	}
	if got["hit"] != 2 || got["stale"] != 1 {
		t.Errorf("unexpected cache counts: %v", got)
	}
}

func TestRecordSnapshot_SetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSnapshot(40, 10)
	c.RecordSnapshot(38, 12)

	got := make(map[string]float64)
	for _, m := range gather(t, reg, "trendmix_snapshot_records").GetMetric() {
		got[labelValue(m, "kind")] = m.GetGauge().GetValue()
	}
	if got["regular"] != 38 || got["shorts"] != 12 {
		t.Errorf("gauges should reflect the latest snapshot, got %v", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordFetch(nil, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "trendmix_fetch_success_total") {
		t.Error("response should contain trendmix_fetch_success_total metric")
	}
}

func TestNewCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("registering the same metrics twice should panic")
		}
	}()
	_ = NewCollector(reg)
}
