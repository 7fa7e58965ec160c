package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TariffSentinel/internal/model"
)

type staticSource struct {
	snap *model.Snapshot
}

func (s *staticSource) Snapshot() *model.Snapshot { return s.snap }

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry()

	r.CycleFinished(120*time.Millisecond, false)
	r.CycleFinished(80*time.Millisecond, true)
	r.FallbackServed()
	r.StaleSubstituted(2)
	r.StaleSubstituted(0)
	r.StaleSubstituted(-1)
	r.DiscoveryRan()
	r.WakeupFired()

	got := r.Counters()
	if got.Cycles != 2 {
		t.Errorf("expected 2 cycles, got %d", got.Cycles)
	}
	if got.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", got.Failures)
	}
	if got.Fallbacks != 1 {
		t.Errorf("expected 1 fallback, got %d", got.Fallbacks)
	}
	if got.StaleSubstitutions != 2 {
		t.Errorf("expected 2 stale substitutions, got %d", got.StaleSubstitutions)
	}
	if got.Discoveries != 1 || got.Wakeups != 1 {
		t.Errorf("unexpected discovery/wakeup counts: %+v", got)
	}
	if got.LastDuration != 80*time.Millisecond {
		t.Errorf("expected last duration recorded, got %v", got.LastDuration)
	}
	if got.LastFinished.IsZero() {
		t.Error("expected last finished timestamp set")
	}
}

func TestRender(t *testing.T) {
	r := NewRegistry()
	r.CycleFinished(time.Second, false)
	collector := NewCollector(r, &staticSource{})

	metrics := collector.Render()

	expectedMetrics := []string{
		"tariffsentinel_info",
		"tariffsentinel_up",
		"tariffsentinel_refresh_cycles_total",
		"tariffsentinel_refresh_failures_total",
		"tariffsentinel_fallback_snapshots_total",
		"tariffsentinel_stale_substitutions_total",
		"tariffsentinel_discovery_runs_total",
		"tariffsentinel_precise_wakeups_total",
		"tariffsentinel_last_refresh_timestamp",
		"tariffsentinel_last_refresh_duration_seconds",
	}
	for _, metric := range expectedMetrics {
		if !strings.Contains(metrics, metric) {
			t.Errorf("expected metric %s not found in output", metric)
		}
	}

	if !strings.Contains(metrics, "# HELP") {
		t.Error("expected HELP comments in metrics output")
	}
	if !strings.Contains(metrics, "# TYPE") {
		t.Error("expected TYPE comments in metrics output")
	}

	// No snapshot yet, so no per-series gauges
	if strings.Contains(metrics, "tariffsentinel_series_value") {
		t.Error("series gauges must not render without a snapshot")
	}
	if !strings.Contains(metrics, "tariffsentinel_refresh_cycles_total 1\n") {
		t.Error("expected cycle counter rendered as 1")
	}
}

func TestRenderSnapshotGauges(t *testing.T) {
	start := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	snap := &model.Snapshot{
		UpdatedAt: start.Add(-time.Hour),
		Readings: map[model.SeriesKey]model.Reading{
			model.KeySignal:    {Key: model.KeySignal, Value: 2},
			model.KeyGridPrice: {Key: model.KeyGridPrice, Value: 0.0512, Stale: true},
		},
		TotalPrice: 0.1156,
		Window:     model.ForecastWindow{Active: true, Start: &start, End: &end},
	}
	collector := NewCollector(NewRegistry(), &staticSource{snap: snap})

	metrics := collector.Render()

	if !strings.Contains(metrics, `tariffsentinel_series_value{series="grid-price"} 0.0512`) {
		t.Error("expected grid price gauge with series label")
	}
	if !strings.Contains(metrics, `tariffsentinel_series_stale{series="grid-price"} 1`) {
		t.Error("expected grid price marked stale")
	}
	if !strings.Contains(metrics, `tariffsentinel_series_stale{series="signal"} 0`) {
		t.Error("expected signal marked fresh")
	}
	if !strings.Contains(metrics, "tariffsentinel_total_price 0.1156\n") {
		t.Error("expected total price gauge")
	}
	if !strings.Contains(metrics, "tariffsentinel_window_active 1\n") {
		t.Error("expected active window gauge")
	}
	if !strings.Contains(metrics, "tariffsentinel_window_start_timestamp") ||
		!strings.Contains(metrics, "tariffsentinel_window_end_timestamp") {
		t.Error("expected window boundary timestamps")
	}
	if !strings.Contains(metrics, "tariffsentinel_snapshot_timestamp") {
		t.Error("expected snapshot timestamp")
	}
}

func TestMetricsHTTPEndpoint(t *testing.T) {
	collector := NewCollector(NewRegistry(), &staticSource{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	collector.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	contentType := w.Header().Get("Content-Type")
	if contentType != "text/plain; charset=utf-8" {
		t.Errorf("expected text/plain content type, got %s", contentType)
	}
	if !strings.Contains(w.Body.String(), "tariffsentinel_up 1") {
		t.Error("expected tariffsentinel_up metric in response")
	}
}

func TestWriteMetric(t *testing.T) {
	collector := NewCollector(NewRegistry(), &staticSource{})

	var sb strings.Builder
	collector.writeMetric(&sb, "test_metric", nil, 42.5)
	if sb.String() != "test_metric 42.5\n" {
		t.Errorf("expected %q, got %q", "test_metric 42.5\n", sb.String())
	}

	sb.Reset()
	collector.writeMetric(&sb, "test_metric", map[string]string{"series": "signal"}, 1)
	if sb.String() != `test_metric{series="signal"} 1`+"\n" {
		t.Errorf("unexpected labeled metric %q", sb.String())
	}
}
