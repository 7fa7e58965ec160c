package metrics

import (
	"fmt"
	"net/http"
	"strings"

	"TariffSentinel/internal/model"
	"TariffSentinel/internal/version"
)

// SnapshotSource provides the latest snapshot for gauge rendering. Satisfied
// by the coordinator; may return nil before the first cycle.
type SnapshotSource interface {
	Snapshot() *model.Snapshot
}

// Collector renders the registry and the live snapshot in Prometheus text
// format.
type Collector struct {
	registry *Registry
	source   SnapshotSource
}

// NewCollector creates a new metrics collector.
func NewCollector(registry *Registry, source SnapshotSource) *Collector {
	return &Collector{registry: registry, source: source}
}

// ServeHTTP handles the /metrics endpoint.
func (c *Collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, c.Render())
}

// Render gathers all application metrics as Prometheus text.
func (c *Collector) Render() string {
	var metrics strings.Builder

	c.writeMetricHeader(&metrics, "tariffsentinel_info", "gauge", "Build information")
	c.writeMetric(&metrics, "tariffsentinel_info", map[string]string{
		"version": version.Version(),
	}, 1)

	c.writeMetricHeader(&metrics, "tariffsentinel_up", "gauge", "Whether the application is up and running")
	c.writeMetric(&metrics, "tariffsentinel_up", nil, 1)

	counters := c.registry.Counters()

	c.writeMetricHeader(&metrics, "tariffsentinel_refresh_cycles_total", "counter", "Completed refresh cycles")
	c.writeMetric(&metrics, "tariffsentinel_refresh_cycles_total", nil, float64(counters.Cycles))

	c.writeMetricHeader(&metrics, "tariffsentinel_refresh_failures_total", "counter", "Refresh cycles with no usable series")
	c.writeMetric(&metrics, "tariffsentinel_refresh_failures_total", nil, float64(counters.Failures))

	c.writeMetricHeader(&metrics, "tariffsentinel_fallback_snapshots_total", "counter", "Failed cycles answered with the previous snapshot")
	c.writeMetric(&metrics, "tariffsentinel_fallback_snapshots_total", nil, float64(counters.Fallbacks))

	c.writeMetricHeader(&metrics, "tariffsentinel_stale_substitutions_total", "counter", "Readings substituted by the stale-value guard")
	c.writeMetric(&metrics, "tariffsentinel_stale_substitutions_total", nil, float64(counters.StaleSubstitutions))

	c.writeMetricHeader(&metrics, "tariffsentinel_discovery_runs_total", "counter", "Series name discovery round trips")
	c.writeMetric(&metrics, "tariffsentinel_discovery_runs_total", nil, float64(counters.Discoveries))

	c.writeMetricHeader(&metrics, "tariffsentinel_precise_wakeups_total", "counter", "Window-transition wakeups fired")
	c.writeMetric(&metrics, "tariffsentinel_precise_wakeups_total", nil, float64(counters.Wakeups))

	if !counters.LastFinished.IsZero() {
		c.writeMetricHeader(&metrics, "tariffsentinel_last_refresh_timestamp", "gauge", "Unix timestamp of the last completed refresh cycle")
		c.writeMetric(&metrics, "tariffsentinel_last_refresh_timestamp", nil, float64(counters.LastFinished.Unix()))

		c.writeMetricHeader(&metrics, "tariffsentinel_last_refresh_duration_seconds", "gauge", "Duration of the last refresh cycle")
		c.writeMetric(&metrics, "tariffsentinel_last_refresh_duration_seconds", nil, counters.LastDuration.Seconds())
	}

	snap := c.source.Snapshot()
	if snap == nil {
		return metrics.String()
	}

	c.writeMetricHeader(&metrics, "tariffsentinel_series_value", "gauge", "Current guarded value per logical series")
	c.writeMetricHeader(&metrics, "tariffsentinel_series_stale", "gauge", "Whether the series value came from the stale-value guard (1=yes, 0=no)")
	for _, key := range model.AllKeys() {
		reading, ok := snap.Readings[key]
		if !ok {
			continue
		}
		labels := map[string]string{"series": string(key)}
		c.writeMetric(&metrics, "tariffsentinel_series_value", labels, reading.Value)
		stale := 0
		if reading.Stale {
			stale = 1
		}
		c.writeMetric(&metrics, "tariffsentinel_series_stale", labels, float64(stale))
	}

	c.writeMetricHeader(&metrics, "tariffsentinel_total_price", "gauge", "Sum of the public energy price components")
	c.writeMetric(&metrics, "tariffsentinel_total_price", nil, snap.TotalPrice)

	c.writeMetricHeader(&metrics, "tariffsentinel_window_active", "gauge", "Whether the low-tariff window is active (1=yes, 0=no)")
	active := 0
	if snap.Window.Active {
		active = 1
	}
	c.writeMetric(&metrics, "tariffsentinel_window_active", nil, float64(active))

	if snap.Window.Start != nil {
		c.writeMetricHeader(&metrics, "tariffsentinel_window_start_timestamp", "gauge", "Unix timestamp of the low-tariff window start")
		c.writeMetric(&metrics, "tariffsentinel_window_start_timestamp", nil, float64(snap.Window.Start.Unix()))
	}
	if snap.Window.End != nil {
		c.writeMetricHeader(&metrics, "tariffsentinel_window_end_timestamp", "gauge", "Unix timestamp of the low-tariff window end")
		c.writeMetric(&metrics, "tariffsentinel_window_end_timestamp", nil, float64(snap.Window.End.Unix()))
	}

	c.writeMetricHeader(&metrics, "tariffsentinel_snapshot_timestamp", "gauge", "Unix timestamp of the current snapshot")
	c.writeMetric(&metrics, "tariffsentinel_snapshot_timestamp", nil, float64(snap.UpdatedAt.Unix()))

	return metrics.String()
}

// writeMetricHeader writes metric description and type.
func (c *Collector) writeMetricHeader(sb *strings.Builder, name, metricType, description string) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, description))
	sb.WriteString(fmt.Sprintf("# TYPE %s %s\n", name, metricType))
}

// writeMetric writes a metric with optional labels.
func (c *Collector) writeMetric(sb *strings.Builder, name string, labels map[string]string, value float64) {
	if len(labels) > 0 {
		var labelPairs []string
		for key, val := range labels {
			labelPairs = append(labelPairs, fmt.Sprintf(`%s="%s"`, key, val))
		}
		sb.WriteString(fmt.Sprintf("%s{%s} %g\n", name, strings.Join(labelPairs, ","), value))
	} else {
		sb.WriteString(fmt.Sprintf("%s %g\n", name, value))
	}
}
