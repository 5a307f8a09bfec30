package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring service.
type Metrics struct {
	// Sea level monitor metrics.
	SeaLevelFetches       *prometheus.CounterVec // labels: outcome={success,error,empty}
	SeaLevelFetchDuration prometheus.Histogram
	SeaLevel              prometheus.Gauge
	SeaLevelDeviation     prometheus.Gauge
	SeaLevelAlertActive   prometheus.Gauge
	SeaLevelHistorySize   prometheus.Gauge
	AlertsPublished       prometheus.Counter
	AlertPublishErrors    prometheus.Counter

	// Collaborating feed metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={usgs,stormglass,openmeteo}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	TideCache        *prometheus.CounterVec   // labels: result={hit,miss,stale}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SeaLevelFetches,
		m.SeaLevelFetchDuration,
		m.SeaLevel,
		m.SeaLevelDeviation,
		m.SeaLevelAlertActive,
		m.SeaLevelHistorySize,
		m.AlertsPublished,
		m.AlertPublishErrors,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.TideCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SeaLevelFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal_monitor",
			Name:      "sea_level_fetches_total",
			Help:      "Sea level station fetches by outcome.",
		}, []string{"outcome"}),
		SeaLevelFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coastal_monitor",
			Name:      "sea_level_fetch_duration_seconds",
			Help:      "Duration of IOC station fetches.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		SeaLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coastal_monitor",
			Name:      "sea_level_meters",
			Help:      "Newest detided sea level reading in meters.",
		}),
		SeaLevelDeviation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coastal_monitor",
			Name:      "sea_level_deviation_meters",
			Help:      "Absolute deviation of the newest reading from the rolling baseline.",
		}),
		SeaLevelAlertActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coastal_monitor",
			Name:      "sea_level_alert_active",
			Help:      "1 while the sea level status is WARNING or CRITICAL.",
		}),
		SeaLevelHistorySize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "coastal_monitor",
			Name:      "sea_level_history_size",
			Help:      "Number of readings currently held in the rolling window.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_monitor",
			Name:      "alerts_published_total",
			Help:      "Sea level alert events published to the alert topic.",
		}),
		AlertPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coastal_monitor",
			Name:      "alert_publish_errors_total",
			Help:      "Failed attempts to publish a sea level alert event.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal_monitor",
			Name:      "upstream_requests_total",
			Help:      "Collaborating feed requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coastal_monitor",
			Name:      "upstream_request_duration_seconds",
			Help:      "Collaborating feed request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		TideCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coastal_monitor",
			Name:      "tide_cache_total",
			Help:      "Tide cache lookups by result.",
		}, []string{"result"}),
	}
}
