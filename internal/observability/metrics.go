package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "worksite_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Overlay metrics.
	Draws              *prometheus.CounterVec // labels: kind={first,moved,static}
	RenderErrors       prometheus.Counter
	AnimationFrames    prometheus.Counter
	Sprites            prometheus.Gauge
	HitTests           *prometheus.CounterVec // labels: source={click,hover}, result={hit,miss,disabled}
	IndexBuildDuration prometheus.Histogram
	HoverThrottled     prometheus.Counter

	// Event publishing metrics.
	EventsPublished  *prometheus.CounterVec // labels: type={marker_selected,map_moved}
	EventsDropped    prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishBatchSize prometheus.Histogram
	PublisherRunning prometheus.Gauge

	// Mapbox metrics.
	MapboxRequests    *prometheus.CounterVec   // labels: method={tile,reverse}, outcome={success,error,empty}
	MapboxCache       *prometheus.CounterVec   // labels: method={tile,reverse}, result={hit,miss}
	MapboxAPIDuration *prometheus.HistogramVec // labels: method={tile,reverse}
	MapboxEnabled     prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Overlay draw calls by kind.",
		}, []string{"kind"}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Frames the renderer failed to produce.",
		}),
		AnimationFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animation_frames_total",
			Help:      "Zoom animation frames rendered.",
		}),
		Sprites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sprites",
			Help:      "Sprites owned by the overlay.",
		}),
		HitTests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hit_tests_total",
			Help:      "Pointer hit tests by source and result.",
		}, []string{"source", "result"}),
		IndexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Time to build the spatial index for one zoom level.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		HoverThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hover_throttled_total",
			Help:      "Pointer-move events dropped by the throttle.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Map events written to the event topic.",
		}, []string{"type"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Map events dropped because the publish queue was full.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to write an event batch.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_size",
			Help:      "Number of events per published batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_running",
			Help:      "1 when the event publisher is active, 0 when shut down.",
		}),
		MapboxRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapbox_requests_total",
			Help:      "Mapbox API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		MapboxCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mapbox_cache_total",
			Help:      "Mapbox cache lookups by method and result.",
		}, []string{"method", "result"}),
		MapboxAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mapbox_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		MapboxEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapbox_enabled",
			Help:      "1 when the Mapbox basemap and geocoder are enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Draws,
		m.RenderErrors,
		m.AnimationFrames,
		m.Sprites,
		m.HitTests,
		m.IndexBuildDuration,
		m.HoverThrottled,
		m.EventsPublished,
		m.EventsDropped,
		m.PublishErrors,
		m.PublishBatchSize,
		m.PublisherRunning,
		m.MapboxRequests,
		m.MapboxCache,
		m.MapboxAPIDuration,
		m.MapboxEnabled,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
