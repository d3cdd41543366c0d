package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "takeoff_audit"

// Metrics holds the Prometheus counters, histograms, and gauges for an audit run.
type Metrics struct {
	RecordsAudited prometheus.Counter
	AuditErrors    prometheus.Counter
	AuditRunning   prometheus.Gauge
	AuditDuration  prometheus.Histogram

	Violations         *prometheus.CounterVec // labels: reason={Visibility,Winds,Ceiling,Weather,Unknown}
	ObservationLookups *prometheus.CounterVec // labels: path={exact,fallback,missing}

	// Publishing metrics.
	ViolationsPublished prometheus.Counter
	PublishErrors       prometheus.Counter

	gatherer prometheus.Gatherer
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsAudited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_audited_total",
			Help:      "Total takeoff records evaluated.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total audit runs aborted by a malformed record.",
		}),
		AuditRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "1 while an audit run is in progress.",
		}),
		AuditDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Duration of a complete audit run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Violations found by reason.",
		}, []string{"reason"}),
		ObservationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observation_lookups_total",
			Help:      "Weather report lookups by resolution path.",
		}, []string{"path"}),
		ViolationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_published_total",
			Help:      "Total violations written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed Kafka publish attempts.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsAudited,
		m.AuditErrors,
		m.AuditRunning,
		m.AuditDuration,
		m.Violations,
		m.ObservationLookups,
		m.ViolationsPublished,
		m.PublishErrors,
	}
}

// NewMetrics creates and registers all audit metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.gatherer = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.gatherer = reg
	return m
}

// WriteTextfile writes the current metric values in the text exposition
// format for a node_exporter textfile collector. The file is replaced
// atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
