package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// PrometheusRecorder implements Recorder with Prometheus collectors. A batch
// run has no scrape endpoint, so the registry is dumped to a node-exporter
// textfile at the end of the run.
type PrometheusRecorder struct {
	reg       *prometheus.Registry
	namespace string
	once      sync.Once

	periods        *prometheus.CounterVec
	records        *prometheus.GaugeVec
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	lookupRetries  prometheus.Counter
	fetches        *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	runs           *prometheus.CounterVec
	runDuration    prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheus creates a recorder with its own registry. The namespace
// defaults to "grao".
func NewPrometheus(namespace string) *PrometheusRecorder {
	if namespace == "" {
		namespace = constants.MetricsNamespace
	}
	return &PrometheusRecorder{reg: prometheus.NewRegistry(), namespace: namespace}
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	p.ensureRegistered()
	return p.reg
}

func (p *PrometheusRecorder) ensureRegistered() {
	p.once.Do(func() {
		p.periods = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "periods_total",
			Help:      "Parsed periods by header format and period type.",
		}, []string{"header", "period"})

		p.records = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "period_records",
			Help:      "Assembled settlement records per period.",
		}, []string{"label"})

		p.lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "disambiguation",
			Name:      "keys_total",
			Help:      "Settlement keys by outcome (cached, resolved, no_match, error).",
		}, []string{"outcome"})

		p.lookupDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "disambiguation",
			Name:      "lookup_duration_seconds",
			Help:      "Directory lookup latency in seconds, retries included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 15, 30, 60},
		}, []string{"outcome"})

		p.lookupRetries = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "disambiguation",
			Name:      "lookup_retries_total",
			Help:      "Directory lookup retries.",
		})

		p.fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "fetch",
			Name:      "documents_total",
			Help:      "Document downloads by service and result.",
		}, []string{"service", "result"})

		p.fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Document download latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"service"})

		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"})

		p.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last pipeline run in seconds.",
		})

		p.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		})

		p.reg.MustRegister(p.periods)
		p.reg.MustRegister(p.records)
		p.reg.MustRegister(p.lookups)
		p.reg.MustRegister(p.lookupDuration)
		p.reg.MustRegister(p.lookupRetries)
		p.reg.MustRegister(p.fetches)
		p.reg.MustRegister(p.fetchDuration)
		p.reg.MustRegister(p.runs)
		p.reg.MustRegister(p.runDuration)
		p.reg.MustRegister(p.lastSuccess)
	})
}

// ObservePeriod counts a parsed period and records its size.
func (p *PrometheusRecorder) ObservePeriod(label, header, period string, records int) {
	p.ensureRegistered()
	p.periods.WithLabelValues(header, period).Inc()
	p.records.WithLabelValues(label).Set(float64(records))
}

// ObserveLookup counts a key outcome. Cached keys carry no latency.
func (p *PrometheusRecorder) ObserveLookup(outcome string, elapsed time.Duration) {
	p.ensureRegistered()
	p.lookups.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		p.lookupDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

// IncLookupRetry counts a retry.
func (p *PrometheusRecorder) IncLookupRetry() {
	p.ensureRegistered()
	p.lookupRetries.Inc()
}

// ObserveFetch records a download.
func (p *PrometheusRecorder) ObserveFetch(service string, elapsed time.Duration, err error) {
	p.ensureRegistered()
	p.fetches.WithLabelValues(service, result(err)).Inc()
	p.fetchDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// ObserveRun records the end of a run.
func (p *PrometheusRecorder) ObserveRun(elapsed time.Duration, err error) {
	p.ensureRegistered()
	p.runs.WithLabelValues(result(err)).Inc()
	p.runDuration.Set(elapsed.Seconds())
	if err == nil {
		p.lastSuccess.SetToCurrentTime()
	}
}

// WriteTextfile writes the registry in the text exposition format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	p.ensureRegistered()
	if err := prometheus.WriteToTextfile(path, p.reg); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
