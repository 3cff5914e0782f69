package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric this process exports.
const namespace = "ignite"

// Counter is a cumulative metric that only increases.
type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

// Histogram samples observations and counts them in buckets.
type Histogram interface {
	Observe(float64)
}

// HistogramVec is a Histogram with labels.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// Registry holds all application metrics. Components record through the
// interface fields and never import the Prometheus client directly.
type Registry struct {
	// Verification run metrics, recorded by the check coordinator.
	ChecksStarted   Counter
	ChecksCompleted CounterVec // label: result
	ChecksActive    Gauge
	CheckDuration   Histogram
	ConflictsFound  Counter

	// Inspection metrics, recorded by the snapshot inspector.
	PagesRead    Counter
	CorruptPages Counter

	// Management API metrics, recorded by the HTTP middleware.
	RequestsTotal   CounterVec   // labels: method, route, status
	RequestDuration HistogramVec // label: route

	prom *prometheus.Registry
}

// NewRegistry creates the per-process metrics registry with all Ignite
// metrics plus the standard Go and process collectors.
func NewRegistry() *Registry {
	prom := prometheus.NewRegistry()
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checksStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "check",
		Name:      "runs_started_total",
		Help:      "Verification runs started with this node as coordinator.",
	})
	checksCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "check",
		Name:      "runs_completed_total",
		Help:      "Verification runs finished, by result.",
	}, []string{"result"})
	checksActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "check",
		Name:      "runs_active",
		Help:      "Verification runs currently in flight.",
	})
	checkDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "check",
		Name:      "run_duration_seconds",
		Help:      "Wall time of completed verification runs.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
	conflictsFound := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "check",
		Name:      "conflicts_total",
		Help:      "Partition counter conflicts reported by completed runs.",
	})

	pagesRead := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "pages_read_total",
		Help:      "Partition pages read and checksummed during inspections.",
	})
	corruptPages := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "corrupt_pages_total",
		Help:      "Pages whose stored checksum did not match the recomputed one.",
	})

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Management API requests, by method, route and status.",
	}, []string{"method", "route", "status"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Management API request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	prom.MustRegister(
		checksStarted, checksCompleted, checksActive, checkDuration, conflictsFound,
		pagesRead, corruptPages,
		requestsTotal, requestDuration,
	)

	return &Registry{
		ChecksStarted:   checksStarted,
		ChecksCompleted: promCounterVec{checksCompleted},
		ChecksActive:    checksActive,
		CheckDuration:   checkDuration,
		ConflictsFound:  conflictsFound,
		PagesRead:       pagesRead,
		CorruptPages:    corruptPages,
		RequestsTotal:   promCounterVec{requestsTotal},
		RequestDuration: promHistogramVec{requestDuration},
		prom:            prom,
	}
}

// NewNop returns a registry whose metrics record nothing. Used in tests
// and when metrics are disabled by configuration.
func NewNop() *Registry {
	return &Registry{
		ChecksStarted:   nopCounter{},
		ChecksCompleted: nopCounterVec{},
		ChecksActive:    nopGauge{},
		CheckDuration:   nopHistogram{},
		ConflictsFound:  nopCounter{},
		PagesRead:       nopCounter{},
		CorruptPages:    nopCounter{},
		RequestsTotal:   nopCounterVec{},
		RequestDuration: nopHistogramVec{},
		prom:            prometheus.NewRegistry(),
	}
}

// Prometheus returns the underlying registry so callers can attach extra
// collectors (storage engine gauges, the cluster status collector).
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.prom
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{})
}

// promCounterVec narrows *prometheus.CounterVec to the CounterVec interface.
type promCounterVec struct {
	vec *prometheus.CounterVec
}

func (v promCounterVec) WithLabelValues(lvs ...string) Counter {
	return v.vec.WithLabelValues(lvs...)
}

// promHistogramVec narrows *prometheus.HistogramVec to the HistogramVec interface.
type promHistogramVec struct {
	vec *prometheus.HistogramVec
}

func (v promHistogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.vec.WithLabelValues(lvs...)
}

type nopCounter struct{}

func (nopCounter) Inc()        {}
func (nopCounter) Add(float64) {}

type nopCounterVec struct{}

func (nopCounterVec) WithLabelValues(...string) Counter { return nopCounter{} }

type nopGauge struct{}

func (nopGauge) Set(float64) {}
func (nopGauge) Inc()        {}
func (nopGauge) Dec()        {}
func (nopGauge) Add(float64) {}
func (nopGauge) Sub(float64) {}

type nopHistogram struct{}

func (nopHistogram) Observe(float64) {}

type nopHistogramVec struct{}

func (nopHistogramVec) WithLabelValues(...string) Histogram { return nopHistogram{} }
