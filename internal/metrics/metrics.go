// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voterroll"

// Metrics owns a private registry so that tests can build as many
// instances as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	SearchDuration   *prometheus.HistogramVec
	SearchCandidates prometheus.Histogram
	VisitsMarked     prometheus.Counter
	VisitsUnmarked   prometheus.Counter
	LoginFailures    prometheus.Counter
}

// New registers every collector. inUse, when non-nil, reports the number of
// database connections currently checked out.
func New(inUse func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent in voter searches, split into filtered and listing searches.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"mode"}),
		SearchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_total_matches",
			Help:      "Number of voters matching a filtered search before capping.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		VisitsMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_marked_total",
			Help:      "Voters marked as visited.",
		}),
		VisitsUnmarked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_unmarked_total",
			Help:      "Visit marks removed by administrators.",
		}),
		LoginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_failures_total",
			Help:      "Rejected login attempts.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.SearchDuration,
		m.SearchCandidates,
		m.VisitsMarked,
		m.VisitsUnmarked,
		m.LoginFailures,
	)

	if inUse != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_connections_in_use",
			Help:      "Database connections currently checked out of the pool.",
		}, func() float64 { return float64(inUse()) }))
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveSearch records one search.
func (m *Metrics) ObserveSearch(active bool, elapsed time.Duration, totalMatches int64) {
	mode := "listing"
	if active {
		mode = "filtered"
		m.SearchCandidates.Observe(float64(totalMatches))
	}
	m.SearchDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Instrument times next under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
