// Package metrics exposes fleet run counters for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry so tests and parallel runners never collide on
// the global one.
type Metrics struct {
	registry *prometheus.Registry

	shipsTotal      *prometheus.CounterVec
	shipDuration    *prometheus.HistogramVec
	tripsInserted   prometheus.Counter
	warningsTotal   *prometheus.CounterVec
	lastRun         prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDurationSec *prometheus.HistogramVec
}

// New creates and registers the shiptrack collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		shipsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiptrack_ships_processed_total",
				Help: "Ships processed, by outcome and the phase a failure happened in.",
			},
			[]string{"outcome", "failed_in"},
		),
		shipDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiptrack_ship_duration_seconds",
				Help:    "Wall time spent on one ship.",
				Buckets: []float64{5, 10, 20, 30, 45, 60, 90, 120, 180},
			},
			[]string{"outcome"},
		),
		tripsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiptrack_trips_inserted_total",
			Help: "New trips written to the store.",
		}),
		warningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiptrack_warnings_total",
				Help: "Non-fatal per-ship problems, by error code.",
			},
			[]string{"code"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shiptrack_last_run_timestamp_seconds",
			Help: "Unix time the last fleet run finished.",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiptrack_http_requests_total",
				Help: "Status server requests.",
			},
			[]string{"path", "method", "code"},
		),
		httpDurationSec: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiptrack_http_duration_seconds",
				Help:    "Status server request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	m.registry.MustRegister(
		m.shipsTotal,
		m.shipDuration,
		m.tripsInserted,
		m.warningsTotal,
		m.lastRun,
		m.httpRequests,
		m.httpDurationSec,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ShipProcessed records one finished ship. failedIn is empty on success.
func (m *Metrics) ShipProcessed(outcome, failedIn string, seconds float64) {
	m.shipsTotal.WithLabelValues(outcome, failedIn).Inc()
	m.shipDuration.WithLabelValues(outcome).Observe(seconds)
}

// TripInserted counts a new trip
func (m *Metrics) TripInserted() {
	m.tripsInserted.Inc()
}

// Warning counts a non-fatal problem
func (m *Metrics) Warning(code string) {
	m.warningsTotal.WithLabelValues(code).Inc()
}

// RunFinished stamps the completion time of a fleet run
func (m *Metrics) RunFinished(at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// unmatchedRoute labels requests no route pattern matched
const unmatchedRoute = "unmatched"

// Middleware records request count and duration. It must run inside a chi
// router; requests are labelled by route pattern, never by raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		// the pattern is only known once the router has matched
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = unmatchedRoute
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		m.httpDurationSec.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
