package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and authentication collectors of one registry.
type Metrics struct {
	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sessionEvents   *prometheus.CounterVec
	tokenRejections *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_session_events_total",
			Help: "Signup, signin and refresh attempts by outcome.",
		}, []string{"operation", "outcome"}),
		tokenRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Access tokens rejected by the identity gate, by reason.",
		}, []string{"reason"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_gate_decisions_total",
			Help: "Role gate decisions.",
		}, []string{"gate", "decision"}),
	}
	reg.MustRegister(m.inFlight, m.requestsTotal, m.requestDuration, m.sessionEvents, m.tokenRejections, m.gateDecisions)
	return m
}

// Handler serves the exposition format for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Instrument measures requests to a route. route is the registered pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()
		start := time.Now()

		sw := NewStatusWriter(w)
		next(sw, r)

		status := strconv.Itoa(sw.Status())
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, route, status).Inc()
	}
}

func (m *Metrics) SessionEvent(operation, outcome string) {
	m.sessionEvents.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) TokenRejected(reason string) {
	m.tokenRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) GateDecision(gate, decision string) {
	m.gateDecisions.WithLabelValues(gate, decision).Inc()
}

// StatusWriter records the status code written through it.
type StatusWriter struct {
	http.ResponseWriter
	code    int
	written bool
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	if sw, ok := w.(*StatusWriter); ok {
		return sw
	}
	return &StatusWriter{ResponseWriter: w, code: http.StatusOK}
}

func (w *StatusWriter) WriteHeader(code int) {
	if !w.written {
		w.code = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Status returns the written status, 200 if nothing set one.
func (w *StatusWriter) Status() int {
	return w.code
}

// Written reports whether a header or body has been sent.
func (w *StatusWriter) Written() bool {
	return w.written
}
