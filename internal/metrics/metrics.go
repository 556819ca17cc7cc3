// Package metrics exports simulator activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the simulator collectors. It implements service.Observer.
type Metrics struct {
	registry        *prometheus.Registry
	ticks           prometheus.Counter
	collisions      prometheus.Counter
	runsFinished    *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cartsim_ticks_total",
			Help: "Total number of simulation ticks executed",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cartsim_collisions_total",
			Help: "Total number of cart collisions",
		}),
		runsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cartsim_runs_finished_total",
				Help: "Simulation runs that stopped, by outcome",
			},
			[]string{"outcome"},
		),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cartsim_sessions_active",
			Help: "Number of sessions held by the server",
		}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cartsim_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "code"},
		),
	}
	m.registry.MustRegister(m.ticks, m.collisions, m.runsFinished, m.sessionsActive, m.requestDuration)
	return m
}

// TicksAdvanced adds n executed ticks.
func (m *Metrics) TicksAdvanced(n int) {
	if n > 0 {
		m.ticks.Add(float64(n))
	}
}

// CollisionsObserved adds n collisions.
func (m *Metrics) CollisionsObserved(n int) {
	if n > 0 {
		m.collisions.Add(float64(n))
	}
}

// RunFinished counts a stopped run.
func (m *Metrics) RunFinished(outcome string) {
	m.runsFinished.WithLabelValues(outcome).Inc()
}

// SessionsActive sets the session gauge.
func (m *Metrics) SessionsActive(n int) {
	m.sessionsActive.Set(float64(n))
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
