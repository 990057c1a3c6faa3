package web

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts served requests for Prometheus.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// NewMetrics returns Metrics with its own registry, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panels",
			Name:      "http_requests_total",
			Help:      "Requests served, by status code.",
		}, []string{"code"}),
	}
	m.registry.MustRegister(m.requests)
	m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Handler counts each request served by h.
func (m *Metrics) Handler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w}
		h.ServeHTTP(sr, r)
		m.requests.WithLabelValues(strconv.Itoa(sr.code())).Inc()
	})
}

// Exposer serves the collected metrics in the Prometheus text format.
func (m *Metrics) Exposer() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
