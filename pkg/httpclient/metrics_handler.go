package httpclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsHandler records request counts, in-flight requests, and latency as
// Prometheus metrics.
type MetricsHandler struct {
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsHandler registers the client metrics on reg. Pass
// prometheus.DefaultRegisterer to use the global registry.
func NewMetricsHandler(reg prometheus.Registerer) *MetricsHandler {
	factory := promauto.With(reg)
	return &MetricsHandler{
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "httpclient_in_flight_requests",
			Help: "Requests currently awaiting a response.",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "httpclient_requests_total",
			Help: "Completed requests by method and status code.",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httpclient_request_duration_seconds",
			Help:    "Request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// HandleRequest marks a request as in flight.
func (h *MetricsHandler) HandleRequest(RequestEvent) {
	h.inFlight.Inc()
}

// HandleResponse records the outcome and latency.
func (h *MetricsHandler) HandleResponse(ev ResponseEvent) {
	h.inFlight.Dec()
	h.requests.WithLabelValues(ev.Method, strconv.Itoa(ev.StatusCode)).Inc()
	h.duration.WithLabelValues(ev.Method).Observe(ev.Elapsed.Seconds())
}
