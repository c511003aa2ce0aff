package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Checkout events counted by CheckoutEvents.
const (
	EventSubmitted = "submitted"
	EventFinalized = "finalized"
	EventPaid      = "paid"
)

// Metrics holds the HTTP and checkout collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	checkout *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// New registers the storefront collectors on reg. A nil reg yields a no-op Metrics.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_events_total",
		Help:      "Checkout pipeline events by kind.",
	}, []string{"event"})

	reg.MustRegister(requests, latency, checkout)
	return &Metrics{
		requests: requests,
		latency:  latency,
		checkout: checkout,
		gatherer: reg,
	}
}

// ObserveRequest records one served request under its route pattern.
func (m *Metrics) ObserveRequest(handler string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	handler = normalizeLabel(handler)
	m.requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(handler).Observe(float64(elapsed) / float64(time.Millisecond))
}

// IncCheckout increments the counter of a checkout event.
func (m *Metrics) IncCheckout(event string) {
	if m == nil || m.checkout == nil {
		return
	}
	m.checkout.WithLabelValues(normalizeLabel(event)).Inc()
}

// Handler exposes the registered collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
