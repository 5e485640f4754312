// Package metrics exposes the storefront's Prometheus instruments.
// All methods are safe on a nil receiver so components can run without
// a registry in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics records storefront activity.
type Metrics struct {
	gatherer prometheus.Gatherer

	cartMutations   *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	staleResponses  prometheus.Counter
	backendDuration *prometheus.HistogramVec
}

// New registers the storefront metrics on reg. A nil registry yields a
// Metrics that records nothing.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Successful cart mutations by operation.",
	}, []string{"op"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_submissions_total",
		Help:      "Order submissions by actor kind and outcome.",
	}, []string{"actor", "outcome"})
	staleResponses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_stale_responses_total",
		Help:      "Listing responses discarded because a newer request superseded them.",
	})
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of calls to the catalogue backend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	reg.MustRegister(cartMutations, submissions, staleResponses, backendDuration)

	return &Metrics{
		gatherer:        reg,
		cartMutations:   cartMutations,
		submissions:     submissions,
		staleResponses:  staleResponses,
		backendDuration: backendDuration,
	}
}

// IncCartMutation counts one successful cart mutation.
func (m *Metrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSubmission counts one order submission attempt.
func (m *Metrics) IncSubmission(actor, outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(actor), normalizeLabel(outcome)).Inc()
}

// IncStaleResponse counts one discarded listing response.
func (m *Metrics) IncStaleResponse() {
	if m == nil || m.staleResponses == nil {
		return
	}
	m.staleResponses.Inc()
}

// ObserveBackendRequest records the duration of a backend call.
func (m *Metrics) ObserveBackendRequest(endpoint, status string, d time.Duration) {
	if m == nil || m.backendDuration == nil {
		return
	}
	m.backendDuration.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
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
