package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maestro",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maestro",
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle transitions by target status.",
		},
		[]string{"status"},
	)

	moderationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maestro",
			Name:      "moderation_decisions_total",
			Help:      "Moderation decisions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maestro",
			Name:      "catalog_searches_total",
			Help:      "Catalog searches by cache outcome.",
		},
		[]string{"cache"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, moderationDecisions, searches)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingTransition counts a lifecycle transition into status.
func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// IncModerationDecision counts an approve/reject decision.
func IncModerationDecision(kind, outcome string) {
	moderationDecisions.WithLabelValues(kind, outcome).Inc()
}

// IncSearch counts a catalog search; cache is "hit" or "miss".
func IncSearch(cache string) {
	searches.WithLabelValues(cache).Inc()
}
