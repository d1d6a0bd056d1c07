package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "store_ops_total",
			Help:      "Desk store operations by op and outcome.",
		},
		[]string{"op", "outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "bookings_total",
			Help:      "Booking state transitions by action.",
		},
		[]string{"action"},
	)

	notifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deskbook",
			Name:      "notify_failures_total",
			Help:      "Booking notifications that could not be delivered.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, storeOps, bookings, notifyFailures)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncStoreOp counts one facade-level store operation.
func IncStoreOp(op, outcome string) {
	storeOps.WithLabelValues(op, outcome).Inc()
}

// IncBooking counts one booking transition (book, unbook, bulk_release).
func IncBooking(action string) {
	bookings.WithLabelValues(action).Inc()
}

// IncNotifyFailure counts a swallowed notification error.
func IncNotifyFailure() {
	notifyFailures.Inc()
}
