// README: Prometheus collectors for the reservation engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreated   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "reservations_created_total", Help: "Reservations that entered pending state"})
	ReservationConflicts  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "reservation_conflicts_total", Help: "Booking attempts rejected because the interval was already held"})
	ReservationsConfirmed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "reservations_confirmed_total", Help: "Reservations confirmed"})
	ReservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "reservations_cancelled_total", Help: "Reservations cancelled"})
	ReservationsExpired   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "reservations_expired_total", Help: "Pending reservations expired by the sweep"})
	SweepLost             = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "sweep_transitions_lost_total", Help: "Sweep expiry attempts that lost the race to a concurrent transition"})
	LocationSamples       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "roam", Name: "location_samples_total", Help: "Location samples recorded"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roam", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roam",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
