package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Booking creation attempts by result",
		},
		[]string{"result"},
	)

	paymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_confirmations_total",
			Help: "Checkout completion notifications by result",
		},
		[]string{"result"},
	)

	pendingExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_expired_total",
			Help: "Pending bookings moved to expired by the sweeper",
		},
	)
)

func TrackRequest(method, route, status string, d time.Duration) {
	requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func TrackBooking(result string) {
	bookingsCreated.WithLabelValues(result).Inc()
}

func TrackPayment(result string) {
	paymentsConfirmed.WithLabelValues(result).Inc()
}

func TrackExpired(n int64) {
	pendingExpired.Add(float64(n))
}
