package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	upserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_upserts_total",
			Help: "Attendance and feedback writes by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campus_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// TrackRequest records one served HTTP request.
func TrackRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TrackRegistration records a registration outcome such as "ok" or
// "capacity_exceeded".
func TrackRegistration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

// TrackUpsert records an attendance or feedback write.
func TrackUpsert(kind, outcome string) {
	upserts.WithLabelValues(kind, outcome).Inc()
}

func TrackRateLimited() {
	rateLimited.Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
