package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(reviewsTotal, reviewDurationMs) }

var (
	reviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_total",
			Help: "Invoice reviews by resolution mode and outcome.",
		},
		[]string{"mode", "outcome"}, // outcome: ok, decode, validation, fetch, reference, transport, completion, ...
	)

	reviewDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_duration_ms",
			Help:    "End-to-end review latency in milliseconds.",
			Buckets: []float64{500, 1000, 2000, 4000, 8000, 15000, 30000, 60000, 120000},
		},
		[]string{"mode"},
	)
)

func ObserveReview(mode, outcome string, durationMs int64) {
	reviewsTotal.WithLabelValues(norm(mode), norm(outcome)).Inc()
	reviewDurationMs.WithLabelValues(norm(mode)).Observe(float64(durationMs))
}
