package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(recordFetchLatencyMs) }

var recordFetchLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "record_fetch_latency_ms",
		Help:    "Record API read latency in milliseconds by resource and HTTP status (0 = transport error).",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000},
	},
	[]string{"resource", "status"},
)

func ObserveRecordFetch(resource string, status int, latencyMs int64) {
	recordFetchLatencyMs.WithLabelValues(norm(resource), strconv.Itoa(status)).Observe(float64(latencyMs))
}
