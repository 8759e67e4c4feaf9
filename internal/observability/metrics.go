// Package observability registers the Prometheus instruments shared by the
// API and consumer binaries.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights_service",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests grouped by path, method and status code.",
	}, []string{"path", "method", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "insights_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency per path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	projectionGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "insights_service",
		Subsystem: "projection",
		Name:      "last_record_timestamp_seconds",
		Help:      "Event timestamp of the most recent record projected per record type.",
	}, []string{"record"})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration, projectionGauge)
}

// Instrument wraps a handler with request counting and latency recording.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		requestCounter.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

// RecordProjection updates the projection watermark gauge for a record type.
func RecordProjection(record string, ts time.Time) {
	if ts.IsZero() {
		return
	}
	projectionGauge.WithLabelValues(record).Set(float64(ts.Unix()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
