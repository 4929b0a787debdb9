package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ResultsSaved counts task results accepted by the ingestion endpoint.
	ResultsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "results_saved_total",
			Help: "Total number of task results stored",
		},
	)

	// Signups counts signup attempts by outcome (created, rejected, error).
	Signups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total number of signup attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Logins counts admin login attempts by outcome (ok, fail, error).
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of admin login attempts by outcome",
		},
		[]string{"outcome"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, ResultsSaved, Signups, Logins)
	})
}

// NormalizePath reduces label cardinality by replacing numeric path segments with {id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncResultsSaved increments the stored-results counter.
func IncResultsSaved() {
	ResultsSaved.Inc()
}

// IncSignup records one signup attempt outcome (created, rejected, error).
func IncSignup(outcome string) {
	Signups.WithLabelValues(outcome).Inc()
}

// IncLogin records one login attempt outcome (ok, fail, error).
func IncLogin(outcome string) {
	Logins.WithLabelValues(outcome).Inc()
}
