// Package metrics provides the Prometheus metrics of the newsroom server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts handled requests by route name, method and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsroom_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_login_attempts_total",
			Help: "Login attempts by result (success, failure, limited)",
		},
		[]string{"result"},
	)

	AssignmentToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsroom_assignment_toggles_total",
			Help: "Publisher assignment toggles by action (assign, unassign)",
		},
		[]string{"action"},
	)

	// Records is refreshed whenever the landing page counts the records.
	Records = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsroom_records",
			Help: "Number of stored records by kind",
		},
		[]string{"kind"},
	)
)

func ObserveRequest(route, method string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordLogin takes "success", "failure" or "limited".
func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

func RecordToggle(assigned bool) {
	var action = "unassign"
	if assigned {
		action = "assign"
	}
	AssignmentToggles.WithLabelValues(action).Inc()
}

func SetRecords(redactors, newspapers, topics int) {
	Records.WithLabelValues("redactor").Set(float64(redactors))
	Records.WithLabelValues("newspaper").Set(float64(newspapers))
	Records.WithLabelValues("topic").Set(float64(topics))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
