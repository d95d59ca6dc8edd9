package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	requestsTotal          *prometheus.CounterVec
	latencySeconds         *prometheus.HistogramVec
	errorsTotal            *prometheus.CounterVec
	attemptsStartedTotal   prometheus.Counter
	attemptsFinalizedTotal *prometheus.CounterVec
	answersRecordedTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		attemptsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_attempts_started_total",
			Help: "Total number of exam attempts started.",
		})

		attemptsFinalizedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_attempts_finalized_total",
			Help: "Total number of exam attempts sealed, by terminal status.",
		}, []string{"status"})

		answersRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_answers_recorded_total",
			Help: "Total number of answer submissions stored, by grading outcome.",
		}, []string{"grading"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			attemptsStartedTotal,
			attemptsFinalizedTotal,
			answersRecordedTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// AttemptsStarted exposes the counter for started attempts.
func AttemptsStarted() prometheus.Counter {
	RegisterMetrics()
	return attemptsStartedTotal
}

// AttemptsFinalized exposes the counter for sealed attempts.
func AttemptsFinalized() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsFinalizedTotal
}

// AnswersRecorded exposes the counter for stored answer submissions.
func AnswersRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return answersRecordedTotal
}
