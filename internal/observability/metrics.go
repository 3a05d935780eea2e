package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	achievementsUnlocked   *prometheus.CounterVec
	xpAwardedTotal         prometheus.Counter
	rubricGradesTotal      *prometheus.CounterVec
	progressEventsConsumed *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pbl_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pbl_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pbl_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		achievementsUnlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pbl_achievements_unlocked_total",
			Help: "Number of achievements unlocked, by achievement.",
		}, []string{"achievement"})

		xpAwardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pbl_xp_awarded_total",
			Help: "Total XP awarded through achievement unlocks.",
		})

		rubricGradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pbl_rubric_grades_total",
			Help: "Number of submissions graded, by grading path.",
		}, []string{"path"})

		progressEventsConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pbl_progress_events_consumed_total",
			Help: "Progress events received from the message bus, by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			achievementsUnlocked,
			xpAwardedTotal,
			rubricGradesTotal,
			progressEventsConsumed,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AchievementsUnlocked counts unlocks per achievement.
func AchievementsUnlocked() *prometheus.CounterVec {
	RegisterMetrics()
	return achievementsUnlocked
}

// XPAwarded counts XP granted by unlocks.
func XPAwarded() prometheus.Counter {
	RegisterMetrics()
	return xpAwardedTotal
}

// RubricGrades counts graded submissions per grading path.
func RubricGrades() *prometheus.CounterVec {
	RegisterMetrics()
	return rubricGradesTotal
}

// ProgressEventsConsumed counts bus messages handled by the progress listener.
func ProgressEventsConsumed() *prometheus.CounterVec {
	RegisterMetrics()
	return progressEventsConsumed
}
