// Package metrics exposes Prometheus collectors for HTTP traffic and quiz activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quizzes         prometheus.Counter
	submissions     *prometheus.CounterVec
	points          prometheus.Counter
	freezes         prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 30},
			},
			[]string{"method", "endpoint"},
		),
		quizzes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizzes_generated_total",
			Help: "Quizzes generated and stored",
		}),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_submissions_total",
				Help: "Graded quiz submissions by outcome",
			},
			[]string{"outcome"},
		),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Points credited to users by graded submissions",
		}),
		freezes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streak_freezes_total",
			Help: "Streak freezes purchased",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.quizzes,
		m.submissions,
		m.points,
		m.freezes,
	)
	return m
}

// Middleware records a count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) QuizGenerated() { m.quizzes.Inc() }

// SubmissionGraded counts one submission and the points it earned.
func (m *Metrics) SubmissionGraded(passed bool, points int) {
	outcome := "fail"
	if passed {
		outcome = "pass"
	}
	m.submissions.WithLabelValues(outcome).Inc()
	if points > 0 {
		m.points.Add(float64(points))
	}
}

func (m *Metrics) StreakFrozen() { m.freezes.Inc() }
