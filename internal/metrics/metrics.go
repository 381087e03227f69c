package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizbuddy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quizbuddy_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"method", "endpoint"},
	)

	// LLMRequests counts chat completion calls by outcome (ok, error).
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizbuddy_llm_requests_total",
			Help: "LLM completion calls by outcome",
		},
		[]string{"outcome"},
	)

	LLMDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quizbuddy_llm_request_duration_seconds",
			Help:    "Latency of LLM completion calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
	)

	// Translations counts translate lookups: cached, ok, fallback, skipped.
	Translations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizbuddy_translations_total",
			Help: "Translation lookups by result",
		},
		[]string{"result"},
	)

	// QuizGenerations counts generator results by stage (ok, request, parse, count).
	QuizGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizbuddy_quiz_generations_total",
			Help: "Quiz generation attempts by result",
		},
		[]string{"result"},
	)

	QuizSubmissions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizbuddy_quiz_submissions_total",
			Help: "Graded quiz submissions",
		},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			LLMRequests,
			LLMDuration,
			Translations,
			QuizGenerations,
			QuizSubmissions,
		)
	})
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCounter.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
