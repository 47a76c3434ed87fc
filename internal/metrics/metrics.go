// Package metrics exposes Prometheus collectors for HTTP traffic, document
// rendering and editor activity.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render targets.
const (
	TargetPDF    = "pdf"
	TargetStatic = "static"
	TargetEditor = "editor"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	RenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exam_render_duration_seconds",
			Help:    "Time spent rendering an exam document",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"target"},
	)

	RenderCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_renders_total",
			Help: "Exam renders by target and outcome",
		},
		[]string{"target", "result"},
	)

	CacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_render_cache_total",
			Help: "Render cache lookups by target and outcome",
		},
		[]string{"target", "result"},
	)

	EditCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_edits_total",
			Help: "Editor mutations by operation and outcome",
		},
		[]string{"op", "result"},
	)
)

var once sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration, RenderDuration, RenderCounter, CacheCounter, EditCounter)
	})
}

// ObserveRender records one render of target that started at start.
func ObserveRender(target string, start time.Time, err error) {
	RenderDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	RenderCounter.WithLabelValues(target, result).Inc()
}

// ObserveCache records a render cache lookup.
func ObserveCache(target string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheCounter.WithLabelValues(target, result).Inc()
}

// ObserveEdit records an editor mutation. code is empty when it applied.
func ObserveEdit(op, code string) {
	if code == "" {
		code = "applied"
	}
	EditCounter.WithLabelValues(op, code).Inc()
}

// Middleware counts and times every request by route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
