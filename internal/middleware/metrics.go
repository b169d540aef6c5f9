package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	wsConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_connections_total",
			Help: "Total number of WebSocket connections",
		},
	)

	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	// =========================================================================
	// Business Metrics
	// =========================================================================

	buzzSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buzz_submissions_total",
			Help: "Buzz submissions by outcome",
		},
		[]string{"outcome"},
	)

	matchesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buzz_matches_created_total",
			Help: "Total number of matches created",
		},
	)

	radarQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "radar_queries_total",
			Help: "Total number of radar proximity queries",
		},
	)

	presenceActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_active_users",
			Help: "Number of users currently active on the radar",
		},
	)
)

// Metrics collects request counters and latency histograms.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// MetricsHandler serves the prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func RecordWSConnection() {
	wsConnectionsTotal.Inc()
	wsActiveConnections.Inc()
}

func RecordWSDisconnection() {
	wsActiveConnections.Dec()
}

// RecordBuzz counts a submission by its client-visible outcome.
func RecordBuzz(outcome string) {
	buzzSubmissionsTotal.WithLabelValues(outcome).Inc()
}

func RecordMatchCreated() {
	matchesCreatedTotal.Inc()
}

func RecordRadarQuery() {
	radarQueriesTotal.Inc()
}

func SetActivePresence(count float64) {
	presenceActive.Set(count)
}
