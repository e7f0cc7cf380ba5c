// Package metrics provides Prometheus instrumentation for the ScreenMind backend.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screenmind",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// EventsIngestedTotal counts raw behavioral events accepted, by type.
	EventsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "events_ingested_total",
			Help:      "Total raw events accepted into the event log by type.",
		},
		[]string{"type"},
	)

	// EventsRejectedTotal counts ingest rejections (malformed/unknown events).
	EventsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "events_rejected_total",
			Help:      "Total raw events rejected at ingest.",
		},
	)

	// RiskScoresTotal counts computed isolation risk scores by label.
	RiskScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "risk_scores_total",
			Help:      "Total isolation risk scores computed, by qualitative label.",
		},
		[]string{"label"},
	)

	// SleepScoresTotal counts computed sleep disruption scores by label.
	SleepScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "sleep_scores_total",
			Help:      "Total sleep disruption scores computed, by qualitative label.",
		},
		[]string{"label"},
	)

	// PipelineRunsTotal counts daily collection pipeline executions by result.
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "pipeline_runs_total",
			Help:      "Total daily collection pipeline runs by result.",
		},
		[]string{"result"},
	)

	// SentimentFallbacksTotal counts neutral fallbacks served when the
	// remote sentiment service was unreachable.
	SentimentFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenmind",
			Name:      "sentiment_fallbacks_total",
			Help:      "Total neutral fallback sentiment results served.",
		},
	)

	// ActiveSessions tracks currently open tracking sessions.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "screenmind",
			Name:      "active_sessions",
			Help:      "Number of currently open tracking sessions.",
		},
	)

	// ActiveWebSocketClients tracks connected dashboard WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "screenmind",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "screenmind", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "screenmind", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "screenmind", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "screenmind", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

var registerOnce sync.Once

// Register registers all metrics with the default registry.
// Safe to call more than once; only the first call registers.
func Register() {
	registerOnce.Do(register)
}

func register() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		EventsIngestedTotal,
		EventsRejectedTotal,
		RiskScoresTotal,
		SleepScoresTotal,
		PipelineRunsTotal,
		SentimentFallbacksTotal,
		ActiveSessions,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware instruments HTTP requests with count and duration metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, statusClass(c.Writer.Status()),
		).Inc()
		HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// CollectRuntime starts a loop that samples process-level gauges until ctx
// is cancelled. db may be nil when running on in-memory stores.
func CollectRuntime(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
			if db != nil {
				stats := db.Stats()
				DBOpenConnections.Set(float64(stats.OpenConnections))
				DBIdleConnections.Set(float64(stats.Idle))
				DBInUseConnections.Set(float64(stats.InUse))
			}
		}
	}
}
