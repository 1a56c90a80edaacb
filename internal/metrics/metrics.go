package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parking",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parking",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	LotUpserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parking",
		Subsystem: "lots",
		Name:      "upserts_total",
		Help:      "Parking lot upserts by outcome (created, updated)",
	}, []string{"outcome"})

	SlotStatusChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parking",
		Subsystem: "slots",
		Name:      "status_changes_total",
		Help:      "Slot status values actually changed by reconciliation",
	})

	SlotQueueMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parking",
		Subsystem: "sqs",
		Name:      "messages_total",
		Help:      "Slot status queue messages by result (applied, rejected, failed)",
	}, []string{"result"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parking",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Lot list cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parking",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Lot list cache misses",
	})
)

// Middleware records request count and latency per route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
