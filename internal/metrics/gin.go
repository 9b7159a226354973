package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "atsresume",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API 请求耗时分布（秒）。",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "code"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "atsresume",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "当前正在处理的 API 请求数量。",
		},
	)
)

// GinMiddleware 按路由模板采集请求耗时。未匹配路由统一记为 "unmatched"，避免标签基数膨胀。
// /metrics 自身和 WebSocket 长连接不计入。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "/metrics" || route == "/v1/ws" {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		start := time.Now()
		httpInFlight.Inc()
		c.Next()
		httpInFlight.Dec()

		httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
