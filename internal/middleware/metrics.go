package middleware

import (
	"strconv"
	"time"

	"shortly-platform/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 记录请求数与耗时，路由取注册时的模板避免短码撑爆标签
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
