package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentiment-health/api-go/metrics"
	"github.com/sirupsen/logrus"
)

const slowRequest = 2 * time.Second

func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"remote_ip": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case duration > slowRequest:
			entry.Warn("Slow request detected")
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		default:
			entry.Info("Request completed")
		}
	}
}

// RequestMetrics counts requests by route template so path parameters do not explode the label set.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.Request(path, strconv.Itoa(c.Writer.Status()))
	}
}
