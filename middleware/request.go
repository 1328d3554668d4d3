package middleware

import (
	"strconv"
	"time"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or mints a new one, and
// stores a logger tagged with it under "logger".
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	logger = utils.OrNop(logger)
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Set("logger", logger.With(zap.String("requestID", id)))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs each request and records HTTP metrics. Unmatched routes
// are labelled by a fixed path to keep label cardinality bounded.
func RequestLogger(logger *zap.Logger, metrics *utils.Metrics) gin.HandlerFunc {
	logger = utils.OrNop(logger)
	return func(c *gin.Context) {
		start := time.Now()
		if metrics != nil {
			metrics.InFlightGauge.Inc()
			defer metrics.InFlightGauge.Dec()
		}

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		if metrics != nil {
			labels := []string{c.Request.Method, path, strconv.Itoa(status)}
			metrics.RequestsTotal.WithLabelValues(labels...).Inc()
			metrics.RequestDuration.WithLabelValues(labels...).Observe(elapsed.Seconds())
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("requestID", c.GetString("requestID")),
		}
		switch {
		case status >= 500:
			logger.Error("Request failed", fields...)
		case status >= 400:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request served", fields...)
		}
	}
}
