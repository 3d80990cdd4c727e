package middleware

import (
	"time"

	"github.com/flexprice/proratemate/internal/logger"
	"github.com/flexprice/proratemate/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new one
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	// Replace request context
	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), requestID))

	// Add headers for response
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// LoggingMiddleware logs one line per request once it has been served
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Infow("request served",
			"request_id", types.GetRequestID(c.Request.Context()),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
