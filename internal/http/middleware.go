package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	// secretHeader is the static shared-secret header checked on the users overview.
	secretHeader = "auth"
)

// requestLogger tags every request with an id (reusing the caller's X-Request-ID) and logs
// it once the handler chain has finished.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// requestLog returns logger scoped to the current request id.
func requestLog(c *gin.Context, logger logrus.FieldLogger) logrus.FieldLogger {
	if id, ok := c.Get(requestIDKey); ok {
		return logger.WithField("request_id", id)
	}
	return logger
}

// sharedSecret guards a route with a static header value. An empty secret disables the check.
func sharedSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		provided := c.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Message: "Unauthorized: Invalid or missing auth header",
				Error:   kindUnauthorized,
			})
			return
		}
		c.Next()
	}
}
