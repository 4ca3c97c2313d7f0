package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	requestIDKey       = "request_id"
	maxRequestIDLength = 64
)

// recoveryMiddleware turns a panic in a handler into a generic 500.
func recoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"request_id", c.GetString(requestIDKey),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(detailInternal))
			}
		}()
		c.Next()
	}
}

// requestIDMiddleware keeps a reasonable inbound X-Request-ID or assigns a
// new UUID.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLogMiddleware logs one line per request and reports it to the
// observer.
func accessLogMiddleware(logger *slog.Logger, observer Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		observer.ObserveRequest(route, status, elapsed)

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", strconv.Itoa(status),
			"duration", elapsed,
			"client", clientKey(c),
			"request_id", c.GetString(requestIDKey),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
			logger.Error("http request", attrs...)
			return
		}
		logger.Info("http request", attrs...)
	}
}

// rateLimitMiddleware rejects clients that exceed their request rate.
func rateLimitMiddleware(limiter *ClientLimiter, observer Observer) gin.HandlerFunc {
	retryAfter := "1"
	if limiter != nil {
		retryAfter = strconv.Itoa(int(max(limiter.interval.Round(time.Second), time.Second) / time.Second))
	}
	return func(c *gin.Context) {
		if limiter.Allow(clientKey(c)) {
			c.Next()
			return
		}
		observer.ObserveRateLimited()
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody(detailRateLimited))
	}
}
