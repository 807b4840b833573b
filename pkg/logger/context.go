package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDKey = "X-Request-ID"

// FromContext returns the request-scoped logger bound by Middleware. When a
// handler runs outside the middleware chain (tests, background work) it
// falls back to the global logger tagged with whatever request ID is known.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}

	requestID, ok := c.Get(RequestIDKey).(string)
	if !ok || requestID == "" {
		requestID = c.Request().Header.Get(RequestIDKey)
	}
	if requestID == "" {
		requestID = "unknown"
	}

	return GetLogger().With(zap.String("request_id", requestID))
}
