package middleware

import (
	"console-service/internal/session"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionMiddleware parses the session cookie and, when valid, attaches the
// claims to the request context. It never rejects a request itself: routes
// decide how to treat an unauthenticated caller.
func SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		claims, err := session.ValidateToken(cookie.Value)
		if err != nil {
			log := logger.FromContext(c)
			log.Debug("Invalid session token", zap.Error(err))
			prometheus.RecordAuthError("invalid_session")
			return next(c)
		}

		ctx := session.WithClaims(c.Request().Context(), claims)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
