package middleware

import (
	"net/http"

	"console-service/internal/model"
	"console-service/internal/session"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireSuperAdmin guards the platform administration routes. Only
// authenticated super admins pass.
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims := session.ClaimsFrom(c.Request().Context())
		if claims == nil {
			log.Debug("Admin route accessed without session")
			prometheus.RecordAuthError("missing_session")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if claims.Role != model.RoleSuperAdmin {
			log.Warn("Admin route accessed by non-admin user",
				zap.String("user_id", claims.UserID),
				zap.String("role", claims.Role))
			prometheus.RecordAuthError("admin_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "super admin access required"})
		}

		return next(c)
	}
}

// RequireSession rejects unauthenticated requests. Used for routes that need
// any logged-in user, regardless of role.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if session.ClaimsFrom(c.Request().Context()) == nil {
			prometheus.RecordAuthError("missing_session")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		return next(c)
	}
}
