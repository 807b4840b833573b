package handler

import (
	"net/http"
	"time"

	"console-service/internal/model"
	"console-service/internal/session"
	"console-service/pkg/database"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates a user by email and password and sets the session cookie
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	// Parse request
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Find user in database
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("Login for unknown user", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Issue session token
	token, err := session.GenerateToken(&user)
	if err != nil {
		log.Error("Failed to generate session token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session error"})
	}

	session.SetCookie(c, token)
	prometheus.IncreaseActiveSessions()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Logout clears the session cookie
func Logout(c echo.Context) error {
	session.ClearCookie(c)
	prometheus.DecreaseActiveSessions()
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the profile of the currently authenticated user
func Me(c echo.Context) error {
	log := logger.FromContext(c)

	claims := session.ClaimsFrom(c.Request().Context())
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var user model.User
	if result := database.GetDB().First(&user, "id = ?", claims.UserID); result.Error != nil {
		log.Warn("Session user not found", zap.String("user_id", claims.UserID))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
