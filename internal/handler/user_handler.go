package handler

import (
	"net/http"
	"time"

	"console-service/internal/model"
	"console-service/pkg/database"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers returns all users with their organization name
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var users []model.User
	if result := database.GetDB().Order("name").Find(&users); result.Error != nil {
		log.Error("Failed to fetch users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}

	tenantNames, err := tenantNamesByID()
	if err != nil {
		log.Error("Failed to fetch organizations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}

	type userResponse struct {
		model.User
		OrganizationName string `json:"organization_name,omitempty"`
	}

	response := make([]userResponse, 0, len(users))
	for _, u := range users {
		entry := userResponse{User: u}
		if u.TenantID != nil {
			entry.OrganizationName = tenantNames[*u.TenantID]
		}
		response = append(response, entry)
	}

	return c.JSON(http.StatusOK, response)
}

// CreateUser creates a new console user
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Name     string  `json:"name"`
		Role     string  `json:"role"`
		TenantID *string `json:"tenant_id,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password, name and role are required"})
	}

	if req.Role != model.RoleSuperAdmin && req.Role != model.RoleMember {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be super_admin or member"})
	}

	// Super admins are platform operators and never belong to a tenant
	if req.Role == model.RoleSuperAdmin && req.TenantID != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "super admins cannot be assigned to an organization"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		TenantID:     req.TenantID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("User created",
		zap.String("id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return c.JSON(http.StatusCreated, user)
}

// DeleteUser deletes a user by ID
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete user", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	log.Info("User deleted", zap.String("id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// tenantNamesByID loads a tenant id to name mapping for response assembly.
func tenantNamesByID() (map[string]string, error) {
	var tenants []model.Tenant
	if result := database.GetDB().Find(&tenants); result.Error != nil {
		return nil, result.Error
	}
	names := make(map[string]string, len(tenants))
	for _, t := range tenants {
		names[t.ID] = t.Name
	}
	return names, nil
}
