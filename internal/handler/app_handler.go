package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"console-service/internal/model"
	"console-service/pkg/database"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	appCategories = map[string]bool{
		"ai-ml":         true,
		"productivity":  true,
		"communication": true,
		"analytics":     true,
		"integration":   true,
		"utility":       true,
	}

	appPermissions = map[string]bool{
		"api-access":        true,
		"file-upload":       true,
		"external-requests": true,
		"user-data":         true,
		"organization-data": true,
	}
)

// AppSubmission is the payload for submitting a new catalog app
type AppSubmission struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Version     string   `json:"version"`
	Category    string   `json:"category"`
	Permissions []string `json:"permissions"`
	Author      string   `json:"author,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
}

// Validate checks the submission fields and returns every violation found.
func (s *AppSubmission) Validate() []string {
	var errs []string

	if len(s.Name) < 3 {
		errs = append(errs, "app name must be at least 3 characters")
	}
	if len(s.Description) < 10 {
		errs = append(errs, "app description must be at least 10 characters")
	}
	if !versionPattern.MatchString(s.Version) {
		errs = append(errs, "app version must follow semantic versioning (x.y.z)")
	}
	if !appCategories[s.Category] {
		errs = append(errs, fmt.Sprintf("unknown category '%s'", s.Category))
	}
	for _, p := range s.Permissions {
		if !appPermissions[p] {
			errs = append(errs, fmt.Sprintf("unknown permission '%s'", p))
		}
	}

	return errs
}

// ListApps returns the full app catalog
func ListApps(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var apps []model.App
	if result := database.GetDB().Order("name").Find(&apps); result.Error != nil {
		log.Error("Failed to fetch apps", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch apps"})
	}

	return c.JSON(http.StatusOK, apps)
}

// SubmitApp registers a new catalog app in the pending state
func SubmitApp(c echo.Context) error {
	log := logger.FromContext(c)

	var req AppSubmission
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse app submission", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if errs := req.Validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation failed",
			"details": errs,
		})
	}

	var existing model.App
	if result := database.GetDB().Where("name = ?", req.Name).First(&existing); result.Error == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "app name already exists"})
	}

	permissions, err := json.Marshal(req.Permissions)
	if err != nil {
		log.Error("Failed to encode permissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "app creation failed"})
	}

	app := model.App{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Version:     req.Version,
		Category:    req.Category,
		Permissions: string(permissions),
		Author:      req.Author,
		Homepage:    req.Homepage,
		Status:      model.AppStatusPending,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&app); result.Error != nil {
		log.Error("Failed to create app", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "app creation failed"})
	}

	log.Info("App submitted",
		zap.String("id", app.ID),
		zap.String("name", app.Name))

	return c.JSON(http.StatusCreated, app)
}

// UpdateApp updates an app's mutable fields in place
func UpdateApp(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var app model.App
	if result := database.GetDB().First(&app, "id = ?", id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "app not found"})
	}

	var req struct {
		Description *string `json:"description,omitempty"`
		Icon        *string `json:"icon,omitempty"`
		Version     *string `json:"version,omitempty"`
		Homepage    *string `json:"homepage,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Version != nil {
		if !versionPattern.MatchString(*req.Version) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "app version must follow semantic versioning (x.y.z)"})
		}
		updates["version"] = *req.Version
	}
	if req.Homepage != nil {
		updates["homepage"] = *req.Homepage
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusOK, app)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&app).Updates(updates); result.Error != nil {
		log.Error("Failed to update app", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "app update failed"})
	}

	return c.JSON(http.StatusOK, app)
}

// DeleteApp removes an app from the catalog
func DeleteApp(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.App{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete app", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "app deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "app not found"})
	}

	log.Info("App deleted", zap.String("id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ApproveApp transitions a pending app to approved
func ApproveApp(c echo.Context) error {
	return reviewApp(c, model.AppStatusApproved)
}

// RejectApp transitions a pending app to rejected
func RejectApp(c echo.Context) error {
	return reviewApp(c, model.AppStatusRejected)
}

// reviewApp applies the one-time pending -> approved/rejected transition.
func reviewApp(c echo.Context, status string) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var app model.App
	if result := database.GetDB().First(&app, "id = ?", id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "app not found"})
	}

	if app.Status != model.AppStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "app has already been reviewed"})
	}

	now := time.Now()
	updates := map[string]interface{}{"status": status}
	if status == model.AppStatusApproved {
		updates["approved_at"] = &now
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&app).Updates(updates); result.Error != nil {
		log.Error("Failed to review app", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "app review failed"})
	}

	log.Info("App reviewed",
		zap.String("id", id),
		zap.String("status", status))

	return c.JSON(http.StatusOK, app)
}
