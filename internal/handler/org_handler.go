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
)

// ListOrganizations returns all organizations with their member counts
func ListOrganizations(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenants []model.Tenant
	if result := database.GetDB().Order("name").Find(&tenants); result.Error != nil {
		log.Error("Failed to fetch organizations", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch organizations"})
	}

	type countRow struct {
		TenantID string
		Count    int64
	}
	var counts []countRow
	if result := database.GetDB().Model(&model.User{}).
		Select("tenant_id, count(*) as count").
		Where("tenant_id IS NOT NULL").
		Group("tenant_id").
		Scan(&counts); result.Error != nil {
		log.Error("Failed to count organization members", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch organizations"})
	}

	memberCounts := make(map[string]int64, len(counts))
	for _, row := range counts {
		memberCounts[row.TenantID] = row.Count
	}

	type orgResponse struct {
		model.Tenant
		MemberCount int64 `json:"member_count"`
	}

	response := make([]orgResponse, 0, len(tenants))
	for _, t := range tenants {
		response = append(response, orgResponse{Tenant: t, MemberCount: memberCounts[t.ID]})
	}

	return c.JSON(http.StatusOK, response)
}

// CreateOrganization creates a new organization
func CreateOrganization(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name string `json:"name"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization name is required"})
	}

	tenant := model.Tenant{Name: req.Name}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&tenant); result.Error != nil {
		log.Error("Failed to create organization", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization creation failed"})
	}

	log.Info("Organization created",
		zap.String("id", tenant.ID),
		zap.String("name", tenant.Name))

	return c.JSON(http.StatusCreated, tenant)
}

// UpdateOrganization renames an organization
func UpdateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		Name string `json:"name"`
	}

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization name is required"})
	}

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, "id = ?", id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&tenant).Update("name", req.Name); result.Error != nil {
		log.Error("Failed to update organization", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization update failed"})
	}

	return c.JSON(http.StatusOK, tenant)
}

// DeleteOrganization deletes an organization. Organizations that still own
// members cannot be deleted.
func DeleteOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var memberCount int64
	if result := database.GetDB().Model(&model.User{}).
		Where("tenant_id = ?", id).
		Count(&memberCount); result.Error != nil {
		log.Error("Failed to count organization members", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization deletion failed"})
	}

	if memberCount > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "organization still has members; remove them first",
		})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.Tenant{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete organization", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "organization deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
	}

	log.Info("Organization deleted", zap.String("id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListOrganizationMembers returns the users assigned to an organization
func ListOrganizationMembers(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var members []model.User
	if result := database.GetDB().Where("tenant_id = ?", id).Order("name").Find(&members); result.Error != nil {
		log.Error("Failed to fetch organization members", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch members"})
	}

	return c.JSON(http.StatusOK, members)
}

// AddOrganizationMember assigns an existing user to an organization
func AddOrganizationMember(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		UserID string `json:"user_id"`
	}

	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, "id = ?", id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
	}

	var user model.User
	if result := database.GetDB().First(&user, "id = ?", req.UserID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	if user.IsSuperAdmin() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "super admins cannot join an organization"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&user).Update("tenant_id", tenant.ID); result.Error != nil {
		log.Error("Failed to add member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add member"})
	}

	log.Info("Member added to organization",
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenant.ID))

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// RemoveOrganizationMember removes a user from an organization
func RemoveOrganizationMember(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	userID := c.Param("userId")

	var user model.User
	if result := database.GetDB().First(&user, "id = ? AND tenant_id = ?", userID, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Model(&user).Update("tenant_id", nil); result.Error != nil {
		log.Error("Failed to remove member", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove member"})
	}

	log.Info("Member removed from organization",
		zap.String("user_id", userID),
		zap.String("tenant_id", id))

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ListOrganizationApps returns the full catalog annotated with whether each
// app is enabled for the organization
func ListOrganizationApps(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var apps []model.App
	if result := database.GetDB().Order("name").Find(&apps); result.Error != nil {
		log.Error("Failed to fetch apps", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch apps"})
	}

	var orgApps []model.OrgApp
	if result := database.GetDB().Where("tenant_id = ?", id).Find(&orgApps); result.Error != nil {
		log.Error("Failed to fetch enabled apps", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch enabled apps"})
	}

	enabled := make(map[string]bool, len(orgApps))
	for _, oa := range orgApps {
		enabled[oa.AppID] = oa.Enabled
	}

	type appWithStatus struct {
		model.App
		Enabled bool `json:"enabled"`
	}

	response := make([]appWithStatus, 0, len(apps))
	for _, app := range apps {
		response = append(response, appWithStatus{App: app, Enabled: enabled[app.ID]})
	}

	return c.JSON(http.StatusOK, response)
}

// ToggleOrganizationApp enables or disables an app for an organization by
// upserting the enablement row
func ToggleOrganizationApp(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		AppID   string `json:"app_id"`
		Enabled bool   `json:"enabled"`
	}

	if err := c.Bind(&req); err != nil || req.AppID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "app_id is required"})
	}

	var app model.App
	if result := database.GetDB().First(&app, "id = ?", req.AppID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "app not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var orgApp model.OrgApp
	result := database.GetDB().Where("tenant_id = ? AND app_id = ?", id, req.AppID).First(&orgApp)
	if result.Error == nil {
		if result := database.GetDB().Model(&orgApp).Update("enabled", req.Enabled); result.Error != nil {
			log.Error("Failed to toggle app", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update app access"})
		}
	} else {
		orgApp = model.OrgApp{TenantID: id, AppID: req.AppID, Enabled: req.Enabled}
		if result := database.GetDB().Create(&orgApp); result.Error != nil {
			log.Error("Failed to create app enablement", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update app access"})
		}
	}

	log.Info("Organization app access updated",
		zap.String("tenant_id", id),
		zap.String("app_id", req.AppID),
		zap.Bool("enabled", req.Enabled))

	return c.JSON(http.StatusOK, orgApp)
}
