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

// ListMemberApps returns the approved apps enabled for the caller's
// organization, plus whether any provider key is configured. Membership is
// checked through the authorization engine without an app name.
func ListMemberApps(c echo.Context) error {
	log := logger.FromContext(c)

	result, authErr := authEngine.Authorize(c.Request().Context(), "")
	if authErr != nil {
		return c.JSON(authErr.Status, echo.Map{
			"error": authErr.Message,
			"code":  authErr.Code,
		})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var orgApps []model.OrgApp
	if res := database.GetDB().
		Where("tenant_id = ? AND enabled = ?", result.Tenant.ID, true).
		Find(&orgApps); res.Error != nil {
		log.Error("Failed to fetch enabled apps", zap.Error(res.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch enabled apps"})
	}

	appIDs := make([]string, 0, len(orgApps))
	for _, oa := range orgApps {
		appIDs = append(appIDs, oa.AppID)
	}

	apps := []model.App{}
	if len(appIDs) > 0 {
		if res := database.GetDB().
			Where("id IN ? AND status = ?", appIDs, model.AppStatusApproved).
			Order("name").
			Find(&apps); res.Error != nil {
			log.Error("Failed to fetch apps", zap.Error(res.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch enabled apps"})
		}
	}

	var keyCount int64
	if res := database.GetDB().Model(&model.APIKey{}).
		Where("tenant_id = ?", result.Tenant.ID).
		Count(&keyCount); res.Error != nil {
		log.Warn("Failed to check API key presence", zap.Error(res.Error))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"apps":        apps,
		"has_api_key": keyCount > 0,
	})
}
