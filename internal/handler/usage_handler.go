package handler

import (
	"net/http"
	"strconv"
	"time"

	"console-service/internal/model"
	"console-service/pkg/database"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListUsageLogs returns the most recent usage log entries with user, tenant
// and app names resolved
func ListUsageLogs(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var logs []model.UsageLog
	if result := database.GetDB().Order("created_at desc").Limit(50).Find(&logs); result.Error != nil {
		log.Error("Failed to fetch usage logs", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch usage logs"})
	}

	userNames, appNames, tenantNames, err := usageNameLookups()
	if err != nil {
		log.Error("Failed to resolve usage log names", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch usage logs"})
	}

	type logResponse struct {
		model.UsageLog
		UserName   string `json:"user_name"`
		TenantName string `json:"tenant_name"`
		AppName    string `json:"app_name"`
	}

	response := make([]logResponse, 0, len(logs))
	for _, l := range logs {
		response = append(response, logResponse{
			UsageLog:   l,
			UserName:   userNames[l.UserID],
			TenantName: tenantNames[l.TenantID],
			AppName:    appNames[l.AppID],
		})
	}

	return c.JSON(http.StatusOK, response)
}

// UsageAnalytics aggregates usage over the requested window into per-app,
// per-organization and per-day counts
func UsageAnalytics(c echo.Context) error {
	log := logger.FromContext(c)

	days, err := strconv.Atoi(c.QueryParam("days"))
	if err != nil || days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var logs []model.UsageLog
	if result := database.GetDB().Where("created_at >= ?", since).Find(&logs); result.Error != nil {
		log.Error("Failed to fetch usage logs", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch usage analytics"})
	}

	_, appNames, tenantNames, err := usageNameLookups()
	if err != nil {
		log.Error("Failed to resolve analytics names", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch usage analytics"})
	}

	appStats := make(map[string]int)
	orgStats := make(map[string]int)
	dailyUsage := make(map[string]int)

	for _, l := range logs {
		appName := appNames[l.AppID]
		if appName == "" {
			appName = "Unknown"
		}
		appStats[appName]++

		orgName := tenantNames[l.TenantID]
		if orgName == "" {
			orgName = "Unknown"
		}
		orgStats[orgName]++

		dailyUsage[l.CreatedAt.Format("2006-01-02")]++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"days":        days,
		"total":       len(logs),
		"app_stats":   appStats,
		"org_stats":   orgStats,
		"daily_usage": dailyUsage,
	})
}

// usageNameLookups loads id-to-name mappings for usage log display.
func usageNameLookups() (users, apps, tenants map[string]string, err error) {
	var userRows []model.User
	if result := database.GetDB().Find(&userRows); result.Error != nil {
		return nil, nil, nil, result.Error
	}
	var appRows []model.App
	if result := database.GetDB().Find(&appRows); result.Error != nil {
		return nil, nil, nil, result.Error
	}

	users = make(map[string]string, len(userRows))
	for _, u := range userRows {
		users[u.ID] = u.Name
	}
	apps = make(map[string]string, len(appRows))
	for _, a := range appRows {
		apps[a.ID] = a.Name
	}

	tenants, err = tenantNamesByID()
	if err != nil {
		return nil, nil, nil, err
	}
	return users, apps, tenants, nil
}
