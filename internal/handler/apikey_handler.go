package handler

import (
	"net/http"
	"strings"
	"time"

	"console-service/internal/model"
	"console-service/pkg/cryptoutil"
	"console-service/pkg/database"
	"console-service/pkg/logger"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListAPIKeys returns API key metadata. The stored ciphertexts are never
// returned.
func ListAPIKeys(c echo.Context) error {
	log := logger.FromContext(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var keys []model.APIKey
	if result := database.GetDB().Order("created_at desc").Find(&keys); result.Error != nil {
		log.Error("Failed to fetch API keys", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch API keys"})
	}

	tenantNames, err := tenantNamesByID()
	if err != nil {
		log.Error("Failed to fetch organizations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch API keys"})
	}

	type keyResponse struct {
		model.APIKey
		OrganizationName string `json:"organization_name"`
		HasKey           bool   `json:"has_key"`
	}

	response := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		response = append(response, keyResponse{
			APIKey:           k,
			OrganizationName: tenantNames[k.TenantID],
			HasKey:           k.EncryptedKey != "",
		})
	}

	return c.JSON(http.StatusOK, response)
}

// UpsertAPIKey encrypts and stores a provider key for a tenant, overwriting
// any existing key for the same (tenant, provider) pair.
func UpsertAPIKey(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		TenantID string `json:"tenant_id"`
		Provider string `json:"provider"`
		Key      string `json:"key"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse API key request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.TenantID == "" || req.Provider == "" || req.Key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant_id, provider and key are required"})
	}

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, "id = ?", req.TenantID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
	}

	encrypted, err := cryptoutil.Encrypt(req.Key)
	if err != nil {
		log.Error("Failed to encrypt API key", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store API key"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	var key model.APIKey
	result := database.GetDB().Where("tenant_id = ? AND provider = ?", req.TenantID, req.Provider).First(&key)
	if result.Error == nil {
		if result := database.GetDB().Model(&key).Update("encrypted_key", encrypted); result.Error != nil {
			log.Error("Failed to rotate API key", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store API key"})
		}
	} else {
		key = model.APIKey{TenantID: req.TenantID, Provider: req.Provider, EncryptedKey: encrypted}
		if result := database.GetDB().Create(&key); result.Error != nil {
			log.Error("Failed to store API key", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store API key"})
		}
	}

	log.Info("API key stored",
		zap.String("tenant_id", req.TenantID),
		zap.String("provider", req.Provider))

	return c.JSON(http.StatusOK, echo.Map{
		"id":        key.ID,
		"tenant_id": key.TenantID,
		"provider":  key.Provider,
	})
}

// DeleteAPIKey removes a stored provider key
func DeleteAPIKey(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Delete(&model.APIKey{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete API key", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "API key deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "API key not found"})
	}

	log.Info("API key deleted", zap.String("id", id))
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// TestAPIKey decrypts a stored provider key, checks its shape and verifies
// it against the provider.
func TestAPIKey(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		TenantID string `json:"tenant_id"`
		Provider string `json:"provider"`
	}

	if err := c.Bind(&req); err != nil || req.TenantID == "" || req.Provider == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "tenant_id and provider are required",
		})
	}

	var key model.APIKey
	result := database.GetDB().Where("tenant_id = ? AND provider = ?", req.TenantID, req.Provider).First(&key)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"success": false,
			"message": "no API key found for this organization and provider",
		})
	}

	decrypted, err := cryptoutil.Decrypt(key.EncryptedKey)
	if err != nil {
		log.Error("Failed to decrypt stored API key",
			zap.String("tenant_id", req.TenantID),
			zap.String("provider", req.Provider),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "failed to decrypt API key",
		})
	}

	if req.Provider == "openai" && !strings.HasPrefix(decrypted, "sk-") {
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "stored key does not look like an OpenAI API key",
		})
	}

	if err := openaiClient.VerifyKey(c.Request().Context(), decrypted); err != nil {
		log.Warn("API key verification failed",
			zap.String("tenant_id", req.TenantID),
			zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "API key is valid",
	})
}
