package handler

import (
	"net/http"

	"console-service/internal/tenantauth"
	"console-service/pkg/cryptoutil"
	"console-service/pkg/logger"
	"console-service/pkg/openai"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PromptAppName is the catalog name of the chat prompt app.
const PromptAppName = "Prompt"

// ExecutePrompt runs the chat prompt app: authorize, decrypt the tenant's
// OpenAI key, forward the message and record usage.
func ExecutePrompt(c echo.Context) error {
	return appGateway.WithTenantApp(c, PromptAppName, func(c echo.Context, appCtx *tenantauth.AppContext) error {
		log := logger.FromContext(c)
		prometheus.RecordAppExecution(PromptAppName)

		var req struct {
			Message string `json:"message"`
		}
		if err := c.Bind(&req); err != nil || req.Message == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "message is required"})
		}

		encrypted, ok := appCtx.APIKeys["openai"]
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no OpenAI API key configured for your organization"})
		}

		apiKey, err := cryptoutil.Decrypt(encrypted)
		if err != nil {
			log.Error("Failed to decrypt API key",
				zap.String("tenant_id", appCtx.Organization.ID),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to decrypt API key"})
		}

		response, err := openaiClient.ChatCompletion(c.Request().Context(), apiKey, []openai.Message{
			{Role: "user", Content: req.Message},
		})
		if err != nil {
			log.Error("Chat completion failed", zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider request failed"})
		}

		appCtx.LogUsage("prompt_completion", map[string]any{
			"app_name":        PromptAppName,
			"prompt_length":   len(req.Message),
			"response_length": len(response),
		})

		return c.JSON(http.StatusOK, echo.Map{"response": response})
	})
}
