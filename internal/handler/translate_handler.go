package handler

import (
	"fmt"
	"net/http"

	"console-service/internal/tenantauth"
	"console-service/pkg/cryptoutil"
	"console-service/pkg/logger"
	"console-service/pkg/openai"
	"console-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TranslateAppName is the catalog name of the translation app.
const TranslateAppName = "Translate"

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

// BuildTranslationPrompt builds the provider instruction for a translation
// request. It returns an error for unsupported language codes.
func BuildTranslationPrompt(text, sourceLang, targetLang string) (string, error) {
	source, ok := languageNames[sourceLang]
	if !ok {
		return "", fmt.Errorf("unsupported source language '%s'", sourceLang)
	}
	target, ok := languageNames[targetLang]
	if !ok {
		return "", fmt.Errorf("unsupported target language '%s'", targetLang)
	}

	return fmt.Sprintf("Translate the following text from %s to %s. Only return the translation, no additional text:\n\n%s",
		source, target, text), nil
}

// ExecuteTranslate runs the translation app through the access gateway.
func ExecuteTranslate(c echo.Context) error {
	return appGateway.WithTenantApp(c, TranslateAppName, func(c echo.Context, appCtx *tenantauth.AppContext) error {
		log := logger.FromContext(c)
		prometheus.RecordAppExecution(TranslateAppName)

		var req struct {
			Text       string `json:"text"`
			SourceLang string `json:"source_lang"`
			TargetLang string `json:"target_lang"`
		}
		if err := c.Bind(&req); err != nil || req.Text == "" || req.SourceLang == "" || req.TargetLang == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "text, source_lang and target_lang are required"})
		}

		prompt, err := BuildTranslationPrompt(req.Text, req.SourceLang, req.TargetLang)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
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

		translation, err := openaiClient.ChatCompletion(c.Request().Context(), apiKey, []openai.Message{
			{Role: "user", Content: prompt},
		})
		if err != nil {
			log.Error("Translation failed", zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "provider request failed"})
		}

		appCtx.LogUsage("translation", map[string]any{
			"app_name":           TranslateAppName,
			"source_lang":        req.SourceLang,
			"target_lang":        req.TargetLang,
			"text_length":        len(req.Text),
			"translation_length": len(translation),
		})

		return c.JSON(http.StatusOK, echo.Map{"translation": translation})
	})
}
