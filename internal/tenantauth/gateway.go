package tenantauth

import (
	"net/http"

	"console-service/internal/model"
	"console-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UsageFunc records one significant action inside an app, already bound to
// the acting user, tenant and app.
type UsageFunc func(action string, metadata map[string]any)

// AppContext is the runtime context handed to tenant-scoped app logic.
// APIKeys maps provider names to the stored ciphertexts; decrypting them is
// the app's concern, and an empty map only means no keys are configured.
type AppContext struct {
	User         *model.User
	Organization *model.Tenant
	APIKeys      map[string]string
	LogUsage     UsageFunc
}

// RenderFunc executes app-specific logic with an authorized context.
type RenderFunc func(c echo.Context, appCtx *AppContext) error

// Gateway gates tenant-scoped app execution behind the authorization engine
// and assembles the runtime context for the app.
type Gateway struct {
	engine    *Engine
	usage     *Recorder
	loginPath string
}

// NewGateway creates an access gateway. Unauthenticated callers are
// redirected to loginPath.
func NewGateway(engine *Engine, usage *Recorder, loginPath string) *Gateway {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Gateway{engine: engine, usage: usage, loginPath: loginPath}
}

// WithTenantApp authorizes the request for appName and, on success, invokes
// render with the assembled app context. Every failure mode terminates here:
// unauthenticated callers are redirected, authorization failures render an
// error annotated with the reason code, and a panic anywhere inside is
// recovered into a generic error response. The caller never sees a fault.
func (g *Gateway) WithTenantApp(c echo.Context, appName string, render RenderFunc) error {
	log := logger.FromContext(c)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in tenant app flow",
				zap.String("app", appName),
				zap.Any("panic", r))
			if !c.Response().Committed {
				_ = c.JSON(http.StatusInternalServerError, echo.Map{
					"error":      "An unexpected error occurred while loading the application",
					"login_path": g.loginPath,
				})
			}
		}
	}()

	result, authErr := g.engine.Authorize(c.Request().Context(), appName)
	if authErr != nil {
		if authErr.Code == CodeUnauthenticated {
			return c.Redirect(http.StatusFound, g.loginPath)
		}
		log.Info("Tenant app access denied",
			zap.String("app", appName),
			zap.String("code", string(authErr.Code)))
		return c.JSON(authErr.Status, echo.Map{
			"error": authErr.Message,
			"code":  authErr.Code,
		})
	}

	// Provider key availability is optional at this point: a failed lookup
	// yields a partial or empty map and app logic decides what it needs.
	apiKeys := make(map[string]string)
	keys, err := g.engine.store.ListAPIKeysByTenant(c.Request().Context(), result.Tenant.ID)
	if err != nil {
		log.Warn("Failed to fetch tenant API keys",
			zap.String("tenant_id", result.Tenant.ID),
			zap.Error(err))
	} else {
		for i := range keys {
			apiKeys[keys[i].Provider] = keys[i].EncryptedKey
		}
	}

	userID, tenantID, appID := result.User.ID, result.Tenant.ID, result.App.ID
	appCtx := &AppContext{
		User:         result.User,
		Organization: result.Tenant,
		APIKeys:      apiKeys,
		LogUsage: func(action string, metadata map[string]any) {
			g.usage.Record(c.Request().Context(), userID, tenantID, appID, action, metadata)
		},
	}

	if err := render(c, appCtx); err != nil {
		log.Error("Tenant app render failed",
			zap.String("app", appName),
			zap.Error(err))
		if !c.Response().Committed {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":      "An unexpected error occurred while loading the application",
				"login_path": g.loginPath,
			})
		}
	}
	return nil
}
