package tenantauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"console-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/apps/prompt", strings.NewReader("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newTestGateway(st *mockStore, user *stubUserSource) *Gateway {
	engine := NewEngine(st, user)
	return NewGateway(engine, NewRecorder(st, nil), "/login")
}

func TestGatewayBuildsAppContext(t *testing.T) {
	st := setupAuthorized()
	st.apiKeys = []model.APIKey{
		{TenantID: "t1", Provider: "openai", EncryptedKey: "enc-openai"},
		{TenantID: "t1", Provider: "anthropic", EncryptedKey: "enc-anthropic"},
		{TenantID: "t2", Provider: "openai", EncryptedKey: "enc-other"},
	}
	gw := newTestGateway(st, &stubUserSource{user: memberUser("t1")})
	c, rec := newTestContext(t)

	var got *AppContext
	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		got = appCtx
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, got)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "Acme", got.Organization.Name)

	// Exactly the tenant's own providers, still encrypted.
	require.Len(t, got.APIKeys, 2)
	assert.Equal(t, "enc-openai", got.APIKeys["openai"])
	assert.Equal(t, "enc-anthropic", got.APIKeys["anthropic"])
}

func TestGatewayRedirectsUnauthenticated(t *testing.T) {
	gw := newTestGateway(setupAuthorized(), &stubUserSource{})
	c, rec := newTestContext(t)

	called := false
	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestGatewayRendersErrorViewWithCode(t *testing.T) {
	st := setupAuthorized()
	st.enablements = nil
	gw := newTestGateway(st, &stubUserSource{user: memberUser("t1")})
	c, rec := newTestContext(t)

	called := false
	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "APP_NOT_ENABLED")
}

func TestGatewayToleratesAPIKeyLookupFailure(t *testing.T) {
	st := setupAuthorized()
	st.failAPIKeyQuery = true
	gw := newTestGateway(st, &stubUserSource{user: memberUser("t1")})
	c, rec := newTestContext(t)

	var got *AppContext
	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		got = appCtx
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Empty(t, got.APIKeys)
}

func TestGatewayLogUsageBoundToRequest(t *testing.T) {
	st := setupAuthorized()
	gw := newTestGateway(st, &stubUserSource{user: memberUser("t1")})
	c, _ := newTestContext(t)

	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		appCtx.LogUsage("prompt_completion", map[string]any{"prompt_length": 12})
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, err)

	require.Len(t, st.usageLogs, 1)
	entry := st.usageLogs[0]
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "t1", entry.TenantID)
	assert.Equal(t, "app1", entry.AppID)
	assert.Equal(t, "prompt_completion", entry.Action)
	assert.Contains(t, entry.Metadata, "prompt_length")
}

func TestGatewayRecoversFromRenderPanic(t *testing.T) {
	gw := newTestGateway(setupAuthorized(), &stubUserSource{user: memberUser("t1")})
	c, rec := newTestContext(t)

	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		panic("boom")
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "login_path")
}

func TestGatewayConvertsRenderErrorToGenericView(t *testing.T) {
	gw := newTestGateway(setupAuthorized(), &stubUserSource{user: memberUser("t1")})
	c, rec := newTestContext(t)

	err := gw.WithTenantApp(c, "Prompt", func(c echo.Context, appCtx *AppContext) error {
		return assert.AnError
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
