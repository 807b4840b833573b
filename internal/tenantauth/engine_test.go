package tenantauth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"console-service/internal/model"
	"console-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore implements store.Store over in-memory tables.
type mockStore struct {
	users       map[string]*model.User
	tenants     map[string]*model.Tenant
	apps        []model.App
	enablements []model.OrgApp
	apiKeys     []model.APIKey
	usageLogs   []model.UsageLog

	failAppQuery    bool
	failAPIKeyQuery bool
	failUsageInsert bool
}

func newMockStore() *mockStore {
	return &mockStore{
		users:   make(map[string]*model.User),
		tenants: make(map[string]*model.Tenant),
	}
}

func (m *mockStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (m *mockStore) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	tenant, ok := m.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return tenant, nil
}

func (m *mockStore) GetAppByName(ctx context.Context, name string) (*model.App, error) {
	if m.failAppQuery {
		return nil, errors.New("connection refused")
	}
	for i := range m.apps {
		if m.apps[i].Name == name {
			return &m.apps[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListApps(ctx context.Context) ([]model.App, error) {
	if m.failAppQuery {
		return nil, errors.New("connection refused")
	}
	return m.apps, nil
}

func (m *mockStore) GetEnablement(ctx context.Context, tenantID, appID string) (*model.OrgApp, error) {
	for i := range m.enablements {
		oa := &m.enablements[i]
		if oa.TenantID == tenantID && oa.AppID == appID && oa.Enabled {
			return oa, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListAPIKeysByTenant(ctx context.Context, tenantID string) ([]model.APIKey, error) {
	if m.failAPIKeyQuery {
		return nil, errors.New("connection refused")
	}
	var keys []model.APIKey
	for _, k := range m.apiKeys {
		if k.TenantID == tenantID {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) CreateUsageLog(ctx context.Context, log *model.UsageLog) error {
	if m.failUsageInsert {
		return errors.New("connection refused")
	}
	m.usageLogs = append(m.usageLogs, *log)
	return nil
}

// stubUserSource resolves a fixed user, no user, or an error.
type stubUserSource struct {
	user *model.User
	err  error
}

func (s *stubUserSource) CurrentUser(ctx context.Context) (*model.User, error) {
	return s.user, s.err
}

func strPtr(s string) *string { return &s }

func memberUser(tenantID string) *model.User {
	return &model.User{
		ID:       "u1",
		Email:    "member@acme.test",
		Name:     "Member",
		Role:     model.RoleMember,
		TenantID: strPtr(tenantID),
	}
}

// setupAuthorized builds a store where tenant t1 exists, app "Prompt" exists
// as app1, and the enablement row is present.
func setupAuthorized() *mockStore {
	st := newMockStore()
	st.tenants["t1"] = &model.Tenant{ID: "t1", Name: "Acme"}
	st.apps = []model.App{{ID: "app1", Name: "Prompt"}}
	st.enablements = []model.OrgApp{{TenantID: "t1", AppID: "app1", Enabled: true}}
	return st
}

func TestAuthorizeSucceedsForEnabledApp(t *testing.T) {
	st := setupAuthorized()
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	result, authErr := engine.Authorize(context.Background(), "Prompt")
	require.Nil(t, authErr)
	require.NotNil(t, result)
	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, "t1", result.Tenant.ID)
	require.NotNil(t, result.App)
	assert.Equal(t, "app1", result.App.ID)
	assert.Equal(t, "Prompt", result.App.Name)
}

func TestAuthorizeWithoutAppNameSkipsAppResolution(t *testing.T) {
	st := newMockStore()
	st.tenants["t1"] = &model.Tenant{ID: "t1", Name: "Acme"}
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	result, authErr := engine.Authorize(context.Background(), "")
	require.Nil(t, authErr)
	assert.Equal(t, "t1", result.Tenant.ID)
	assert.Nil(t, result.App)
}

func TestAuthorizeFailsWhenUnauthenticated(t *testing.T) {
	engine := NewEngine(setupAuthorized(), &stubUserSource{})

	result, authErr := engine.Authorize(context.Background(), "Prompt")
	assert.Nil(t, result)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeUnauthenticated, authErr.Code)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestAuthorizeRejectsSuperAdminRegardlessOfTenant(t *testing.T) {
	st := setupAuthorized()

	for name, user := range map[string]*model.User{
		"without tenant": {ID: "a1", Role: model.RoleSuperAdmin},
		"with tenant":    {ID: "a2", Role: model.RoleSuperAdmin, TenantID: strPtr("t1")},
	} {
		t.Run(name, func(t *testing.T) {
			engine := NewEngine(st, &stubUserSource{user: user})
			_, authErr := engine.Authorize(context.Background(), "Prompt")
			require.NotNil(t, authErr)
			assert.Equal(t, CodeSuperAdmin, authErr.Code)
			assert.Equal(t, http.StatusForbidden, authErr.Status)
		})
	}
}

func TestAuthorizeFailsWithoutTenantAssignment(t *testing.T) {
	engine := NewEngine(setupAuthorized(), &stubUserSource{
		user: &model.User{ID: "u2", Role: model.RoleMember},
	})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeNoTenant, authErr.Code)
	assert.Equal(t, http.StatusForbidden, authErr.Status)
}

func TestAuthorizeFailsWhenTenantMissing(t *testing.T) {
	st := newMockStore()
	st.apps = []model.App{{ID: "app1", Name: "Prompt"}}
	engine := NewEngine(st, &stubUserSource{user: memberUser("ghost")})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOrgNotFound, authErr.Code)
	assert.Equal(t, http.StatusNotFound, authErr.Status)
}

func TestAuthorizeFailsWhenAppUnknown(t *testing.T) {
	st := setupAuthorized()
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	_, authErr := engine.Authorize(context.Background(), "Nonexistent")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeAppNotFound, authErr.Code)
	assert.Equal(t, http.StatusNotFound, authErr.Status)
}

func TestAuthorizeFailsWhenAppNotEnabled(t *testing.T) {
	st := setupAuthorized()
	st.enablements = nil
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeAppNotEnabled, authErr.Code)
	assert.Equal(t, http.StatusForbidden, authErr.Status)
}

func TestAuthorizeTreatsDisabledRowAsNotEnabled(t *testing.T) {
	st := setupAuthorized()
	st.enablements = []model.OrgApp{{TenantID: "t1", AppID: "app1", Enabled: false}}
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeAppNotEnabled, authErr.Code)
}

func TestAuthorizeResolvesAppCaseInsensitively(t *testing.T) {
	st := setupAuthorized()
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	result, authErr := engine.Authorize(context.Background(), "prompt")
	require.Nil(t, authErr)
	require.NotNil(t, result.App)
	// The catalog name wins, not the caller's casing.
	assert.Equal(t, "Prompt", result.App.Name)
	assert.Equal(t, "app1", result.App.ID)
}

func TestAuthorizePrefersExactMatchOverCaseInsensitive(t *testing.T) {
	st := setupAuthorized()
	st.apps = []model.App{
		{ID: "app1", Name: "Prompt"},
		{ID: "app2", Name: "prompt"},
	}
	st.enablements = []model.OrgApp{{TenantID: "t1", AppID: "app2", Enabled: true}}
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	result, authErr := engine.Authorize(context.Background(), "prompt")
	require.Nil(t, authErr)
	assert.Equal(t, "app2", result.App.ID)
}

func TestAuthorizeSurfacesAppQueryFailureAsDBError(t *testing.T) {
	st := setupAuthorized()
	st.failAppQuery = true
	engine := NewEngine(st, &stubUserSource{user: memberUser("t1")})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeDBError, authErr.Code)
	assert.Equal(t, http.StatusInternalServerError, authErr.Status)
}

func TestAuthorizeFailsWithoutStore(t *testing.T) {
	engine := NewEngine(nil, &stubUserSource{user: memberUser("t1")})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeConfigError, authErr.Code)
	assert.Equal(t, http.StatusInternalServerError, authErr.Status)
}

func TestAuthorizeSurfacesUserSourceFailure(t *testing.T) {
	engine := NewEngine(setupAuthorized(), &stubUserSource{err: errors.New("connection refused")})

	_, authErr := engine.Authorize(context.Background(), "Prompt")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeDBError, authErr.Code)
}
